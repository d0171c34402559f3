package cmd

import (
	"strings"
	"testing"
	"time"

	"github.com/spigell/resume-matcher/internal/listings"
	"github.com/spigell/resume-matcher/internal/matching"
)

func TestConfigDefaultsAndEnv(t *testing.T) {
	t.Setenv("RESUME_MATCHER_SCRAPE_CONCURRENCY", "8")
	t.Setenv("RESUME_MATCHER_AI_GEMINI_MODEL", "gemini-test")

	initConfig()

	config, err := getConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if config.Match == nil || config.Match.TopN != matching.DefaultTopN || config.Match.MinConfidence != matching.DefaultThreshold {
		t.Fatalf("unexpected match config: %+v", config.Match)
	}
	if config.Scrape == nil {
		t.Fatalf("expected scrape config")
	}
	if config.Scrape.ListingURL != listings.DefaultListingURL || config.Scrape.Start != listings.DefaultStart {
		t.Fatalf("unexpected scrape defaults: %+v", config.Scrape)
	}
	if config.Scrape.Timeout != 10*time.Second || config.Scrape.MaxRetries != 3 {
		t.Fatalf("unexpected scrape call settings: %+v", config.Scrape)
	}
	if config.Scrape.Concurrency != 8 {
		t.Fatalf("expected concurrency from env, got %d", config.Scrape.Concurrency)
	}
	if config.AI == nil || config.AI.Gemini == nil || config.AI.Gemini.Model != "gemini-test" {
		t.Fatalf("expected model from env, got %+v", config.AI)
	}
}

func TestRedacted(t *testing.T) {
	t.Parallel()

	config := &Config{AI: &AIConfig{Gemini: &GeminiConfig{APIKey: "secret", Model: "m"}}}
	out := redacted(config)

	if out.AI.Gemini.APIKey != "***" || out.AI.Gemini.Model != "m" {
		t.Fatalf("unexpected redacted config: %+v", out.AI.Gemini)
	}
	if config.AI.Gemini.APIKey != "secret" {
		t.Fatalf("expected original config to be untouched")
	}
	if redacted(&Config{}).AI != nil {
		t.Fatalf("expected nil ai config to stay nil")
	}
}

func TestHostOf(t *testing.T) {
	t.Parallel()

	if got := hostOf(listings.DefaultListingURL); got != "www.linkedin.com" {
		t.Fatalf("unexpected host: %q", got)
	}
	if got := hostOf("://bad"); got != "" {
		t.Fatalf("expected empty host for a bad url, got %q", got)
	}
}

func TestVersionString(t *testing.T) {
	got := versionString()
	if !strings.HasPrefix(got, "resume-matcher version: unknown (go") {
		t.Fatalf("unexpected version string: %q", got)
	}
}
