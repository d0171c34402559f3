package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/spigell/resume-matcher/internal/ai/gemini"
	"github.com/spigell/resume-matcher/internal/filtering"
	"github.com/spigell/resume-matcher/internal/listings"
	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/matching"
	"github.com/spigell/resume-matcher/internal/profile"
	"github.com/spigell/resume-matcher/internal/resume"
	"github.com/spigell/resume-matcher/internal/secrets"
	"github.com/spigell/resume-matcher/internal/similarity"
	"github.com/spigell/resume-matcher/internal/store"

	"go.uber.org/zap"
)

// loadProfile returns the candidate profile either from a stored model
// response or by sending the resume text to Gemini.
func loadProfile(ctx context.Context, config *Config, log *zap.Logger) (*profile.Profile, error) {
	if path := strings.TrimSpace(config.ProfileFile); path != "" {
		p, err := profile.ParseFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading profile file: %w", err)
		}
		log.Info("loaded profile from file", zap.String("path", path), zap.Int("skills", len(p.Skills)))
		return p, nil
	}

	path := strings.TrimSpace(config.Resume)
	if path == "" {
		return nil, errors.New("either resume or profile-file must be set")
	}

	text, err := resume.ExtractText(ctx, path)
	if err != nil {
		return nil, err
	}
	log.Info("extracted resume text", zap.String("path", path), zap.Int("length", len(text)))

	extractor, err := newExtractor(ctx, config.AI, log)
	if err != nil {
		return nil, fmt.Errorf("building profile extractor: %w", err)
	}

	extraction, err := extractor.Extract(ctx, text)
	if err != nil {
		return nil, err
	}

	log.Info("extracted candidate profile",
		zap.String("model", extraction.Model),
		zap.Int("skills", len(extraction.Profile.Skills)),
		zap.Int("roles", len(extraction.Profile.Experience)),
		zap.Float64("total_years", extraction.Profile.TotalYears()),
	)
	return extraction.Profile, nil
}

func newExtractor(ctx context.Context, cfg *AIConfig, log *zap.Logger) (*gemini.Extractor, error) {
	if cfg == nil || cfg.Gemini == nil {
		return nil, errors.New("gemini configuration is required to read a resume")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.Gemini.APIKey,
		File:  cfg.Gemini.APIKeyFile,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY)", err)
	}

	generator, err := gemini.NewGenerator(ctx, gemini.Config{
		APIKey:     apiKey,
		Model:      cfg.Gemini.Model,
		MaxRetries: cfg.Gemini.MaxRetries,
	}, logger.WithCommonFields(log, "generator", cfg.Gemini.Model))
	if err != nil {
		return nil, err
	}

	extractorLogger := logger.WithCommonFields(log, "extractor", generator.Model())
	return gemini.NewExtractor(generator, extractorLogger, cfg.Gemini.MaxLogLength), nil
}

func matchProfile(config *Config, p *profile.Profile, log *zap.Logger) (*matching.Result, error) {
	corpus, err := matching.LoadCorpus(config.Corpus)
	if err != nil {
		return nil, fmt.Errorf("loading corpus: %w", err)
	}

	opts := matching.DefaultOptions()
	if config.Match != nil {
		opts.TopN = config.Match.TopN
		opts.MinConfidence = config.Match.MinConfidence
	}

	matcher := matching.New(corpus, similarity.New(), opts, logger.WithCommonFields(log, "matcher", config.Corpus))
	result, err := matcher.Match(p.Skills, p.Experience)
	if err != nil {
		return nil, err
	}

	log.Info("matched job title",
		zap.String("predicted_title", result.PredictedTitle),
		zap.String("reconciled_title", result.ReconciledTitle),
		zap.Float64("years_experience", result.YearsExperience),
		zap.Float64("confidence", result.Confidence),
	)
	return result, nil
}

func scrapePostings(ctx context.Context, config *Config, title string, log *zap.Logger) (*listings.Result, error) {
	sc := config.Scrape
	if sc == nil {
		sc = &ScrapeConfig{ListingURL: listings.DefaultListingURL, DetailURL: listings.DefaultDetailURL, Start: listings.DefaultStart}
	}

	urls := listings.BuildURLs(sc.ListingURL, title, config.Location, sc.Start)

	scraperLogger := logger.WithCommonFields(log, "scraper", hostOf(sc.ListingURL))
	scraper := listings.New(listings.Config{
		DetailURL:         sc.DetailURL,
		Concurrency:       sc.Concurrency,
		RequestsPerSecond: sc.RequestsPerSecond,
		Burst:             sc.Burst,
		Timeout:           sc.Timeout,
		MaxRetries:        sc.MaxRetries,
		UserAgent:         config.UserAgent,
	}, scraperLogger)

	log.Info("starting the scrape",
		zap.String("title", title),
		zap.String("location", config.Location),
		zap.Int("listing_urls", len(urls)),
	)

	result, err := scraper.Scrape(ctx, urls)
	if err != nil {
		return nil, fmt.Errorf("scraping postings: %w", err)
	}

	log.Info("scraped postings",
		zap.Int("job_ids", result.JobIDs),
		zap.Int("postings", result.Postings.Len()),
		zap.Int("incomplete", result.Incomplete),
		zap.Int("failures", len(result.Failures)),
	)
	return result, nil
}

// filterPostings runs the filtering steps. History is consulted only when a
// store is configured and includeSeen is false.
func filterPostings(ctx context.Context, config *Config, st *store.Store, includeSeen bool, postings *listings.Postings, log *zap.Logger) (*listings.Postings, error) {
	cfg := &filtering.Config{ExcludeFile: config.ExcludeFile}
	if config.Exclude != nil {
		cfg.Companies = config.Exclude.Companies
		cfg.TitleKeywords = config.Exclude.TitleKeywords
	}

	deps := filtering.Deps{Logger: logger.WithCommonFields(log, "filtering", "")}
	if st != nil {
		deps.History = st
	}

	steps := filtering.Default()
	switch {
	case includeSeen:
		filtering.DisableByName(steps, "seen_history", "include-seen flag is set")
	case st == nil:
		filtering.DisableByName(steps, "seen_history", "store is not configured")
	}

	for _, status := range filtering.Describe(steps) {
		log.Debug("filter status",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.String("reason", status.Reason),
		)
	}

	return filtering.Run(ctx, cfg, deps, steps, postings)
}

// openStore opens the configured store; a nil store means persistence is off.
func openStore(ctx context.Context, config *Config) (*store.Store, error) {
	if config.Store == nil || strings.TrimSpace(config.Store.Path) == "" {
		return nil, nil
	}
	return store.Open(ctx, strings.TrimSpace(config.Store.Path))
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Host
}
