package filtering

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spigell/resume-matcher/internal/listings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubHistory struct {
	ids []string
	err error
}

func (h *stubHistory) KnownJobIDs(context.Context) ([]string, error) {
	return h.ids, h.err
}

func strPtr(s string) *string {
	return &s
}

func testPostings() *listings.Postings {
	return &listings.Postings{Items: []*listings.Posting{
		{ID: "1", Title: strPtr("Senior Data Scientist"), Company: strPtr("Acme")},
		{ID: "2", Title: strPtr("Data Scientist Intern"), Company: strPtr("Globex")},
		{ID: "3", Title: strPtr("Data Scientist"), Company: strPtr("Initech")},
		{ID: "4", Company: strPtr("Umbrella")},
		{ID: "5", Title: strPtr("Data Scientist"), Company: strPtr("Hooli")},
	}}
}

func ids(v *listings.Postings) []string {
	out := make([]string, 0, v.Len())
	for _, p := range v.Items {
		out = append(out, p.ID)
	}
	return out
}

func TestRunDefaultFilters(t *testing.T) {
	t.Parallel()

	excludeFile := filepath.Join(t.TempDir(), "exclude.json")
	seen := &listings.Postings{Items: []*listings.Posting{{ID: "3", Company: strPtr("Initech")}}}
	if err := seen.ToExcluded().ToFile(excludeFile); err != nil {
		t.Fatalf("writing exclude file: %v", err)
	}

	core, observed := observer.New(zapcore.InfoLevel)
	cfg := &Config{
		Companies:     []string{" Acme ", ""},
		TitleKeywords: []string{"INTERN"},
		ExcludeFile:   excludeFile,
	}
	deps := Deps{
		Logger:  zap.New(core),
		History: &stubHistory{ids: []string{"5", "404"}},
	}

	left, err := Run(context.Background(), cfg, deps, Default(), testPostings())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := ids(left); !reflect.DeepEqual(got, []string{"4"}) {
		t.Fatalf("expected only posting 4 to be left, got %v", got)
	}

	steps := observed.FilterMessage("filter step").All()
	if len(steps) != 4 {
		t.Fatalf("expected 4 filter steps logged, got %d", len(steps))
	}
	for i, name := range []string{"companies", "title_keywords", "exclude_file", "seen_history"} {
		ctx := steps[i].ContextMap()
		if ctx["name"] != name || ctx["dropped"] != int64(1) {
			t.Fatalf("step %d: unexpected log fields %v", i, ctx)
		}
	}
}

func TestRunEmptyConfigKeepsEverything(t *testing.T) {
	t.Parallel()

	left, err := Run(context.Background(), &Config{}, Deps{}, Default(), testPostings())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if left.Len() != 5 {
		t.Fatalf("expected all postings to be kept, got %d", left.Len())
	}
}

func TestRunSkipsDisabledFilters(t *testing.T) {
	t.Parallel()

	steps := Default()
	DisableByName(steps, "seen_history", "include seen postings")

	left, err := Run(context.Background(), nil, Deps{History: &stubHistory{ids: []string{"1", "2"}}}, steps, testPostings())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if left.Len() != 5 {
		t.Fatalf("expected disabled history to keep postings, got %v", ids(left))
	}

	for _, status := range Describe(steps) {
		if status.Name != "seen_history" {
			continue
		}
		if status.Enabled || status.Reason != "include seen postings" || status.Details["exclude_seen"] != "false" {
			t.Fatalf("unexpected status: %+v", status)
		}
	}
}

func TestRunReturnsFilterErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	_, err := Run(context.Background(), &Config{}, Deps{History: &stubHistory{err: boom}}, Default(), testPostings())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped history error, got %v", err)
	}
}

func TestRunBrokenExcludeFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "exclude.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	_, err := Run(context.Background(), &Config{ExcludeFile: path}, Deps{}, []Filter{NewExcludeFile()}, testPostings())
	if err == nil {
		t.Fatalf("expected error for a malformed exclude file")
	}
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	steps := Default()
	if err := steps[0].Validate(&Config{Companies: []string{"Acme", "Globex"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	statuses := Describe(steps)
	if len(statuses) != 4 {
		t.Fatalf("expected 4 statuses, got %d", len(statuses))
	}
	if statuses[0].Details["companies"] != "Acme,Globex" {
		t.Fatalf("unexpected companies status: %+v", statuses[0])
	}
}
