package listings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func strPtr(s string) *string {
	return &s
}

func testPostings() *Postings {
	return &Postings{Items: []*Posting{
		{ID: "1", Title: strPtr("Data Scientist"), Company: strPtr("Acme"), Link: strPtr("https://example.com/1")},
		{ID: "2", Title: strPtr("Data Analyst"), Company: strPtr("Globex")},
		{ID: "3", Company: strPtr("Acme"), PostedAt: strPtr("1 day ago")},
		{ID: "4", Title: strPtr("ML Engineer"), Company: strPtr("Initech")},
	}}
}

func TestPostingsExclude(t *testing.T) {
	t.Parallel()

	postings := testPostings()

	excluded := postings.Exclude(PostingCompanyField, []string{"Acme", "Unknown"})
	if !reflect.DeepEqual(excluded, []string{"1", "3"}) {
		t.Fatalf("unexpected excluded ids: %v", excluded)
	}
	if postings.Len() != 2 || postings.Items[0].ID != "2" || postings.Items[1].ID != "4" {
		t.Fatalf("unexpected remaining postings: %+v", postings.Items)
	}

	excluded = postings.Exclude(PostingIDField, []string{"4"})
	if !reflect.DeepEqual(excluded, []string{"4"}) || postings.Len() != 1 {
		t.Fatalf("unexpected exclusion by id: %v, left %d", excluded, postings.Len())
	}

	if excluded := postings.Exclude("Unsupported", []string{""}); len(excluded) != 1 {
		t.Fatalf("unknown fields read as empty strings, got %v", excluded)
	}
}

func TestPostingsFindByID(t *testing.T) {
	t.Parallel()

	postings := testPostings()
	if p := postings.FindByID("3"); p == nil || p.Title != nil {
		t.Fatalf("unexpected posting: %+v", p)
	}
	if p := postings.FindByID("missing"); p != nil {
		t.Fatalf("expected nil, got %+v", p)
	}
}

func TestPostingsCompanies(t *testing.T) {
	t.Parallel()

	if got := testPostings().Companies(); !reflect.DeepEqual(got, []string{"Acme", "Globex", "Initech"}) {
		t.Fatalf("unexpected companies: %v", got)
	}
}

func TestPostingsReportByCompany(t *testing.T) {
	t.Parallel()

	report := testPostings().ReportByCompany()

	if len(report) != 3 {
		t.Fatalf("expected 3 companies, got %d", len(report))
	}
	acme := report["Acme"]
	if len(acme) != 2 {
		t.Fatalf("expected 2 Acme postings, got %d", len(acme))
	}
	if acme[1]["title"] != unknownValue || acme[1]["posted_at"] != "1 day ago" {
		t.Fatalf("unexpected report entry: %v", acme[1])
	}
}

func TestPostingsDumpToTmpFile(t *testing.T) {
	t.Parallel()

	filename, err := testPostings().DumpToTmpFile()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { os.Remove(filename) })

	data, err := os.ReadFile(filename)
	if err != nil {
		t.Fatalf("reading dump: %v", err)
	}

	var decoded Postings
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decoding dump: %v", err)
	}
	if decoded.Len() != 4 || decoded.Items[2].Title != nil {
		t.Fatalf("unexpected dump contents: %s", data)
	}
}

func TestExcludedPostingsFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "exclude.json")

	excluded, err := GetExcludedPostingsFromFile(path)
	if err != nil {
		t.Fatalf("unexpected error for a missing file: %v", err)
	}
	if len(excluded.Items) != 0 {
		t.Fatalf("expected empty list, got %d", len(excluded.Items))
	}

	postings := testPostings()
	excluded.Append(postings.ToExcluded())
	excluded.Append(postings.ToExcluded())
	if len(excluded.Items) != 4 {
		t.Fatalf("expected duplicates to be skipped, got %d items", len(excluded.Items))
	}

	if err := excluded.ToFile(path); err != nil {
		t.Fatalf("writing exclude file: %v", err)
	}

	// a shorter list must replace the file contents entirely
	shorter := &ExcludedPostings{Items: excluded.Items[:1]}
	if err := shorter.ToFile(path); err != nil {
		t.Fatalf("writing exclude file: %v", err)
	}

	loaded, err := GetExcludedPostingsFromFile(path)
	if err != nil {
		t.Fatalf("reading exclude file: %v", err)
	}
	if !reflect.DeepEqual(loaded.IDs(), []string{"1"}) {
		t.Fatalf("unexpected ids: %v", loaded.IDs())
	}
	if loaded.Items[0].Company != "Acme" || loaded.Items[0].URL != "https://example.com/1" {
		t.Fatalf("unexpected entry: %+v", loaded.Items[0])
	}
}

func TestExcludedPostingsEmptyFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "exclude.json")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatalf("creating file: %v", err)
	}

	excluded, err := GetExcludedPostingsFromFile(path)
	if err != nil || len(excluded.Items) != 0 {
		t.Fatalf("expected empty list, got %v, %v", excluded, err)
	}
}
