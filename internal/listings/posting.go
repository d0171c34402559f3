package listings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"time"
)

const (
	PostingIDField      = "ID"
	PostingCompanyField = "Company"

	unknownValue = "n/a"
)

// Posting is one scraped job. Nil fields were missing from the markup.
type Posting struct {
	ID       string  `json:"id"`
	Title    *string `json:"title"`
	Company  *string `json:"company"`
	PostedAt *string `json:"posted_at"`
	Link     *string `json:"link"`
}

type Postings struct {
	Items []*Posting `json:"items"`
}

type ExcludedPostings struct {
	Items []*ExcludedPosting
}

type ExcludedPosting struct {
	ID         string
	URL        string
	Company    string
	ExcludedAt time.Time
}

// GetStringField returns the named field, or an empty string for unknown
// names and missing values.
func (p *Posting) GetStringField(name string) string {
	switch name {
	case PostingIDField:
		return p.ID
	case PostingCompanyField:
		return deref(p.Company)
	default:
		return ""
	}
}

func (p *Posting) String() string {
	return fmt.Sprintf("%s %s / %s / %s",
		p.ID, valueOr(p.Title), valueOr(p.Company), valueOr(p.Link),
	)
}

func (p *Postings) Len() int {
	return len(p.Items)
}

func (p *Postings) FindByID(id string) *Posting {
	for _, posting := range p.Items {
		if posting.ID == id {
			return posting
		}
	}
	return nil
}

// Exclude removes postings whose field equals one of targets and returns
// the removed ids. Order of the remaining postings is kept.
func (p *Postings) Exclude(name string, targets []string) []string {
	drop := make(map[string]struct{}, len(targets))
	for _, target := range targets {
		drop[target] = struct{}{}
	}

	var excluded []string
	kept := p.Items[:0]
	for _, posting := range p.Items {
		if _, ok := drop[posting.GetStringField(name)]; ok {
			excluded = append(excluded, posting.ID)
			continue
		}
		kept = append(kept, posting)
	}
	clear(p.Items[len(kept):])
	p.Items = kept

	return excluded
}

// Companies returns the distinct company names, sorted.
func (p *Postings) Companies() []string {
	seen := make(map[string]struct{})
	for _, posting := range p.Items {
		if posting.Company != nil {
			seen[*posting.Company] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ReportByCompany groups postings by company name.
func (p *Postings) ReportByCompany() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, posting := range p.Items {
		key := valueOr(posting.Company)
		report[key] = append(report[key], map[string]string{
			"id":        posting.ID,
			"title":     valueOr(posting.Title),
			"posted_at": valueOr(posting.PostedAt),
			"url":       valueOr(posting.Link),
		})
	}
	return report
}

func (p *Postings) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "postings_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return "", err
	}
	return file.Name(), nil
}

func (p *Postings) ToExcluded() *ExcludedPostings {
	excluded := &ExcludedPostings{}
	now := time.Now().UTC()
	for _, posting := range p.Items {
		excluded.Items = append(excluded.Items, &ExcludedPosting{
			ID:         posting.ID,
			URL:        deref(posting.Link),
			Company:    deref(posting.Company),
			ExcludedAt: now,
		})
	}
	return excluded
}

// GetExcludedPostingsFromFile reads an exclude file. A missing or empty file
// yields an empty list.
func GetExcludedPostingsFromFile(path string) (*ExcludedPostings, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &ExcludedPostings{}, nil
		}
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &ExcludedPostings{}, nil
	}

	var excluded ExcludedPostings
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, fmt.Errorf("decoding exclude file %q: %w", path, err)
	}
	return &excluded, nil
}

// Append adds entries whose id is not in the list yet.
func (e *ExcludedPostings) Append(s *ExcludedPostings) {
	known := make(map[string]struct{}, len(e.Items))
	for _, item := range e.Items {
		known[item.ID] = struct{}{}
	}

	for _, item := range s.Items {
		if _, ok := known[item.ID]; ok {
			continue
		}
		known[item.ID] = struct{}{}
		e.Items = append(e.Items, item)
	}
}

func (e *ExcludedPostings) IDs() []string {
	ids := make([]string, 0, len(e.Items))
	for _, item := range e.Items {
		ids = append(ids, item.ID)
	}
	return ids
}

func (e *ExcludedPostings) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func valueOr(s *string) string {
	if s == nil {
		return unknownValue
	}
	return *s
}
