package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/spigell/resume-matcher/internal/listings"
	"github.com/spigell/resume-matcher/internal/matching"
	"github.com/spigell/resume-matcher/internal/profile"
)

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrRunNotFound is returned when no run has the requested id.
var ErrRunNotFound = errors.New("run not found")

// Run is a persisted match result.
type Run struct {
	ID              string    `json:"id"`
	CreatedAt       time.Time `json:"created_at"`
	Location        string    `json:"location,omitempty"`
	PredictedTitle  string    `json:"predicted_title"`
	ReconciledTitle string    `json:"reconciled_title"`
	YearsExperience float64   `json:"years_experience"`
	Confidence      float64   `json:"confidence"`
	// NewPostings counts postings first seen by this run.
	NewPostings int `json:"new_postings"`
}

// RunInput is what a pipeline run produced.
type RunInput struct {
	Location string
	Result   *matching.Result
	Profile  *profile.Profile
	Postings *listings.Postings
}

// SaveRun stores the match result and the postings of one run. Postings whose
// job id is already known keep the run that first saw them.
func (s *Store) SaveRun(ctx context.Context, in RunInput) (*Run, error) {
	if in.Result == nil {
		return nil, errors.New("match result is required")
	}

	profileJSON := []byte("{}")
	if in.Profile != nil {
		var err error
		if profileJSON, err = json.Marshal(in.Profile); err != nil {
			return nil, fmt.Errorf("marshal profile: %w", err)
		}
	}

	run := &Run{
		ID:              uuid.NewString(),
		CreatedAt:       s.now().UTC(),
		Location:        in.Location,
		PredictedTitle:  in.Result.PredictedTitle,
		ReconciledTitle: in.Result.ReconciledTitle,
		YearsExperience: in.Result.YearsExperience,
		Confidence:      in.Result.Confidence,
	}
	createdAt := run.CreatedAt.Format(timeLayout)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO runs (id, created_at, location, predicted_title, reconciled_title, years_experience, confidence, profile)
VALUES (?, ?, ?, ?, ?, ?, ?, ?);`,
		run.ID, createdAt, run.Location, run.PredictedTitle, run.ReconciledTitle,
		run.YearsExperience, run.Confidence, string(profileJSON),
	); err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	if in.Postings != nil {
		for _, p := range in.Postings.Items {
			if p == nil || p.Company == nil {
				continue
			}
			res, err := tx.ExecContext(ctx, `
INSERT OR IGNORE INTO postings (job_id, run_id, title, company, posted_at, link, first_seen_at)
VALUES (?, ?, ?, ?, ?, ?, ?);`,
				p.ID, run.ID, p.Title, *p.Company, p.PostedAt, p.Link, createdAt,
			)
			if err != nil {
				return nil, fmt.Errorf("insert posting %s: %w", p.ID, err)
			}
			if n, err := res.RowsAffected(); err == nil && n > 0 {
				run.NewPostings++
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit run: %w", err)
	}

	return run, nil
}

// KnownJobIDs returns the job ids saved by any earlier run, sorted.
func (s *Store) KnownJobIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT job_id FROM postings ORDER BY job_id;`)
	if err != nil {
		return nil, fmt.Errorf("query job ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Runs lists stored runs, newest first. A non-positive limit lists all runs.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT r.id, r.created_at, r.location, r.predicted_title, r.reconciled_title,
       r.years_experience, r.confidence, COUNT(p.job_id)
FROM runs r
LEFT JOIN postings p ON p.run_id = r.id
GROUP BY r.id
ORDER BY r.created_at DESC, r.id
LIMIT ?;`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run       Run
			createdAt string
		)
		if err := rows.Scan(&run.ID, &createdAt, &run.Location, &run.PredictedTitle, &run.ReconciledTitle,
			&run.YearsExperience, &run.Confidence, &run.NewPostings); err != nil {
			return nil, err
		}
		if run.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("parse run %s time: %w", run.ID, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RunPostings returns the postings first seen by the run, ordered by job id.
func (s *Store) RunPostings(ctx context.Context, runID string) (*listings.Postings, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM runs WHERE id = ?;`, runID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT job_id, title, company, posted_at, link
FROM postings
WHERE run_id = ?
ORDER BY job_id;`, runID)
	if err != nil {
		return nil, fmt.Errorf("query postings: %w", err)
	}
	defer rows.Close()

	out := &listings.Postings{Items: []*listings.Posting{}}
	for rows.Next() {
		p := &listings.Posting{}
		var company string
		if err := rows.Scan(&p.ID, &p.Title, &company, &p.PostedAt, &p.Link); err != nil {
			return nil, err
		}
		p.Company = &company
		out.Items = append(out.Items, p)
	}
	return out, rows.Err()
}
