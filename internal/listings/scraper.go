// Package listings fetches job listing pages from the guest HTML endpoints of
// a job board and turns them into a table of postings.
package listings

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 4

type Config struct {
	DetailURL         string
	Concurrency       int
	RequestsPerSecond float64
	Burst             int
	Timeout           time.Duration
	MaxRetries        int
	UserAgent         string
}

type Result struct {
	Postings *Postings `json:"postings"`
	// Failures holds every listing URL and job id that could not be fetched.
	Failures []*FetchError `json:"failures,omitempty"`
	// JobIDs is the number of distinct ids found on listing pages.
	JobIDs int `json:"job_ids"`
	// Incomplete counts postings dropped for a missing company.
	Incomplete int `json:"incomplete"`
}

// Err joins all fetch failures, nil when there were none.
func (r *Result) Err() error {
	errs := make([]error, 0, len(r.Failures))
	for _, f := range r.Failures {
		errs = append(errs, f)
	}
	return errors.Join(errs...)
}

type Scraper struct {
	client      *Client
	detailURL   string
	concurrency int
	logger      *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Scraper {
	if logger == nil {
		logger = zap.NewNop()
	}

	client := NewClient(NewHostLimiter(cfg.RequestsPerSecond, cfg.Burst), logger)
	if cfg.Timeout > 0 {
		client.HTTPClient.Timeout = cfg.Timeout
	}
	if cfg.MaxRetries >= 0 {
		client.MaxRetries = cfg.MaxRetries
	}
	if cfg.UserAgent != "" {
		client.UserAgent = cfg.UserAgent
	}

	return NewWithClient(client, cfg, logger)
}

// NewWithClient builds a scraper around an existing client.
func NewWithClient(client *Client, cfg Config, logger *zap.Logger) *Scraper {
	if logger == nil {
		logger = zap.NewNop()
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	return &Scraper{
		client:      client,
		detailURL:   cfg.DetailURL,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Scrape fetches all listing pages, deduplicates the job ids found there and
// fetches every job once. Fetch failures are collected in the result and do
// not stop other fetches. Postings without a company are dropped. The only
// error returned is the cancellation of ctx.
func (s *Scraper) Scrape(ctx context.Context, urls []string) (*Result, error) {
	result := &Result{Postings: &Postings{}}

	ids, failures := s.collectIDs(ctx, urls)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result.Failures = append(result.Failures, failures...)
	result.JobIDs = len(ids)

	s.logger.Info("collected job ids",
		zap.Int("listing_urls", len(urls)),
		zap.Int("unique_ids", len(ids)),
		zap.Int("failed_urls", len(failures)),
	)

	postings, failures := s.fetchPostings(ctx, ids)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result.Failures = append(result.Failures, failures...)

	for _, posting := range postings {
		if posting == nil {
			continue
		}
		if posting.Company == nil {
			s.logger.Debug("dropping posting", zap.String("id", posting.ID), zap.String("reason", "no company"))
			result.Incomplete++
			continue
		}
		result.Postings.Items = append(result.Postings.Items, posting)
	}

	sort.SliceStable(result.Failures, func(i, j int) bool {
		if result.Failures[i].URL != result.Failures[j].URL {
			return result.Failures[i].URL < result.Failures[j].URL
		}
		return result.Failures[i].ID < result.Failures[j].ID
	})

	for _, f := range result.Failures {
		s.logger.Warn("fetch failed", zap.String("url", f.URL), zap.String("id", f.ID), zap.Int("status", f.Status), zap.Error(f.Err))
	}

	return result, nil
}

// collectIDs returns sorted distinct job ids once every listing fetch is done.
func (s *Scraper) collectIDs(ctx context.Context, urls []string) ([]string, []*FetchError) {
	var (
		mu       sync.Mutex
		seen     = make(map[string]struct{})
		failures []*FetchError
	)

	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for _, url := range urls {
		g.Go(func() error {
			ids, err := s.fetchIDs(ctx, url)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				failures = append(failures, err)
				return nil
			}
			for _, id := range ids {
				seen[id] = struct{}{}
			}
			return nil
		})
	}
	_ = g.Wait()

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids, failures
}

func (s *Scraper) fetchIDs(ctx context.Context, url string) ([]string, *FetchError) {
	page, err := s.client.Get(ctx, url)
	if err != nil {
		return nil, asFetchError(err, url, "")
	}

	ids, err := parseJobIDs(page)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	s.logger.Debug("parsed listing page", zap.String("url", url), zap.Int("ids", len(ids)))
	return ids, nil
}

// fetchPostings returns one slot per id. Slots of failed fetches stay nil.
func (s *Scraper) fetchPostings(ctx context.Context, ids []string) ([]*Posting, []*FetchError) {
	var (
		mu       sync.Mutex
		failures []*FetchError
	)
	postings := make([]*Posting, len(ids))

	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for i, id := range ids {
		g.Go(func() error {
			url := DetailURL(s.detailURL, id)

			page, err := s.client.Get(ctx, url)
			if err == nil {
				postings[i], err = parsePosting(id, page)
			}
			if err != nil {
				mu.Lock()
				failures = append(failures, asFetchError(err, url, id))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return postings, failures
}

func asFetchError(err error, url, id string) *FetchError {
	var fe *FetchError
	if !errors.As(err, &fe) {
		fe = &FetchError{URL: url, Err: err}
	}
	fe.ID = id
	return fe
}
