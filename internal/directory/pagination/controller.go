// Package pagination accumulates the working record set from the upstream
// source one page at a time and owns the pagination state.
package pagination

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/kiril6/users-directory/internal/directory/metrics"
	"github.com/kiril6/users-directory/internal/directory/models"
	"github.com/kiril6/users-directory/pkg/sentinel"
	"github.com/kiril6/users-directory/pkg/statecell"
)

// User-facing error messages. Exactly one is visible at a time; the latest
// write wins.
const (
	RateLimitMessage = "The record service is rate limiting us. Wait a minute and try loading more again."
	FetchFailMessage = "Could not load more people right now. Try again in a moment."
)

// State is the pagination snapshot. HasMore turning false on an error is
// terminal: nothing short of Reset turns it back on.
type State struct {
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
	HasMore  bool   `json:"hasMore"`
	Loading  bool   `json:"loading"`
	Error    string `json:"error,omitempty"`
}

// Fetcher retrieves one raw page from the upstream source.
type Fetcher interface {
	FetchPage(ctx context.Context, page, pageSize int) ([]models.RawRecord, error)
}

// Controller is the single writer of the accumulated record set and the
// pagination state. The Loading flag doubles as the in-flight guard: at most
// one fetch runs at a time, later calls no-op until it settles.
type Controller struct {
	fetcher  Fetcher
	pageSize int
	logger   *slog.Logger
	stats    *metrics.Metrics

	state *statecell.Cell[State]

	mu      sync.Mutex
	records []models.Record
}

// Option configures a Controller.
type Option func(*Controller)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

func WithMetrics(stats *metrics.Metrics) Option {
	return func(c *Controller) {
		c.stats = stats
	}
}

func NewController(fetcher Fetcher, pageSize int, opts ...Option) *Controller {
	c := &Controller{
		fetcher:  fetcher,
		pageSize: pageSize,
		logger:   slog.Default(),
		state: statecell.New(State{
			Page:     1,
			PageSize: pageSize,
			HasMore:  true,
		}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State exposes the pagination state for consumers.
func (c *Controller) State() statecell.Reader[State] {
	return c.state
}

// Records returns the accumulated working set. The slice is replaced
// wholesale on page one and extended otherwise; readers never see partial
// mutations.
func (c *Controller) Records() []models.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.records
}

// LoadNextPage fetches the next page and folds it into the working set. A
// pageSize of zero uses the configured default. If a load is in flight or
// HasMore is false this is a no-op returning the unchanged set.
func (c *Controller) LoadNextPage(ctx context.Context, pageSize int) ([]models.Record, error) {
	if pageSize <= 0 {
		pageSize = c.pageSize
	}

	c.mu.Lock()
	st := c.state.Get()
	if st.Loading || !st.HasMore {
		records := c.records
		c.mu.Unlock()
		return records, nil
	}
	st.Loading = true
	st.PageSize = pageSize
	st.Error = ""
	c.state.Set(st)
	page := st.Page
	c.mu.Unlock()

	raws, err := c.fetcher.FetchPage(ctx, page, pageSize)

	c.mu.Lock()
	defer c.mu.Unlock()
	st = c.state.Get()
	if err != nil {
		st.Loading = false
		st.HasMore = false
		if errors.Is(err, sentinel.ErrRateLimited) {
			st.Error = RateLimitMessage
			c.stats.IncrementRateLimitHits()
		} else {
			st.Error = FetchFailMessage
		}
		c.state.Set(st)
		c.logger.Error("page fetch failed", "page", page, "error", err)
		return c.records, err
	}

	mapped := models.FromRawPage(raws)
	if page == 1 {
		c.records = mapped
	} else {
		c.records = append(c.records, mapped...)
	}
	st.Page = page + 1
	// A short page is the designated end-of-data signal.
	st.HasMore = len(raws) == pageSize
	st.Loading = false
	c.state.Set(st)
	c.stats.SetRecordsAccumulated(len(c.records))
	c.logger.Info("page loaded",
		"page", page,
		"returned", len(raws),
		"accumulated", len(c.records),
		"has_more", st.HasMore,
	)
	return c.records, nil
}

// ResetAndLoad clears the working set and the pagination state back to page
// one, then loads the first page.
func (c *Controller) ResetAndLoad(ctx context.Context, pageSize int) ([]models.Record, error) {
	c.mu.Lock()
	c.records = nil
	if pageSize <= 0 {
		pageSize = c.pageSize
	}
	c.state.Set(State{
		Page:     1,
		PageSize: pageSize,
		HasMore:  true,
	})
	c.mu.Unlock()
	c.stats.SetRecordsAccumulated(0)
	return c.LoadNextPage(ctx, pageSize)
}

// CloseState closes the published state cell. Call once the controller's
// owner is tearing down.
func (c *Controller) CloseState() {
	c.state.Close()
}
