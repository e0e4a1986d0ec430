package grouping

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kiril6/users-directory/internal/directory/grouping/wire"
	"github.com/kiril6/users-directory/internal/directory/metrics"
	"github.com/kiril6/users-directory/internal/directory/models"
	"github.com/kiril6/users-directory/pkg/sentinel"
	"github.com/kiril6/users-directory/pkg/statecell"
)

// Coordinator owns the grouping backend's lifecycle and turns fire-and-forget
// requests into published results. Results arrive on the results cell, never
// as return values: the backend may be the background worker or the deferred
// inline fallback, and callers cannot rely on synchronous completion either
// way.
//
// The coordinator deliberately does not sequence concurrent requests: two
// requests issued in quick succession both deliver, in completion order,
// and a slower earlier request may overwrite a faster later one. Callers that
// care issue a fresh request. A backend failure clears the loading flag
// without delivering a result; a stalled loading flag is the recoverable
// failure signal.
type Coordinator struct {
	backend     backend
	backendName string

	results *statecell.Cell[[]models.Group]
	loading *statecell.Cell[bool]

	logger *slog.Logger
	stats  *metrics.Metrics

	mu      sync.Mutex
	pending map[string]pendingRequest
	closed  bool

	done chan struct{}
	wg   sync.WaitGroup
}

type pendingRequest struct {
	criterion string
	started   time.Time
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*coordinatorConfig)

type coordinatorConfig struct {
	worker bool
	logger *slog.Logger
	stats  *metrics.Metrics
}

// WithWorker selects between the background worker backend (true, the
// default) and the deferred inline fallback (false). The choice is made once
// here and never revisited per request.
func WithWorker(enabled bool) CoordinatorOption {
	return func(c *coordinatorConfig) {
		c.worker = enabled
	}
}

func WithLogger(logger *slog.Logger) CoordinatorOption {
	return func(c *coordinatorConfig) {
		c.logger = logger
	}
}

func WithMetrics(stats *metrics.Metrics) CoordinatorOption {
	return func(c *coordinatorConfig) {
		c.stats = stats
	}
}

func NewCoordinator(engine *Engine, opts ...CoordinatorOption) *Coordinator {
	cfg := &coordinatorConfig{worker: true}
	for _, opt := range opts {
		opt(cfg)
	}
	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Coordinator{
		results: statecell.New([]models.Group{}),
		loading: statecell.New(false),
		logger:  logger,
		stats:   cfg.stats,
		pending: make(map[string]pendingRequest),
		done:    make(chan struct{}),
	}
	if cfg.worker {
		c.backend = newWorkerBackend(engine)
		c.backendName = "worker"
	} else {
		c.backend = newInlineBackend(engine)
		c.backendName = "inline"
	}

	c.wg.Add(1)
	go c.dispatch()
	return c
}

// RequestGrouping submits a partition request. The loading flag is raised
// synchronously before dispatch; the result (or nothing, on backend failure)
// follows on the results cell.
func (c *Coordinator) RequestGrouping(records []models.Record, criterion models.Criterion) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return fmt.Errorf("grouping coordinator: %w", sentinel.ErrClosed)
	}
	req := wire.Request{
		ID:        uuid.NewString(),
		Users:     wire.FromRecords(records),
		Criterion: string(criterion),
	}
	c.pending[req.ID] = pendingRequest{criterion: string(criterion), started: time.Now()}
	c.mu.Unlock()

	c.loading.Set(true)

	if err := c.backend.submit(req); err != nil {
		c.mu.Lock()
		delete(c.pending, req.ID)
		c.mu.Unlock()
		c.loading.Set(false)
		return fmt.Errorf("submit grouping request: %w", err)
	}
	return nil
}

// Results exposes the latest delivered grouping. Readers treat each value as
// wholesale-replaced.
func (c *Coordinator) Results() statecell.Reader[[]models.Group] {
	return c.results
}

// Loading exposes the in-flight flag.
func (c *Coordinator) Loading() statecell.Reader[bool] {
	return c.loading
}

func (c *Coordinator) dispatch() {
	defer c.wg.Done()
	for {
		select {
		case <-c.done:
			return
		case resp := <-c.backend.responses():
			c.handle(resp)
		}
	}
}

func (c *Coordinator) handle(resp wire.Response) {
	c.mu.Lock()
	pending, ok := c.pending[resp.ID]
	delete(c.pending, resp.ID)
	c.mu.Unlock()

	if resp.Err != "" {
		c.logger.Error("grouping backend failed",
			"request_id", resp.ID,
			"criterion", pending.criterion,
			"error", resp.Err,
		)
		c.stats.IncrementGroupingFailures()
		c.loading.Set(false)
		return
	}

	// Reconstruction back into full records is mandatory here: the backend
	// only ever saw plain structural data.
	c.results.Set(wire.ToGroups(resp.Groups))
	c.loading.Set(false)

	if ok {
		c.stats.ObserveGrouping(pending.criterion, c.backendName, time.Since(pending.started))
	}
}

// Close tears the backend down and closes the published cells. No requests
// may be issued afterward.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.backend.close()
	close(c.done)
	c.wg.Wait()
	c.results.Close()
	c.loading.Close()
}
