package grouping

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/kiril6/users-directory/internal/directory/grouping/wire"
	"github.com/kiril6/users-directory/pkg/sentinel"
)

// workerBackend runs partition computations on a single background goroutine.
// Each request carries its full input over the request channel, so the worker
// shares no mutable state with the submitting side; responses travel back on
// a separate channel in completion order.
type workerBackend struct {
	engine *Engine
	reqCh  chan wire.Request
	respCh chan wire.Response
	cancel context.CancelFunc
	group  *errgroup.Group
}

func newWorkerBackend(engine *Engine) *workerBackend {
	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)
	w := &workerBackend{
		engine: engine,
		reqCh:  make(chan wire.Request, backlog),
		respCh: make(chan wire.Response, backlog),
		cancel: cancel,
		group:  g,
	}
	g.Go(func() error {
		return w.run(ctx)
	})
	return w
}

func (w *workerBackend) run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req := <-w.reqCh:
			select {
			case w.respCh <- compute(w.engine, req):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

func (w *workerBackend) submit(req wire.Request) error {
	select {
	case w.reqCh <- req:
		return nil
	default:
		return fmt.Errorf("grouping worker backlog full: %w", sentinel.ErrUnavailable)
	}
}

func (w *workerBackend) responses() <-chan wire.Response {
	return w.respCh
}

func (w *workerBackend) close() {
	w.cancel()
	// The only error ever returned is the cancellation itself.
	_ = w.group.Wait()
}
