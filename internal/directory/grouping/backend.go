package grouping

import (
	"fmt"
	"sync"

	"github.com/kiril6/users-directory/internal/directory/grouping/wire"
	"github.com/kiril6/users-directory/internal/directory/models"
	"github.com/kiril6/users-directory/pkg/sentinel"
)

// backlog bounds how many grouping requests may be in flight per backend.
const backlog = 16

// backend is the strategy the coordinator dispatches partition work to. The
// choice between the background worker and the deferred inline fallback is
// made once at construction, never per request.
type backend interface {
	// submit enqueues a request without blocking the caller.
	submit(req wire.Request) error
	// responses yields exactly one response per submitted request, in
	// completion order.
	responses() <-chan wire.Response
	// close stops the backend; pending work may be abandoned.
	close()
}

// compute runs one partition request. A panic inside the engine is reported
// as a failed response rather than taking the backend down.
func compute(engine *Engine, req wire.Request) (resp wire.Response) {
	resp.ID = req.ID
	defer func() {
		if r := recover(); r != nil {
			resp.Groups = nil
			resp.Err = fmt.Sprintf("partition panicked: %v", r)
		}
	}()
	records := wire.ToRecords(req.Users)
	groups := engine.Partition(records, models.Criterion(req.Criterion))
	resp.Groups = wire.FromGroups(groups)
	return resp
}

// inlineBackend computes partitions on fresh goroutines. It keeps the
// asynchronous contract of the worker backend: completion is never observable
// in the submitting call stack.
type inlineBackend struct {
	engine *Engine
	respCh chan wire.Response

	mu     sync.Mutex
	wg     sync.WaitGroup
	closed bool
}

func newInlineBackend(engine *Engine) *inlineBackend {
	return &inlineBackend{
		engine: engine,
		respCh: make(chan wire.Response, backlog),
	}
}

func (b *inlineBackend) submit(req wire.Request) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return fmt.Errorf("inline grouping backend: %w", sentinel.ErrClosed)
	}
	b.wg.Add(1)
	b.mu.Unlock()

	go func() {
		defer b.wg.Done()
		resp := compute(b.engine, req)
		select {
		case b.respCh <- resp:
		default:
			// Backlog full only happens when nobody is draining
			// responses anymore, i.e. during teardown.
		}
	}()
	return nil
}

func (b *inlineBackend) responses() <-chan wire.Response {
	return b.respCh
}

func (b *inlineBackend) close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	b.wg.Wait()
}
