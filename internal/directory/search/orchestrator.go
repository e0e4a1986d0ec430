// Package search turns raw, unthrottled text input into a stable search term
// and matches records against it.
package search

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/kiril6/users-directory/internal/directory/models"
	"github.com/kiril6/users-directory/pkg/statecell"
)

// DefaultWindow is the quiescence window after the last keystroke before the
// term is considered stable.
const DefaultWindow = 300 * time.Millisecond

// Orchestrator debounces input and publishes the stable term. A burst of
// OnInput calls collapses into one stable value once the window elapses with
// no further input; re-publishing an unchanged value is suppressed so
// downstream grouping is not re-triggered for free.
type Orchestrator struct {
	window   time.Duration
	onStable func(term string)
	logger   *slog.Logger

	term *statecell.Cell[string]

	mu      sync.Mutex
	timer   *time.Timer
	last    string
	hasLast bool
	closed  bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

func WithWindow(window time.Duration) Option {
	return func(o *Orchestrator) {
		o.window = window
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// New builds an Orchestrator. onStable runs off the caller's goroutine each
// time the debounced term changes, including a change back to empty.
func New(onStable func(term string), opts ...Option) *Orchestrator {
	o := &Orchestrator{
		window:   DefaultWindow,
		onStable: onStable,
		logger:   slog.Default(),
		term:     statecell.New(""),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// OnInput accepts one raw input event and restarts the quiescence window.
func (o *Orchestrator) OnInput(raw string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	if o.timer != nil {
		o.timer.Stop()
	}
	o.timer = time.AfterFunc(o.window, func() {
		o.settle(raw)
	})
}

func (o *Orchestrator) settle(raw string) {
	o.mu.Lock()
	if o.closed || (o.hasLast && o.last == raw) {
		o.mu.Unlock()
		return
	}
	o.last = raw
	o.hasLast = true
	o.mu.Unlock()

	o.logger.Debug("search term settled", "term", raw)
	o.term.Set(raw)
	if o.onStable != nil {
		o.onStable(raw)
	}
}

// Term exposes the stable search term.
func (o *Orchestrator) Term() statecell.Reader[string] {
	return o.term
}

// Close stops the pending debounce timer; no further input is accepted.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.closed = true
	if o.timer != nil {
		o.timer.Stop()
	}
	o.term.Close()
}

// Matches reports whether a record matches the term: case-insensitive
// substring against any of first name, last name, email, phone, nationality
// code, country and city. An empty or whitespace-only term matches every
// record.
func Matches(rec models.Record, term string) bool {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return true
	}
	for _, field := range []string{
		rec.FirstName,
		rec.LastName,
		rec.Email,
		rec.Phone,
		rec.Nationality,
		rec.Country,
		rec.City,
	} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// Filter returns the records matching term, preserving input order. The full
// input is returned as-is for an empty term.
func Filter(records []models.Record, term string) []models.Record {
	if strings.TrimSpace(term) == "" {
		return records
	}
	filtered := make([]models.Record, 0, len(records))
	for _, rec := range records {
		if Matches(rec, term) {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}
