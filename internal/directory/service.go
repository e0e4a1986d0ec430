// Package directory composes pagination, search and grouping into one
// resolved, observable directory state.
package directory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/kiril6/users-directory/internal/directory/grouping"
	"github.com/kiril6/users-directory/internal/directory/metrics"
	"github.com/kiril6/users-directory/internal/directory/models"
	"github.com/kiril6/users-directory/internal/directory/pagination"
	"github.com/kiril6/users-directory/internal/directory/search"
	"github.com/kiril6/users-directory/pkg/statecell"
)

// State is the fully resolved directory snapshot republished to consumers.
// It is replaced wholesale on every change.
type State struct {
	Groups        []models.Group   `json:"groups"`
	GroupsLoading bool             `json:"groupsLoading"`
	Pagination    pagination.State `json:"pagination"`
	SearchTerm    string           `json:"searchTerm"`
	Criterion     models.Criterion `json:"criterion"`
	TotalRecords  int              `json:"totalRecords"`
}

// Service is the composition root. It owns the search orchestrator and the
// continuation timers, wires the pagination controller's output into the
// grouping coordinator, and folds every component's stream into one state
// cell.
type Service struct {
	pager   *pagination.Controller
	grouper *grouping.Coordinator
	policy  pagination.ContinuationPolicy
	logger  *slog.Logger
	stats   *metrics.Metrics

	searcher *search.Orchestrator
	state    *statecell.Cell[State]

	mu        sync.Mutex
	current   State
	criterion models.Criterion
	term      string
	timer     *time.Timer
	closed    bool

	done chan struct{}
	wg   sync.WaitGroup
}

// Option configures a Service.
type Option func(*serviceConfig)

type serviceConfig struct {
	logger         *slog.Logger
	stats          *metrics.Metrics
	debounceWindow time.Duration
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *serviceConfig) {
		c.logger = logger
	}
}

func WithMetrics(stats *metrics.Metrics) Option {
	return func(c *serviceConfig) {
		c.stats = stats
	}
}

func WithDebounceWindow(window time.Duration) Option {
	return func(c *serviceConfig) {
		c.debounceWindow = window
	}
}

func New(pager *pagination.Controller, grouper *grouping.Coordinator, policy pagination.ContinuationPolicy, opts ...Option) *Service {
	cfg := &serviceConfig{debounceWindow: search.DefaultWindow}
	for _, opt := range opts {
		opt(cfg)
	}
	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Service{
		pager:     pager,
		grouper:   grouper,
		policy:    policy,
		logger:    logger,
		stats:     cfg.stats,
		criterion: models.ByFirstName,
		done:      make(chan struct{}),
	}
	s.current = State{
		Groups:    []models.Group{},
		Criterion: s.criterion,
		Pagination: pagination.State{
			Page:    1,
			HasMore: true,
		},
	}
	s.state = statecell.New(s.current)
	s.searcher = search.New(s.onStableTerm,
		search.WithWindow(cfg.debounceWindow),
		search.WithLogger(logger),
	)

	s.watch()
	return s
}

// watch funnels every component stream into the resolved state cell. The
// service is the cell's only writer; each stream updates its own slice of the
// snapshot.
func (s *Service) watch() {
	groupsCh, cancelGroups := s.grouper.Results().Watch()
	loadingCh, cancelLoading := s.grouper.Loading().Watch()
	pagerCh, cancelPager := s.pager.State().Watch()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancelGroups()
		defer cancelLoading()
		defer cancelPager()
		for {
			select {
			case <-s.done:
				return
			case groups, ok := <-groupsCh:
				if !ok {
					return
				}
				s.apply(func(st *State) { st.Groups = groups })
			case loading, ok := <-loadingCh:
				if !ok {
					return
				}
				s.apply(func(st *State) { st.GroupsLoading = loading })
			case pst, ok := <-pagerCh:
				if !ok {
					return
				}
				total := len(s.pager.Records())
				s.apply(func(st *State) {
					st.Pagination = pst
					st.TotalRecords = total
				})
			}
		}
	}()
}

func (s *Service) apply(mutate func(*State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	mutate(&s.current)
	s.state.Set(s.current)
}

// State exposes the resolved directory state.
func (s *Service) State() statecell.Reader[State] {
	return s.state
}

// Start performs the initial load and engages the auto-continuation policy
// when the first page came back small.
func (s *Service) Start(ctx context.Context) {
	records, err := s.pager.LoadNextPage(ctx, 0)
	s.regroup()
	if err != nil {
		return
	}
	if s.policy.ShouldEngage(len(records)) {
		s.logger.Info("initial load below low-water mark, engaging auto-continuation",
			"initial", len(records),
			"low_water_mark", s.policy.LowWaterMark,
		)
		s.scheduleContinuation()
	}
}

// scheduleContinuation arms one delayed load. Each fired load decides whether
// to arm the next, so a terminal pagination state stops the chain.
func (s *Service) scheduleContinuation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.timer = time.AfterFunc(s.policy.NextDelay(), func() {
		select {
		case <-s.done:
			return
		default:
		}
		records, err := s.pager.LoadNextPage(context.Background(), 0)
		s.regroup()
		if err != nil {
			return
		}
		if s.policy.ShouldContinue(len(records), s.pager.State().Get().HasMore) {
			s.scheduleContinuation()
		}
	})
}

// SetSearchInput feeds one raw input event into the debouncer.
func (s *Service) SetSearchInput(raw string) {
	s.searcher.OnInput(raw)
}

func (s *Service) onStableTerm(term string) {
	s.mu.Lock()
	s.term = term
	s.mu.Unlock()
	s.stats.IncrementSearches()
	s.apply(func(st *State) { st.SearchTerm = term })
	s.regroup()
}

// SetCriterion switches the grouping axis and regroups immediately.
func (s *Service) SetCriterion(criterion models.Criterion) {
	s.mu.Lock()
	s.criterion = criterion
	s.mu.Unlock()
	s.apply(func(st *State) { st.Criterion = criterion })
	s.regroup()
}

// LoadMore triggers the next page load off the caller's goroutine. The
// pagination controller's in-flight guard makes concurrent triggers no-ops.
func (s *Service) LoadMore() {
	s.spawn(func(ctx context.Context) {
		_, _ = s.pager.LoadNextPage(ctx, 0)
		s.regroup()
	})
}

// Reset clears the working set and reloads from page one, re-engaging the
// auto-continuation policy like a fresh start.
func (s *Service) Reset() {
	s.spawn(func(ctx context.Context) {
		records, err := s.pager.ResetAndLoad(ctx, 0)
		s.regroup()
		if err != nil {
			return
		}
		if s.policy.ShouldEngage(len(records)) {
			s.scheduleContinuation()
		}
	})
}

func (s *Service) spawn(fn func(ctx context.Context)) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()
	go func() {
		defer s.wg.Done()
		fn(context.Background())
	}()
}

// regroup requests a fresh partition over the record subset the search term
// selects: the filtered set while searching, the full set otherwise.
func (s *Service) regroup() {
	s.mu.Lock()
	term := s.term
	criterion := s.criterion
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return
	}

	subset := search.Filter(s.pager.Records(), term)
	if err := s.grouper.RequestGrouping(subset, criterion); err != nil {
		s.logger.Error("grouping request rejected", "error", err)
	}
}

// Close tears everything down: debounce timer, continuation timer, watch
// loops, the grouping backend, and the published cells. Late callbacks find
// closed flags instead of released state.
func (s *Service) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()

	s.searcher.Close()
	close(s.done)
	s.grouper.Close()
	s.pager.CloseState()
	s.wg.Wait()
	s.state.Close()
}
