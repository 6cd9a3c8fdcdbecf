package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"pmd-directory/internal/filter"
	"pmd-directory/internal/models"
	"pmd-directory/internal/observe"
	"pmd-directory/internal/taxonomy"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period before a keystroke burst settles.
const DefaultDebounce = 300 * time.Millisecond

var ErrClosed = errors.New("pipeline: session closed")

// Phase is where the query lifecycle of a session currently is.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseDebouncing Phase = "debouncing"
	PhaseSettled    Phase = "settled"
	PhaseMatching   Phase = "matching"
	PhasePublished  Phase = "published"
)

// SessionOptions configure NewSession. Zero values get defaults. Viewer is the
// viewer's kgid; when set, the admin flag follows each RecordSet.
type SessionOptions struct {
	Clock    clockwork.Clock
	Debounce time.Duration
	Engine   *Engine
	Taxonomy *taxonomy.Taxonomy
	Logger   *zap.Logger
	Viewer   string
}

// Session is one viewer's reactive pipeline. Every mutation replaces the
// state under a lock and wakes a single worker, which recomputes from one
// consistent copy and publishes. Intermediate states may be skipped; the
// last state is always published.
type Session struct {
	id        string
	viewer    string
	clock     clockwork.Clock
	engine    *Engine
	logger    *zap.Logger
	debouncer *Debouncer
	hub       *observe.Broadcaster[Result]

	mu              sync.Mutex
	snap            Snapshot
	employeesLoaded bool
	officersLoaded  bool
	sel             filter.Selection
	rawQuery        string
	gen             uint64
	phase           Phase
	lastActive      time.Time

	wake   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSession starts a session and immediately publishes a loading result.
func NewSession(id string, opts SessionOptions) *Session {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Engine == nil {
		opts.Engine = &Engine{}
	}
	if opts.Taxonomy == nil {
		opts.Taxonomy = taxonomy.Default()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		id:         id,
		viewer:     opts.Viewer,
		clock:      opts.Clock,
		engine:     opts.Engine,
		logger:     opts.Logger.With(zap.String("session_id", id)),
		hub:        observe.NewBroadcaster[Result](),
		snap:       Snapshot{Taxonomy: opts.Taxonomy},
		sel:        filter.Default(),
		phase:      PhaseIdle,
		lastActive: opts.Clock.Now(),
		wake:       make(chan struct{}, 1),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
	s.debouncer = NewDebouncer(opts.Clock, opts.Debounce, s.settle)

	go s.run()
	s.notify()
	return s
}

func (s *Session) ID() string { return s.id }

// Input feeds one raw keystroke value through the debouncer.
func (s *Session) Input(raw string) {
	s.mu.Lock()
	s.rawQuery = raw
	s.phase = PhaseDebouncing
	s.lastActive = s.clock.Now()
	s.mu.Unlock()
	s.debouncer.Submit(raw)
}

func (s *Session) settle(query string) {
	s.update(func() {
		s.sel = s.sel.With(filter.DimensionQuery, query)
		s.phase = PhaseSettled
	})
}

// SetQuery settles query immediately, dropping any pending input.
func (s *Session) SetQuery(query string) {
	s.debouncer.Cancel()
	s.update(func() {
		s.rawQuery = query
		s.sel = s.sel.With(filter.DimensionQuery, query)
		s.phase = PhaseSettled
	})
}

func (s *Session) SetFilterKind(kind models.FilterKind) {
	s.update(func() {
		s.sel.Kind = models.ParseFilterKind(string(kind))
	})
}

// Select changes one dropdown dimension and reconciles the others.
func (s *Session) Select(dim filter.Dimension, value string) {
	switch dim {
	case filter.DimensionQuery:
		s.SetQuery(value)
		return
	case filter.DimensionKind:
		s.SetFilterKind(models.FilterKind(value))
		return
	}
	s.update(func() {
		s.sel = filter.Apply(s.snap.Taxonomy, s.sel, dim, value)
	})
}

// ResetFilters restores the default selection, including the query.
func (s *Session) ResetFilters() {
	s.debouncer.Cancel()
	s.update(func() {
		s.sel = filter.Reset()
		s.rawQuery = ""
		s.phase = PhaseIdle
	})
}

func (s *Session) SetEmployees(employees []models.Employee) {
	s.update(func() {
		s.snap.Employees = employees
		s.employeesLoaded = true
		s.snap.Loaded = s.employeesLoaded && s.officersLoaded
	})
}

func (s *Session) SetOfficers(officers []models.Officer) {
	s.update(func() {
		s.snap.Officers = officers
		s.officersLoaded = true
		s.snap.Loaded = s.employeesLoaded && s.officersLoaded
	})
}

// SetRecords replaces both record sets, and the viewer's admin flag when the
// session has a viewer, in one update.
func (s *Session) SetRecords(set RecordSet) {
	s.update(func() {
		s.snap.Employees = set.Employees
		s.snap.Officers = set.Officers
		s.employeesLoaded, s.officersLoaded = true, true
		s.snap.Loaded = true
		if s.viewer != "" {
			s.snap.IsAdmin = set.IsAdmin(s.viewer)
		}
	})
}

// SetTaxonomy swaps the taxonomy and re-checks the selection against it.
func (s *Session) SetTaxonomy(t *taxonomy.Taxonomy) {
	if t == nil {
		return
	}
	s.update(func() {
		s.snap.Taxonomy = t
		s.sel = filter.Revalidate(t, s.sel)
	})
}

func (s *Session) SetAdmin(isAdmin bool) {
	s.update(func() {
		s.snap.IsAdmin = isAdmin
	})
}

func (s *Session) Selection() filter.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel
}

// RawQuery is the last unsettled input.
func (s *Session) RawQuery() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rawQuery
}

func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Touch marks the session as active without changing it.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastActive = s.clock.Now()
	s.mu.Unlock()
}

// Current returns the latest published result.
func (s *Session) Current() (Result, bool) {
	return s.hub.Latest()
}

// Observe streams published results until ctx is done.
func (s *Session) Observe(ctx context.Context) <-chan Result {
	return s.hub.Observe(ctx)
}

// Wait blocks until a result newer than since is published.
func (s *Session) Wait(ctx context.Context, since uint64) (Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := s.hub.Observe(ctx)
	for {
		select {
		case res, ok := <-ch:
			if !ok {
				cur, _ := s.Current()
				return cur, ctx.Err()
			}
			if res.Generation > since {
				return res, nil
			}
		case <-s.ctx.Done():
			cur, _ := s.Current()
			return cur, ErrClosed
		}
	}
}

// Bind forwards every source into the session until it is closed. Nil
// sources are skipped, and privilege is ignored when the session has a viewer.
func (s *Session) Bind(records RecordSource, privilege PrivilegeSource, tax TaxonomySource) {
	if records != nil {
		go forward(s.ctx, records.ObserveRecords(s.ctx), s.SetRecords)
	}
	if privilege != nil && s.viewer == "" {
		go forward(s.ctx, privilege.ObserveIsAdmin(s.ctx), s.SetAdmin)
	}
	if tax != nil {
		go forward(s.ctx, tax.Observe(s.ctx), s.SetTaxonomy)
	}
}

// Close stops the debounce timer and the worker. It is safe to call twice.
func (s *Session) Close() {
	s.debouncer.Close()
	s.cancel()
	<-s.done
}

func forward[T any](ctx context.Context, ch <-chan T, apply func(T)) {
	for {
		select {
		case <-ctx.Done():
			return
		case v, ok := <-ch:
			if !ok {
				return
			}
			apply(v)
		}
	}
}

func (s *Session) update(fn func()) {
	s.mu.Lock()
	fn()
	s.gen++
	s.lastActive = s.clock.Now()
	s.mu.Unlock()
	s.notify()
}

func (s *Session) notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Session) run() {
	defer close(s.done)
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.wake:
		}

		s.mu.Lock()
		snap, sel, gen := s.snap, s.sel, s.gen
		if s.phase != PhaseDebouncing {
			s.phase = PhaseMatching
		}
		s.mu.Unlock()

		res := s.engine.Compute(s.ctx, snap, sel)
		res.Generation = gen

		s.mu.Lock()
		if s.phase == PhaseMatching {
			s.phase = PhasePublished
		}
		s.mu.Unlock()

		s.hub.Publish(res)
		s.logger.Debug("Published directory result",
			zap.Uint64("generation", gen),
			zap.String("state", string(res.State)),
			zap.Int("contacts", len(res.Contacts)),
		)
	}
}
