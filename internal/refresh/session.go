// Package refresh runs the live polling loops of dashboard sessions.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

type Category string

const (
	CategoryMedicion       Category = "medicion"
	CategoryLuz            Category = "luz"
	CategoryNotificaciones Category = "notificaciones"
	CategoryReportes       Category = "reportes"
	CategoryLuminaria      Category = "luminaria"
)

// Apply writes a fetch result into the session state.
type Apply func(*State)

// Task re-fetches one category every Interval.
type Task struct {
	Category Category
	Interval time.Duration
	Fetch    func(ctx context.Context) (Apply, error)
}

type Phase int

const (
	Idle Phase = iota
	Polling
	Stopped
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Polling:
		return "polling"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

var (
	ErrStopped        = errors.New("refresh: session stopped")
	ErrAlreadyPolling = errors.New("refresh: session already polling")
	ErrBadInterval    = errors.New("refresh: task interval must be positive")
)

type Options struct {
	NewTicker TickerFunc
	Metrics   *Metrics
	Logger    *log.Logger
	Now       func() time.Time
}

// Session owns one set of polling loops. Results are applied only while the session
// is Polling and only if no later-issued fetch of the same category was applied first.
type Session struct {
	mu sync.Mutex

	id    string
	tasks []Task
	phase Phase
	gen   uint64

	issued  map[Category]uint64
	applied map[Category]uint64
	data    State

	cancel  context.CancelFunc
	tickers []Ticker
	loops   sync.WaitGroup
	flights sync.WaitGroup

	watchesLuminaria bool
	lastRead         time.Time

	newTicker TickerFunc
	metrics   *Metrics
	logger    *log.Logger
	now       func() time.Time
}

func NewSession(id string, tasks []Task, opts Options) *Session {
	if opts.NewTicker == nil {
		opts.NewTicker = RealTicker
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Session{
		id:        id,
		tasks:     append([]Task(nil), tasks...),
		issued:    map[Category]uint64{},
		applied:   map[Category]uint64{},
		data:      newState(),
		newTicker: opts.NewTicker,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
		now:       opts.Now,
	}
	s.lastRead = s.now()
	for _, t := range tasks {
		if t.Category == CategoryLuminaria {
			s.watchesLuminaria = true
		}
	}
	return s
}

func (s *Session) ID() string { return s.id }

func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Start moves the session to Polling: every task fetches once immediately and then on
// its own ticker, without waiting for earlier fetches to finish.
func (s *Session) Start(parent context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.phase {
	case Polling:
		return ErrAlreadyPolling
	case Stopped:
		return ErrStopped
	}
	for _, task := range s.tasks {
		if task.Interval <= 0 {
			return fmt.Errorf("%w: %s=%s", ErrBadInterval, task.Category, task.Interval)
		}
	}

	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	s.phase = Polling
	s.gen++
	gen := s.gen
	s.metrics.sessions(1)

	for _, task := range s.tasks {
		t := s.newTicker(task.Interval)
		s.tickers = append(s.tickers, t)
		s.launchLocked(ctx, gen, task)

		s.loops.Add(1)
		go s.loop(ctx, gen, task, t)
	}
	return nil
}

func (s *Session) loop(ctx context.Context, gen uint64, task Task, t Ticker) {
	defer s.loops.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C():
			s.mu.Lock()
			s.launchLocked(ctx, gen, task)
			s.mu.Unlock()
		}
	}
}

func (s *Session) launchLocked(ctx context.Context, gen uint64, task Task) {
	if s.phase != Polling || gen != s.gen {
		return
	}
	s.issued[task.Category]++
	seq := s.issued[task.Category]
	s.metrics.tick(task.Category)

	s.flights.Add(1)
	go func() {
		defer s.flights.Done()
		apply, err := task.Fetch(ctx)
		s.complete(gen, task.Category, seq, apply, err)
	}()
}

func (s *Session) complete(gen uint64, c Category, seq uint64, apply Apply, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != Polling || gen != s.gen || seq <= s.applied[c] {
		s.metrics.stale(c)
		return
	}
	if err != nil {
		s.metrics.failure(c)
		s.data.errs[c] = err.Error()
		s.logger.Printf("refresh: session %s %s fetch #%d failed: %v", s.id, c, seq, err)
		return
	}
	s.applied[c] = seq
	if apply != nil {
		apply(&s.data)
	}
	delete(s.data.errs, c)
	s.data.updated[c] = s.now()
	s.metrics.applied(c)
}

// Stop moves the session to Stopped. When Stop returns no result can be applied any
// more, even for fetches still in flight. Stop is idempotent.
func (s *Session) Stop() {
	s.mu.Lock()
	if s.phase == Stopped {
		s.mu.Unlock()
		return
	}
	wasPolling := s.phase == Polling
	s.phase = Stopped
	s.gen++
	for _, t := range s.tickers {
		t.Stop()
	}
	s.tickers = nil
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	if wasPolling {
		s.metrics.sessions(-1)
	}
	s.loops.Wait()
}

// Snapshot returns a copy of the current state and marks the session as read.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRead = s.now()
	return s.data.snapshot(s.id, s.phase, s.watchesLuminaria)
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastRead)
}
