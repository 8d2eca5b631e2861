package refresh

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("refresh: session not found")

// Manager keeps the live sessions opened through the HTTP API.
// Sessions nobody reads for longer than idle are stopped, except the kept ones.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	kept     map[string]bool

	base    context.Context
	src     Source
	cadence Cadence
	idle    time.Duration
	opts    Options
	now     func() time.Time
}

// NewManager: sessions live until closed, until ctx is done or, with idle > 0,
// until they go unread for longer than idle.
func NewManager(ctx context.Context, src Source, cad Cadence, idle time.Duration, opts Options) *Manager {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Manager{
		sessions: make(map[string]*Session),
		kept:     make(map[string]bool),
		base:     ctx,
		src:      src,
		cadence:  cad,
		idle:     idle,
		opts:     opts,
		now:      now,
	}
}

// Open starts a new polling session, optionally following one luminaria.
func (m *Manager) Open(luminaria string) (*Session, error) {
	m.Prune()
	s := NewSession(uuid.NewString(), Tasks(m.src, m.cadence, strings.TrimSpace(luminaria)), m.opts)
	if err := s.Start(m.base); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()
	return s, nil
}

// Keep exempts a session from idle pruning.
func (m *Manager) Keep(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	m.kept[id] = true
	return nil
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Close stops the session and forgets it.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	delete(m.kept, id)
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	s.Stop()
	return nil
}

// Prune stops and forgets the sessions idle for longer than idle.
// It returns how many were dropped.
func (m *Manager) Prune() int {
	if m.idle <= 0 {
		return 0
	}
	now := m.now()
	var stale []*Session
	m.mu.Lock()
	for id, s := range m.sessions {
		if m.kept[id] || s.idleSince(now) <= m.idle {
			continue
		}
		stale = append(stale, s)
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	for _, s := range stale {
		s.Stop()
	}
	if len(stale) > 0 && m.opts.Logger != nil {
		m.opts.Logger.Printf("refresh: pruned %d idle session(s)", len(stale))
	}
	return len(stale)
}

// Sweep calls Prune every interval until ctx is done.
func (m *Manager) Sweep(ctx context.Context, every time.Duration) {
	if m.idle <= 0 || every <= 0 {
		return
	}
	newTicker := m.opts.NewTicker
	if newTicker == nil {
		newTicker = RealTicker
	}
	t := newTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C():
			m.Prune()
		}
	}
}

// CloseAll stops every session; used on shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for id, s := range m.sessions {
		all = append(all, s)
		delete(m.sessions, id)
	}
	m.kept = make(map[string]bool)
	m.mu.Unlock()
	for _, s := range all {
		s.Stop()
	}
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
