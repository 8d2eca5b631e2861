package assignment

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/LeonardoBeccarini/lumicert/internal/model/entities"
	"github.com/google/uuid"
)

var ErrEditorNotFound = errors.New("assignment: editor not found")

// Registry keeps the open editors of the HTTP API.
type Registry struct {
	mu      sync.Mutex
	editors map[string]*Editor
	backend Backend
	idle    time.Duration
	now     func() time.Time
}

// NewRegistry: idle <= 0 keeps editors until they are saved or cancelled.
func NewRegistry(backend Backend, idle time.Duration) *Registry {
	return &Registry{
		editors: make(map[string]*Editor),
		backend: backend,
		idle:    idle,
		now:     time.Now,
	}
}

// Open loads the fleet and starts an editor on sector.
func (r *Registry) Open(ctx context.Context, sector entities.Sector) (*Editor, error) {
	fleet, err := r.backend.Luminarias(ctx)
	if err != nil {
		return nil, err
	}
	ed, err := NewEditor(uuid.NewString(), sector, fleet, r.backend)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneLocked()
	r.editors[ed.ID()] = ed
	return ed, nil
}

func (r *Registry) Get(id string) (*Editor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ed, ok := r.editors[id]
	if !ok {
		return nil, ErrEditorNotFound
	}
	return ed, nil
}

// Save commits the editor and forgets it once it is closed.
func (r *Registry) Save(ctx context.Context, id string) ([]entities.Luminaria, error) {
	ed, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	fleet, err := ed.Save(ctx)
	if ed.Closed() {
		r.forget(id)
	}
	return fleet, err
}

// Cancel closes and forgets the editor.
func (r *Registry) Cancel(id string) error {
	ed, err := r.Get(id)
	if err != nil {
		return err
	}
	ed.Cancel()
	r.forget(id)
	return nil
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.editors)
}

func (r *Registry) forget(id string) {
	r.mu.Lock()
	delete(r.editors, id)
	r.mu.Unlock()
}

func (r *Registry) pruneLocked() {
	if r.idle <= 0 {
		return
	}
	now := r.now()
	for id, ed := range r.editors {
		if ed.idleSince(now) > r.idle {
			ed.Cancel()
			delete(r.editors, id)
		}
	}
}
