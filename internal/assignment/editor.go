package assignment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/LeonardoBeccarini/lumicert/internal/model/entities"
	"github.com/LeonardoBeccarini/lumicert/internal/telemetry"
)

var (
	ErrClosed           = errors.New("assignment: editor closed")
	ErrUnknownLuminaria = errors.New("assignment: unknown luminaria")
	ErrNotAssignable    = errors.New("assignment: luminaria bound to another sector")
	// ErrReconcile means the assignment was committed but the fleet could not be re-read.
	ErrReconcile = errors.New("assignment: committed, reconcile failed")
)

// Linker commits a sector membership.
type Linker interface {
	EnlazarLuminarias(ctx context.Context, sectorID string, ids []string) error
}

// Loader reads the authoritative fleet.
type Loader interface {
	Luminarias(ctx context.Context) ([]entities.Luminaria, error)
}

type Backend interface {
	Linker
	Loader
}

// View is what the assignment modal shows.
type View struct {
	EditorID    string               `json:"id"`
	Sector      entities.Sector      `json:"sector"`
	Asignadas   []entities.Luminaria `json:"asignadas"`
	Disponibles []entities.Luminaria `json:"disponibles"`
	Seleccion   []string             `json:"seleccion"`
	Modificado  bool                 `json:"modificado"`
	Cerrado     bool                 `json:"cerrado"`
}

// Editor holds the pending selection of one sector. Toggles are local; only Save talks
// to the backend.
type Editor struct {
	mu sync.Mutex

	id      string
	sector  entities.Sector
	key     string
	fleet   []entities.Luminaria
	initial Selection
	sel     Selection
	closed  bool
	touched time.Time

	backend Backend
}

// NewEditor opens an editor on sector with the selection initialised to its current members.
func NewEditor(id string, sector entities.Sector, fleet []entities.Luminaria, backend Backend) (*Editor, error) {
	key := strings.TrimSpace(sector.Key())
	if key == "" {
		return nil, &telemetry.ValidationError{Field: "id_sector", Message: "identificador de sector requerido"}
	}
	initial := CurrentSelection(fleet, key)
	return &Editor{
		id:      id,
		sector:  sector,
		key:     key,
		fleet:   append([]entities.Luminaria(nil), fleet...),
		initial: initial,
		sel:     initial,
		touched: time.Now(),
		backend: backend,
	}, nil
}

func (e *Editor) ID() string { return e.id }

func (e *Editor) SectorKey() string { return e.key }

// Toggle flips idLum in the pending selection. Luminarias bound to another sector
// cannot be selected.
func (e *Editor) Toggle(idLum string) (View, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return e.viewLocked(), ErrClosed
	}
	idLum = strings.TrimSpace(idLum)
	lum, ok := e.lookupLocked(idLum)
	if !ok {
		return e.viewLocked(), fmt.Errorf("%w: %s", ErrUnknownLuminaria, idLum)
	}
	if lum.Assigned() && !lum.BoundTo(e.key) {
		return e.viewLocked(), fmt.Errorf("%w: %s", ErrNotAssignable, idLum)
	}
	e.sel = Toggle(e.sel, idLum)
	e.touched = time.Now()
	return e.viewLocked(), nil
}

func (e *Editor) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewLocked()
}

// Save commits the selection with a single membership replace, then re-reads the
// fleet. On commit failure the selection is kept and the editor stays open. Once the
// commit succeeds the editor closes, even when the re-read fails.
func (e *Editor) Save(ctx context.Context) ([]entities.Luminaria, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, ErrClosed
	}
	e.touched = time.Now()

	if err := e.backend.EnlazarLuminarias(ctx, e.key, e.sel.IDs()); err != nil {
		return nil, err
	}

	e.closed = true
	fleet, err := e.backend.Luminarias(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReconcile, err)
	}
	e.fleet = fleet
	e.initial = CurrentSelection(fleet, e.key)
	e.sel = e.initial
	return fleet, nil
}

// Cancel discards the pending selection without any backend call.
func (e *Editor) Cancel() {
	e.mu.Lock()
	e.closed = true
	e.sel = e.initial
	e.mu.Unlock()
}

func (e *Editor) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

func (e *Editor) idleSince(now time.Time) time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return now.Sub(e.touched)
}

func (e *Editor) lookupLocked(idLum string) (entities.Luminaria, bool) {
	for _, l := range e.fleet {
		if l.IDLum == idLum {
			return l, true
		}
	}
	return entities.Luminaria{}, false
}

func (e *Editor) viewLocked() View {
	cols := Columns(e.fleet, e.key, e.sel)
	return View{
		EditorID:    e.id,
		Sector:      e.sector,
		Asignadas:   cols.Assigned,
		Disponibles: cols.Unassigned,
		Seleccion:   e.sel.IDs(),
		Modificado:  !e.sel.Equal(e.initial),
		Cerrado:     e.closed,
	}
}
