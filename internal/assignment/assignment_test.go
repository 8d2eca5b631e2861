package assignment

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/LeonardoBeccarini/lumicert/internal/model/entities"
	"github.com/LeonardoBeccarini/lumicert/internal/telemetry"
)

type fakeBackend struct {
	mu       sync.Mutex
	fleet    []entities.Luminaria
	links    [][]string
	linkErr  error
	loadErr  error
	loads    int
	onCommit func(sector string, ids []string)
}

func (f *fakeBackend) EnlazarLuminarias(_ context.Context, sector string, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.links = append(f.links, append([]string(nil), ids...))
	if f.linkErr != nil {
		return f.linkErr
	}
	if f.onCommit != nil {
		f.onCommit(sector, ids)
	}
	return nil
}

func (f *fakeBackend) Luminarias(context.Context) ([]entities.Luminaria, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return append([]entities.Luminaria(nil), f.fleet...), nil
}

// fleet: 1,2 in A; 3 unassigned; 4 in B.
func testFleet() []entities.Luminaria {
	return []entities.Luminaria{
		{ID: "m1", IDLum: "1", IDSector: "A"},
		{ID: "m2", IDLum: "2", IDSector: "A"},
		{ID: "m3", IDLum: "3"},
		{ID: "m4", IDLum: "4", IDSector: "B"},
	}
}

func ids(ls []entities.Luminaria) []string {
	out := make([]string, 0, len(ls))
	for _, l := range ls {
		out = append(out, l.IDLum)
	}
	return out
}

func TestToggleIsInvolution(t *testing.T) {
	s := NewSelection("1", "2")
	for _, id := range []string{"1", "3"} {
		if got := Toggle(Toggle(s, id), id); !got.Equal(s) {
			t.Fatalf("toggle twice %s: got %v want %v", id, got.IDs(), s.IDs())
		}
	}
	if Toggle(s, "3").Len() != 3 || Toggle(s, "1").Has("1") {
		t.Fatal("toggle must add absent and remove present ids")
	}
	if !s.Has("1") || s.Len() != 2 {
		t.Fatal("toggle must not mutate its input")
	}
}

func TestPartitionExcludesOtherSectors(t *testing.T) {
	p := PartitionFor(testFleet(), "A")
	if got := ids(p.Assigned); !reflect.DeepEqual(got, []string{"1", "2"}) {
		t.Fatalf("assigned = %v", got)
	}
	if got := ids(p.Unassigned); !reflect.DeepEqual(got, []string{"3"}) {
		t.Fatalf("unassigned = %v", got)
	}

	empty := PartitionFor(testFleet(), "C")
	if len(empty.Assigned) != 0 || !reflect.DeepEqual(ids(empty.Unassigned), []string{"3"}) {
		t.Fatalf("unexpected partition for empty sector: %+v", empty)
	}
}

func TestColumnsFollowSelection(t *testing.T) {
	cols := Columns(testFleet(), "A", NewSelection("2", "3"))
	if got := ids(cols.Assigned); !reflect.DeepEqual(got, []string{"2", "3"}) {
		t.Fatalf("selected column = %v", got)
	}
	if got := ids(cols.Unassigned); !reflect.DeepEqual(got, []string{"1"}) {
		t.Fatalf("available column = %v", got)
	}
}

func TestEditorStartsFromCurrentMembers(t *testing.T) {
	ed, err := NewEditor("e1", entities.Sector{ID: "A", Nombre: "Centro"}, testFleet(), &fakeBackend{})
	if err != nil {
		t.Fatalf("NewEditor: %v", err)
	}
	v := ed.View()
	if !reflect.DeepEqual(v.Seleccion, []string{"1", "2"}) || v.Modificado {
		t.Fatalf("unexpected initial view %+v", v)
	}
}

func TestEditorRequiresSectorID(t *testing.T) {
	_, err := NewEditor("e1", entities.Sector{Nombre: "sin id"}, testFleet(), &fakeBackend{})
	if !telemetry.IsValidation(err) {
		t.Fatalf("want validation error, got %v", err)
	}
}

func TestEditorRefusesForeignLuminaria(t *testing.T) {
	ed, _ := NewEditor("e1", entities.Sector{ID: "A"}, testFleet(), &fakeBackend{})

	if _, err := ed.Toggle("4"); !errors.Is(err, ErrNotAssignable) {
		t.Fatalf("want ErrNotAssignable, got %v", err)
	}
	if _, err := ed.Toggle("99"); !errors.Is(err, ErrUnknownLuminaria) {
		t.Fatalf("want ErrUnknownLuminaria, got %v", err)
	}
	v, err := ed.Toggle("3")
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if !reflect.DeepEqual(v.Seleccion, []string{"1", "2", "3"}) || !v.Modificado {
		t.Fatalf("unexpected view %+v", v)
	}
}

func TestSaveFailureKeepsSelection(t *testing.T) {
	be := &fakeBackend{fleet: testFleet(), linkErr: &telemetry.TransportError{Op: "enlazar luminarias", Status: 500}}
	ed, _ := NewEditor("e1", entities.Sector{ID: "A"}, testFleet(), be)
	_, _ = ed.Toggle("1")
	_, _ = ed.Toggle("3")

	if _, err := ed.Save(context.Background()); !telemetry.IsTransport(err) {
		t.Fatalf("want transport error, got %v", err)
	}
	v := ed.View()
	if v.Cerrado || !reflect.DeepEqual(v.Seleccion, []string{"2", "3"}) {
		t.Fatalf("editor must stay open with its selection: %+v", v)
	}
	if be.loads != 0 {
		t.Fatalf("no reconcile after a failed commit, got %d loads", be.loads)
	}

	be.linkErr = nil
	if _, err := ed.Save(context.Background()); err != nil {
		t.Fatalf("retry Save: %v", err)
	}
	if len(be.links) != 2 || !reflect.DeepEqual(be.links[1], []string{"2", "3"}) {
		t.Fatalf("unexpected commits %v", be.links)
	}
}

func TestSaveCommitsThenReconciles(t *testing.T) {
	be := &fakeBackend{fleet: testFleet()}
	be.onCommit = func(sector string, sel []string) {
		chosen := NewSelection(sel...)
		for i := range be.fleet {
			l := &be.fleet[i]
			switch {
			case chosen.Has(l.IDLum):
				l.IDSector = sector
			case l.IDSector == sector:
				l.IDSector = ""
			}
		}
	}
	ed, _ := NewEditor("e1", entities.Sector{ID: "A"}, testFleet(), be)
	_, _ = ed.Toggle("2")
	_, _ = ed.Toggle("3")

	fleet, err := ed.Save(context.Background())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if len(be.links) != 1 || !reflect.DeepEqual(be.links[0], []string{"1", "3"}) {
		t.Fatalf("want exactly one commit of [1 3], got %v", be.links)
	}
	if be.loads != 1 {
		t.Fatalf("want one reconcile load, got %d", be.loads)
	}
	p := PartitionFor(fleet, "A")
	if !reflect.DeepEqual(ids(p.Assigned), []string{"1", "3"}) || !reflect.DeepEqual(ids(p.Unassigned), []string{"2"}) {
		t.Fatalf("reconciled partition = %+v", p)
	}
	if !ed.Closed() {
		t.Fatal("editor must close after a successful save")
	}
	if _, err := ed.Toggle("1"); !errors.Is(err, ErrClosed) {
		t.Fatalf("want ErrClosed after save, got %v", err)
	}
}

func TestReconcileFailureAfterCommit(t *testing.T) {
	be := &fakeBackend{loadErr: errors.New("boom")}
	ed, _ := NewEditor("e1", entities.Sector{ID: "A"}, testFleet(), be)

	_, err := ed.Save(context.Background())
	if !errors.Is(err, ErrReconcile) {
		t.Fatalf("want ErrReconcile, got %v", err)
	}
	if !ed.Closed() || len(be.links) != 1 {
		t.Fatalf("commit happened, editor must be closed: closed=%v links=%v", ed.Closed(), be.links)
	}
}

func TestCancelMakesNoCalls(t *testing.T) {
	be := &fakeBackend{fleet: testFleet()}
	reg := NewRegistry(be, 0)
	ed, err := reg.Open(context.Background(), entities.Sector{ID: "A"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_, _ = ed.Toggle("3")

	if err := reg.Cancel(ed.ID()); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if len(be.links) != 0 || be.loads != 1 {
		t.Fatalf("cancel must not call the backend: links=%v loads=%d", be.links, be.loads)
	}
	if _, err := reg.Get(ed.ID()); !errors.Is(err, ErrEditorNotFound) {
		t.Fatalf("want ErrEditorNotFound, got %v", err)
	}
}

func TestRegistrySaveForgetsClosedEditor(t *testing.T) {
	be := &fakeBackend{fleet: testFleet(), linkErr: errors.New("down")}
	reg := NewRegistry(be, 0)
	ed, _ := reg.Open(context.Background(), entities.Sector{ID: "A"})

	if _, err := reg.Save(context.Background(), ed.ID()); err == nil {
		t.Fatal("want error")
	}
	if reg.Len() != 1 {
		t.Fatal("failed save must keep the editor")
	}
	be.linkErr = nil
	if _, err := reg.Save(context.Background(), ed.ID()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if reg.Len() != 0 {
		t.Fatal("saved editor must be forgotten")
	}
}

func TestRegistryPrunesIdleEditors(t *testing.T) {
	be := &fakeBackend{fleet: testFleet()}
	reg := NewRegistry(be, time.Minute)
	now := time.Now()
	reg.now = func() time.Time { return now }

	old, _ := reg.Open(context.Background(), entities.Sector{ID: "A"})
	now = now.Add(2 * time.Minute)
	if _, err := reg.Open(context.Background(), entities.Sector{ID: "B"}); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := reg.Get(old.ID()); !errors.Is(err, ErrEditorNotFound) {
		t.Fatalf("idle editor must be pruned, got %v", err)
	}
	if !old.Closed() {
		t.Fatal("pruned editor must be closed")
	}
}
