package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/LeonardoBeccarini/lumicert/internal/assignment"
	"github.com/LeonardoBeccarini/lumicert/internal/model"
	"github.com/LeonardoBeccarini/lumicert/internal/model/messages"
)

func decodeBody(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		return NewAPIError(ErrorCodeInvalidFormat, "cuerpo JSON no valido", err.Error(), http.StatusBadRequest)
	}
	return nil
}

func (d *Dashboard) HandleCrearSector(w http.ResponseWriter, r *http.Request) {
	var in messages.SectorInput
	if err := decodeBody(r, &in); err != nil {
		d.fail(w, r, err)
		return
	}
	ctx, cancel := d.requestContext(r)
	defer cancel()
	s, err := d.client.CrearSector(ctx, in)
	if err != nil {
		d.fail(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusCreated, s)
}

func (d *Dashboard) HandleActualizarSector(w http.ResponseWriter, r *http.Request) {
	var in messages.SectorInput
	if err := decodeBody(r, &in); err != nil {
		d.fail(w, r, err)
		return
	}
	ctx, cancel := d.requestContext(r)
	defer cancel()
	s, err := d.client.ActualizarSector(ctx, mux.Vars(r)["id"], in)
	if err != nil {
		d.fail(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, s)
}

func (d *Dashboard) HandleEliminarSector(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := d.requestContext(r)
	defer cancel()
	if err := d.client.EliminarSector(ctx, mux.Vars(r)["id"]); err != nil {
		d.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// findSector resolves id against both the storage id and the numeric id.
func findSector(all []model.Sector, id string) (model.Sector, bool) {
	id = strings.TrimSpace(id)
	for _, s := range all {
		if s.Key() == id || s.ID == id || (s.IDSector != 0 && strconv.Itoa(s.IDSector) == id) {
			return s, true
		}
	}
	return model.Sector{}, false
}

// HandleAbrirAsignacion opens an assignment editor on a sector.
func (d *Dashboard) HandleAbrirAsignacion(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := d.requestContext(r)
	defer cancel()

	id := mux.Vars(r)["id"]
	sectores, err := d.client.Sectores(ctx)
	if err != nil {
		d.fail(w, r, err)
		return
	}
	sector, ok := findSector(sectores, id)
	if !ok {
		d.fail(w, r, NewAPIError(ErrorCodeNotFound, fmt.Sprintf("sector %s no encontrado", id), nil, http.StatusNotFound))
		return
	}
	ed, err := d.editors.Open(ctx, sector)
	if err != nil {
		d.fail(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusCreated, ed.View())
}

func (d *Dashboard) HandleAsignacion(w http.ResponseWriter, r *http.Request) {
	ed, err := d.editors.Get(mux.Vars(r)["eid"])
	if err != nil {
		d.fail(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, ed.View())
}

func (d *Dashboard) HandleToggle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	ed, err := d.editors.Get(vars["eid"])
	if err != nil {
		d.fail(w, r, err)
		return
	}
	view, err := ed.Toggle(vars["idLum"])
	if err != nil {
		d.fail(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, view)
}

type guardadoResponse struct {
	Reconciliado bool                 `json:"reconciliado"`
	Aviso        string               `json:"aviso,omitempty"`
	Luminarias   []model.Luminaria    `json:"luminarias"`
	Particion    assignment.Partition `json:"particion"`
}

// HandleGuardar commits the editor. A failed commit keeps the editor open; a failed
// re-read after a successful commit is reported as saved but not reconciled.
func (d *Dashboard) HandleGuardar(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := d.requestContext(r)
	defer cancel()

	eid := mux.Vars(r)["eid"]
	ed, err := d.editors.Get(eid)
	if err != nil {
		d.fail(w, r, err)
		return
	}
	fleet, err := d.editors.Save(ctx, eid)
	switch {
	case errors.Is(err, assignment.ErrReconcile):
		d.cfg.Logger.Printf("asignacion %s: %v", eid, err)
		RespondWithJSON(w, http.StatusOK, guardadoResponse{
			Reconciliado: false,
			Aviso:        err.Error(),
			Luminarias:   []model.Luminaria{},
			Particion:    assignment.Partition{Assigned: []model.Luminaria{}, Unassigned: []model.Luminaria{}},
		})
	case err != nil:
		d.fail(w, r, err)
	default:
		RespondWithJSON(w, http.StatusOK, guardadoResponse{
			Reconciliado: true,
			Luminarias:   orEmpty(fleet),
			Particion:    assignment.PartitionFor(fleet, ed.SectorKey()),
		})
	}
}

func (d *Dashboard) HandleCancelarAsignacion(w http.ResponseWriter, r *http.Request) {
	if err := d.editors.Cancel(mux.Vars(r)["eid"]); err != nil {
		d.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
