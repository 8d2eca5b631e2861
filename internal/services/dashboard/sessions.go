package dashboard

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/LeonardoBeccarini/lumicert/internal/model/messages"
)

// HandleAbrirSesion starts a polling session; ?luminaria=<id_lum> also follows one device.
func (d *Dashboard) HandleAbrirSesion(w http.ResponseWriter, r *http.Request) {
	s, err := d.sessions.Open(r.URL.Query().Get("luminaria"))
	if err != nil {
		d.fail(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusCreated, s.Snapshot())
}

func (d *Dashboard) HandleSesion(w http.ResponseWriter, r *http.Request) {
	s, err := d.sessions.Get(mux.Vars(r)["sid"])
	if err != nil {
		d.fail(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, s.Snapshot())
}

func (d *Dashboard) HandleCerrarSesion(w http.ResponseWriter, r *http.Request) {
	sid := mux.Vars(r)["sid"]
	if sid == d.live {
		d.fail(w, r, NewAPIError(ErrorCodeConflict, "la sesion principal no se puede cerrar", nil, http.StatusConflict))
		return
	}
	if err := d.sessions.Close(sid); err != nil {
		d.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (d *Dashboard) HandleCrearReporte(w http.ResponseWriter, r *http.Request) {
	var in messages.NuevoReporte
	if err := decodeBody(r, &in); err != nil {
		d.fail(w, r, err)
		return
	}
	ctx, cancel := d.requestContext(r)
	defer cancel()
	rep, err := d.client.CrearReporte(ctx, in)
	if err != nil {
		d.fail(w, r, err)
		return
	}
	RespondWithJSON(w, http.StatusCreated, rep)
}
