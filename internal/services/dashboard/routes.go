package dashboard

import (
	"io"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// Routes registers the /dashboard API on r.
func (d *Dashboard) Routes(r *mux.Router) {
	api := r.PathPrefix("/dashboard").Subrouter()

	api.HandleFunc("/data", d.HandleData).Methods(http.MethodGet)
	api.HandleFunc("/resumen", d.HandleResumen).Methods(http.MethodGet)

	api.HandleFunc("/sectores", d.HandleSectores).Methods(http.MethodGet)
	api.HandleFunc("/sectores", d.HandleCrearSector).Methods(http.MethodPost)
	api.HandleFunc("/sectores/{id}", d.HandleSector).Methods(http.MethodGet)
	api.HandleFunc("/sectores/{id}", d.HandleActualizarSector).Methods(http.MethodPut)
	api.HandleFunc("/sectores/{id}", d.HandleEliminarSector).Methods(http.MethodDelete)

	api.HandleFunc("/sectores/{id}/asignacion", d.HandleAbrirAsignacion).Methods(http.MethodPost)
	api.HandleFunc("/asignaciones/{eid}", d.HandleAsignacion).Methods(http.MethodGet)
	api.HandleFunc("/asignaciones/{eid}", d.HandleCancelarAsignacion).Methods(http.MethodDelete)
	api.HandleFunc("/asignaciones/{eid}/toggle/{idLum}", d.HandleToggle).Methods(http.MethodPost)
	api.HandleFunc("/asignaciones/{eid}/guardar", d.HandleGuardar).Methods(http.MethodPost)

	api.HandleFunc("/reportes", d.HandleCrearReporte).Methods(http.MethodPost)

	api.HandleFunc("/sesiones", d.HandleAbrirSesion).Methods(http.MethodPost)
	api.HandleFunc("/sesiones/{sid}", d.HandleSesion).Methods(http.MethodGet)
	api.HandleFunc("/sesiones/{sid}", d.HandleCerrarSesion).Methods(http.MethodDelete)
}

// Wrap adds CORS for the browser UI, access logs and panic recovery.
func Wrap(h http.Handler, origins []string, accessLog io.Writer) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE"},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(handlers.RecoveryHandler()(handlers.LoggingHandler(accessLog, h)))
}
