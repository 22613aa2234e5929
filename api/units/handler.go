// Package units exposes the session control contract over HTTP: starting
// and stopping charging sessions and reading the live fleet state.
package units

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kilianp07/solarfleet/core/logger"
	"github.com/kilianp07/solarfleet/core/model"
	"github.com/kilianp07/solarfleet/core/sim"
)

// Engine is the control surface the handler drives.
type Engine interface {
	StartSessionWithClass(unitID string, targetKWh float64, class model.ConnectorClass) (string, error)
	StopSession(unitID string) error
	Snapshots() []model.Telemetry
	FleetStats() model.FleetStats
}

type startRequest struct {
	TargetEnergyKWh float64              `json:"target_energy_kwh"`
	ConnectorClass  model.ConnectorClass `json:"connector_class,omitempty"`
}

type startResponse struct {
	SessionID string `json:"session_id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewHandler returns the HTTP handler for the control API.
func NewHandler(e Engine, log logger.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/units", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, e.Snapshots(), log)
	})

	mux.HandleFunc("GET /api/fleet/stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, e.FleetStats(), log)
	})

	mux.HandleFunc("POST /api/units/{id}/start", func(w http.ResponseWriter, r *http.Request) {
		var req startRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", log)
			return
		}
		id, err := e.StartSessionWithClass(r.PathValue("id"), req.TargetEnergyKWh, req.ConnectorClass)
		if err != nil {
			writeEngineError(w, err, log)
			return
		}
		writeJSON(w, http.StatusCreated, startResponse{SessionID: id}, log)
	})

	mux.HandleFunc("POST /api/units/{id}/stop", func(w http.ResponseWriter, r *http.Request) {
		if err := e.StopSession(r.PathValue("id")); err != nil {
			writeEngineError(w, err, log)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	return mux
}

func writeEngineError(w http.ResponseWriter, err error, log logger.Logger) {
	switch {
	case errors.Is(err, sim.ErrUnknownUnit):
		writeError(w, http.StatusNotFound, "unknown_unit", log)
	case errors.Is(err, sim.ErrUnitBusy):
		writeError(w, http.StatusConflict, "unit_busy", log)
	case errors.Is(err, sim.ErrInvalidTarget):
		writeError(w, http.StatusBadRequest, "invalid_target", log)
	case errors.Is(err, sim.ErrNoActiveSession):
		writeError(w, http.StatusConflict, "no_active_session", log)
	default:
		log.Errorf("control api: %v", err)
		writeError(w, http.StatusInternalServerError, "internal", log)
	}
}

func writeError(w http.ResponseWriter, code int, msg string, log logger.Logger) {
	writeJSON(w, code, errorResponse{Error: msg}, log)
}

func writeJSON(w http.ResponseWriter, code int, v any, log logger.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("encode response: %v", err)
	}
}
