// Package server exposes the daemon's HTTP surface: health, metrics, the
// published snapshots, and control writes.
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/Roagert/fluidra-pool/internal/coordinator"
	"github.com/Roagert/fluidra-pool/internal/fluidra"
	"github.com/Roagert/fluidra-pool/internal/model"
	"github.com/Roagert/fluidra-pool/internal/registry"
)

// Handler serves the JSON API on top of the account registry.
type Handler struct {
	registry *registry.Registry
	log      zerolog.Logger
}

func NewHandler(reg *registry.Registry, log zerolog.Logger) *Handler {
	return &Handler{
		registry: reg,
		log:      log.With().Str("component", "http").Logger(),
	}
}

// Router builds the route table. Account selection rides in the ?account=
// query parameter; with a single registered account it may be omitted.
func (h *Handler) Router() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", HealthHandler)
	mux.HandleFunc("GET /api/v1/snapshot", h.handleSnapshot)
	mux.HandleFunc("POST /api/v1/refresh", h.handleRefresh)
	mux.HandleFunc("GET /api/v1/management", h.handleManagement)
	mux.HandleFunc("GET /api/v1/devices/{id}/error", h.handleDeviceError)
	mux.HandleFunc("GET /api/v1/devices/{id}/connection", h.handleDeviceConnection)
	mux.HandleFunc("PUT /api/v1/devices/{id}/components/{component}", h.handleSetComponent)
	return mux
}

// account resolves the target account for a request. A missing parameter is
// accepted only when exactly one account is registered.
func (h *Handler) account(w http.ResponseWriter, r *http.Request) (*registry.Account, bool) {
	id := r.URL.Query().Get("account")
	if id == "" {
		accounts := h.registry.Accounts()
		if len(accounts) == 1 {
			return accounts[0], true
		}
		writeError(w, http.StatusBadRequest, "account parameter is required")
		return nil, false
	}

	a, ok := h.registry.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown account")
		return nil, false
	}
	return a, true
}

func (h *Handler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	a, ok := h.account(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, a.Coordinator.Snapshot())
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	a, ok := h.account(w, r)
	if !ok {
		return
	}
	if err := a.Coordinator.RequestRefresh(r.Context()); err != nil {
		h.writeCoordinatorError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}

func (h *Handler) handleManagement(w http.ResponseWriter, r *http.Request) {
	a, ok := h.account(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, a.Coordinator.APIManagementInfo())
}

// resolveDevice accepts either a device id or a serial number.
func resolveDevice(a *registry.Account, key string) (model.Device, bool) {
	snap := a.Coordinator.Snapshot()
	if d, ok := snap.Device(key); ok {
		return d, true
	}
	return snap.DeviceBySerial(key)
}

func (h *Handler) handleDeviceError(w http.ResponseWriter, r *http.Request) {
	a, ok := h.account(w, r)
	if !ok {
		return
	}
	device, ok := resolveDevice(a, r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown device")
		return
	}
	deviceID := device.ID

	info := a.Coordinator.DeviceErrorInfo(deviceID)
	if info == nil {
		writeJSON(w, http.StatusOK, map[string]any{"device_id": deviceID, "status": "normal"})
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *Handler) handleDeviceConnection(w http.ResponseWriter, r *http.Request) {
	a, ok := h.account(w, r)
	if !ok {
		return
	}
	device, ok := resolveDevice(a, r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown device")
		return
	}
	info, ok := a.Coordinator.DeviceConnectionInfo(device.ID)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown device")
		return
	}
	writeJSON(w, http.StatusOK, info)
}

type setComponentRequest struct {
	Value any `json:"value"`
}

func (h *Handler) handleSetComponent(w http.ResponseWriter, r *http.Request) {
	a, ok := h.account(w, r)
	if !ok {
		return
	}

	var req setComponentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Value == nil {
		writeError(w, http.StatusBadRequest, "value is required")
		return
	}

	deviceID := r.PathValue("id")
	componentID := r.PathValue("component")
	if err := a.Dispatcher.SetComponentValue(r.Context(), deviceID, componentID, req.Value); err != nil {
		h.writeCoordinatorError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
}

// writeCoordinatorError maps coordinator error taxonomy onto HTTP statuses.
func (h *Handler) writeCoordinatorError(w http.ResponseWriter, err error) {
	var notFound *coordinator.ComponentNotFoundError
	var statusErr *fluidra.HTTPStatusError

	switch {
	case errors.Is(err, coordinator.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, coordinator.ErrAuthFailed):
		writeError(w, http.StatusBadGateway, err.Error())
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &statusErr):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		h.log.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// HealthHandler returns a simple OK for liveness checks.
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
