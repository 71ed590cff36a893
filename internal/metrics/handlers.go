package metrics

import (
	"encoding/json"
	"errors"
	"net/http"
)

type Handlers struct {
	service *Service
}

func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// HandleGetSnapshot обрабатывает GET /v1/metrics/snapshot
func (h *Handlers) HandleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Snapshot(r.Context())
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleGetScore обрабатывает GET /v1/metrics/score
func (h *Handlers) HandleGetScore(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Score(r.Context())
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleGetTrends обрабатывает GET /v1/metrics/trends
func (h *Handlers) HandleGetTrends(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Trends(r.Context())
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleSync обрабатывает POST /v1/metrics/sync
func (h *Handlers) HandleSync(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Sync(r.Context())
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleAutoSync обрабатывает POST /v1/metrics/autosync
func (h *Handlers) HandleAutoSync(w http.ResponseWriter, r *http.Request) {
	var req AutoSyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	resp, err := h.service.SetAutoSync(r.Context(), req.Enabled)
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
	case errors.Is(err, ErrReauthRequired):
		writeError(w, http.StatusUnauthorized, "reauth_required", "Google Fit authorization expired, sign in again")
	case errors.Is(err, ErrNotSynced):
		writeError(w, http.StatusNotFound, "not_synced", "No metrics yet, run a sync first")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}
