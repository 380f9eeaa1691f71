package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/piwi3910/SlabNest/internal/engine"
	"github.com/piwi3910/SlabNest/internal/logger"
	"github.com/piwi3910/SlabNest/internal/model"
)

type NestingService interface {
	Optimize(ctx context.Context, req model.NestingRequest) (model.NestingResult, error)
	UpdatePlacement(ctx context.Context, req model.PlacementEditRequest) (engine.EditResult, error)
	SetLocked(ctx context.Context, req model.LockRequest) ([]model.Part, error)
}

type handler struct {
	svc          NestingService
	maxBodyBytes int64
}

func NewNestingHandler(service NestingService, maxBodyBytes int64) *handler {
	return &handler{svc: service, maxBodyBytes: maxBodyBytes}
}

// Routes mounts the nesting endpoints on r.
func (h *handler) Routes(r chi.Router) {
	r.Post("/optimize-nesting", h.OptimizeNesting)
	r.Post("/placements/update", h.UpdatePlacement)
	r.Post("/placements/lock", h.LockPart)
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type lockResponse struct {
	Parts []model.Part `json:"parts"`
}

func (h *handler) OptimizeNesting(w http.ResponseWriter, r *http.Request) {
	var req model.NestingRequest
	if !h.decode(w, r, &req) {
		return
	}

	res, err := h.svc.Optimize(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *handler) UpdatePlacement(w http.ResponseWriter, r *http.Request) {
	var req model.PlacementEditRequest
	if !h.decode(w, r, &req) {
		return
	}

	res, err := h.svc.UpdatePlacement(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *handler) LockPart(w http.ResponseWriter, r *http.Request) {
	var req model.LockRequest
	if !h.decode(w, r, &req) {
		return
	}

	parts, err := h.svc.SetLocked(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, lockResponse{Parts: parts})
}

func (h *handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		logger.Warn(r.Context(), "decode request body", logger.ErrorF(err))

		if errors.Is(err, model.ErrMalformedShape) {
			writeJSON(w, r, http.StatusInternalServerError, errorResponse{
				Error:   "Optimization failed",
				Details: err.Error(),
			})
			return false
		}
		writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: "invalid JSON body: " + err.Error()})
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := mapError(err)
	if status >= http.StatusInternalServerError {
		logger.Error(r.Context(), "nesting request failed", logger.ErrorF(err))
	}
	writeJSON(w, r, status, body)
}

func mapError(err error) (int, errorResponse) {
	var reqErr *model.RequestError
	switch {
	case errors.As(err, &reqErr):
		return http.StatusBadRequest, errorResponse{Error: reqErr.Msg} // 400
	case errors.Is(err, model.ErrInvalidRequest):
		return http.StatusBadRequest, errorResponse{Error: err.Error()} // 400
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, errorResponse{ // 504
			Error:   "Optimization timed out",
			Details: err.Error(),
		}
	default:
		return http.StatusInternalServerError, errorResponse{ // 500
			Error:   "Optimization failed",
			Details: err.Error(),
		}
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error(r.Context(), "encode response", logger.ErrorF(err))
	}
}
