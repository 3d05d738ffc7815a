package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/jarvis/internal/apperr"
	"github.com/starford/jarvis/internal/layout"
)

// kindParam resolves the {kind} path segment case-insensitively.
func kindParam(r *http.Request) (layout.Kind, error) {
	k, ok := layout.ParseKind(chi.URLParam(r, "kind"))
	if !ok {
		return "", fmt.Errorf("unknown window kind %q: %w", chi.URLParam(r, "kind"), apperr.ErrInvalid)
	}
	return k, nil
}

// ListWindows handles GET /api/windows.
func (h *Handler) ListWindows(w http.ResponseWriter, r *http.Request) {
	st, err := h.hud.State(r.Context())
	if err != nil {
		writeError(w, "list windows", err)
		return
	}
	writeJSON(w, http.StatusOK, st.Layout)
}

// OpenWindow handles POST /api/windows. An already open kind answers 200,
// a new window 201.
func (h *Handler) OpenWindow(w http.ResponseWriter, r *http.Request) {
	var req OpenWindowRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	k, _ := layout.ParseKind(req.Kind)
	res, err := h.hud.OpenWindow(r.Context(), k, req.Title)
	if err != nil {
		writeError(w, "open window", err)
		return
	}
	status := http.StatusCreated
	if res == layout.AlreadyOpen {
		status = http.StatusOK
	}
	writeJSON(w, status, OpenResponse{Open: true})
}

// ToggleWindow handles POST /api/windows/{kind}/toggle.
func (h *Handler) ToggleWindow(w http.ResponseWriter, r *http.Request) {
	k, err := kindParam(r)
	if err != nil {
		writeError(w, "toggle window", err)
		return
	}
	open, err := h.hud.ToggleWindow(r.Context(), k, "")
	if err != nil {
		writeError(w, "toggle window", err)
		return
	}
	writeJSON(w, http.StatusOK, OpenResponse{Open: open})
}

// CloseWindow handles DELETE /api/windows/{kind}.
func (h *Handler) CloseWindow(w http.ResponseWriter, r *http.Request) {
	k, err := kindParam(r)
	if err != nil {
		writeError(w, "close window", err)
		return
	}
	ok, err := h.hud.CloseWindow(r.Context(), k)
	if err != nil {
		writeError(w, "close window", err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ResizeWindow handles PUT /api/windows/{kind}/weight.
func (h *Handler) ResizeWindow(w http.ResponseWriter, r *http.Request) {
	k, err := kindParam(r)
	if err != nil {
		writeError(w, "resize window", err)
		return
	}
	var req WeightRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.hud.ResizeWindow(r.Context(), k, req.Weight); err != nil {
		writeError(w, "resize window", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetWindowPercent handles PUT /api/windows/{kind}/percent.
func (h *Handler) SetWindowPercent(w http.ResponseWriter, r *http.Request) {
	k, err := kindParam(r)
	if err != nil {
		writeError(w, "set window percent", err)
		return
	}
	var req PercentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.hud.SetWindowPercent(r.Context(), k, req.Percent); err != nil {
		writeError(w, "set window percent", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ApplyBatch handles POST /api/layout/batch. Malformed instructions are
// reported in the result rather than rejecting the batch.
func (h *Handler) ApplyBatch(w http.ResponseWriter, r *http.Request) {
	var b layout.Batch
	if !decodeJSON(w, r, &b) {
		return
	}
	res, err := h.hud.ApplyLayout(r.Context(), b)
	if err != nil {
		writeError(w, "apply batch", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Revert handles POST /api/layout/revert.
func (h *Handler) Revert(w http.ResponseWriter, r *http.Request) {
	ok, err := h.hud.Revert(r.Context())
	if err != nil {
		writeError(w, "revert", err)
		return
	}
	writeJSON(w, http.StatusOK, RevertResponse{Reverted: ok})
}

// ApplyPreset handles POST /api/layout/preset.
func (h *Handler) ApplyPreset(w http.ResponseWriter, r *http.Request) {
	var req ModeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	m, err := req.Parse()
	if err != nil {
		writeError(w, "apply preset", err)
		return
	}
	res, err := h.hud.ApplyPreset(r.Context(), m)
	if err != nil {
		writeError(w, "apply preset", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
