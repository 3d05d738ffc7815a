package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/jarvis/internal/hud"
	"github.com/starford/jarvis/internal/mode"
	"github.com/starford/jarvis/internal/models"
)

// Handler holds API route handlers.
type Handler struct {
	hud *hud.Session
}

// NewHandler creates a new Handler.
func NewHandler(s *hud.Session) *Handler {
	return &Handler{hud: s}
}

// State handles GET /api/state.
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	st, err := h.hud.State(r.Context())
	if err != nil {
		writeError(w, "get state", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// SubmitCommand handles POST /api/commands. The NLU round trip happens
// inside the request; the result is the dispatch report.
func (h *Handler) SubmitCommand(w http.ResponseWriter, r *http.Request) {
	var req CommandRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	rep, err := h.hud.Submit(r.Context(), hud.Command{
		Text:          req.Text,
		Surface:       req.Surface,
		Persona:       req.Persona,
		ContextTaskID: req.ContextTaskID,
	})
	if err != nil {
		writeError(w, "submit command", err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// DispatchIntents handles POST /api/intents.
func (h *Handler) DispatchIntents(w http.ResponseWriter, r *http.Request) {
	var req IntentsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	rep, err := h.hud.Dispatch(r.Context(), req.Intents)
	if err != nil {
		writeError(w, "dispatch intents", err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// ListApprovals handles GET /api/approvals.
func (h *Handler) ListApprovals(w http.ResponseWriter, r *http.Request) {
	items, err := h.hud.Pending(r.Context())
	if err != nil {
		writeError(w, "list approvals", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Approve handles POST /api/approvals/{id}/approve.
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	out, err := h.hud.Approve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "approve", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Reject handles POST /api/approvals/{id}/reject.
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	if err := h.hud.Reject(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, "reject", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Modify handles POST /api/approvals/{id}/modify and returns the draft.
func (h *Handler) Modify(w http.ResponseWriter, r *http.Request) {
	draft, err := h.hud.Modify(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "modify", err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

// ApproveAll handles POST /api/approvals/approve-all.
func (h *Handler) ApproveAll(w http.ResponseWriter, r *http.Request) {
	out, err := h.hud.ApproveAll(r.Context())
	if err != nil {
		writeError(w, "approve all", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// RejectAll handles POST /api/approvals/reject-all.
func (h *Handler) RejectAll(w http.ResponseWriter, r *http.Request) {
	n, err := h.hud.RejectAll(r.Context())
	if err != nil {
		writeError(w, "reject all", err)
		return
	}
	writeJSON(w, http.StatusOK, CountResponse{Count: n})
}

// SetMode handles PUT /api/mode. The layout is left alone.
func (h *Handler) SetMode(w http.ResponseWriter, r *http.Request) {
	var req ModeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	m, err := req.Parse()
	if err != nil {
		writeError(w, "set mode", err)
		return
	}
	if err := h.hud.SetMode(r.Context(), m); err != nil {
		writeError(w, "set mode", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetTheme handles PUT /api/theme.
func (h *Handler) SetTheme(w http.ResponseWriter, r *http.Request) {
	var req ThemeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t, err := mode.ParseTheme(req.Theme)
	if err != nil {
		writeError(w, "set theme", err)
		return
	}
	if err := h.hud.SetTheme(r.Context(), t); err != nil {
		writeError(w, "set theme", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetAlert handles PUT /api/alert.
func (h *Handler) SetAlert(w http.ResponseWriter, r *http.Request) {
	var req ToggleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.hud.SetAlert(r.Context(), req.Enabled); err != nil {
		writeError(w, "set alert", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetFocusLock handles PUT /api/focus-lock.
func (h *Handler) SetFocusLock(w http.ResponseWriter, r *http.Request) {
	var req ToggleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.hud.SetFocusLock(r.Context(), req.Enabled); err != nil {
		writeError(w, "set focus lock", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateTask handles POST /api/tasks, the manual entry form.
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var t models.Task
	if !decodeJSON(w, r, &t) {
		return
	}
	added, err := h.hud.AddTask(r.Context(), t)
	if err != nil {
		writeError(w, "create task", err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

// UpdateTask handles PUT /api/tasks/{id}.
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var t models.Task
	if !decodeJSON(w, r, &t) {
		return
	}
	t.ID = chi.URLParam(r, "id")
	got, err := h.hud.UpdateTask(r.Context(), t)
	if err != nil {
		writeError(w, "update task", err)
		return
	}
	writeJSON(w, http.StatusOK, got)
}

// ToggleSubtask handles POST /api/tasks/{id}/subtasks/{subtaskID}/toggle.
func (h *Handler) ToggleSubtask(w http.ResponseWriter, r *http.Request) {
	if err := h.hud.ToggleSubtask(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "subtaskID")); err != nil {
		writeError(w, "toggle subtask", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DiscardDraft handles DELETE /api/draft.
func (h *Handler) DiscardDraft(w http.ResponseWriter, r *http.Request) {
	if err := h.hud.DiscardDraft(r.Context()); err != nil {
		writeError(w, "discard draft", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Briefing handles POST /api/briefing.
func (h *Handler) Briefing(w http.ResponseWriter, r *http.Request) {
	var req BriefingRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}
	text, err := h.hud.Brief(r.Context(), req.Username)
	if err != nil {
		writeError(w, "briefing", err)
		return
	}
	writeJSON(w, http.StatusOK, BriefingResponse{Text: text})
}
