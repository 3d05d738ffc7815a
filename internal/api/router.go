package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/jarvis/internal/hud"
)

// NewRouter creates a chi router with all HUD routes mounted.
// sseHandler, if non-nil, is mounted at GET /events.
func NewRouter(s *hud.Session, sseHandler http.Handler) chi.Router {
	h := NewHandler(s)

	r := chi.NewRouter()

	r.Get("/state", h.State)
	r.Post("/commands", h.SubmitCommand)
	r.Post("/intents", h.DispatchIntents)

	// Windows.
	r.Get("/windows", h.ListWindows)
	r.Post("/windows", h.OpenWindow)
	r.Post("/windows/{kind}/toggle", h.ToggleWindow)
	r.Delete("/windows/{kind}", h.CloseWindow)
	r.Put("/windows/{kind}/weight", h.ResizeWindow)
	r.Put("/windows/{kind}/percent", h.SetWindowPercent)

	r.Route("/layout", func(r chi.Router) {
		r.Post("/batch", h.ApplyBatch)
		r.Post("/revert", h.Revert)
		r.Post("/preset", h.ApplyPreset)
	})

	r.Route("/approvals", func(r chi.Router) {
		r.Get("/", h.ListApprovals)
		r.Post("/approve-all", h.ApproveAll)
		r.Post("/reject-all", h.RejectAll)
		r.Post("/{id}/approve", h.Approve)
		r.Post("/{id}/reject", h.Reject)
		r.Post("/{id}/modify", h.Modify)
	})

	r.Put("/mode", h.SetMode)
	r.Put("/theme", h.SetTheme)
	r.Put("/alert", h.SetAlert)
	r.Put("/focus-lock", h.SetFocusLock)

	r.Post("/tasks", h.CreateTask)
	r.Put("/tasks/{id}", h.UpdateTask)
	r.Post("/tasks/{id}/subtasks/{subtaskID}/toggle", h.ToggleSubtask)
	r.Delete("/draft", h.DiscardDraft)
	r.Post("/briefing", h.Briefing)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
