package rest

import "net/http"

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth    *AuthHandler
	Events  *EventHandler
	Session *SessionHandler
	Health  *HealthHandler
}

// NewRouter mounts all routes on a fresh mux. Organizer routes expect the
// auth middleware to have populated the context; contributor routes carry
// their credential in the path.
func NewRouter(h Handlers) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/register", h.Auth.Register)
	mux.HandleFunc("POST /auth/login", h.Auth.Login)

	mux.HandleFunc("POST /events", h.Events.Create)
	mux.HandleFunc("GET /events", h.Events.List)
	mux.HandleFunc("GET /events/{id}", h.Events.Get)
	mux.HandleFunc("DELETE /events/{id}", h.Events.Delete)
	mux.HandleFunc("POST /events/{id}/close", h.Events.Close)
	mux.HandleFunc("POST /events/{id}/deadline", h.Events.ExtendDeadline)
	mux.HandleFunc("POST /events/{id}/send", h.Events.Send)
	mux.HandleFunc("POST /events/batch/deadline", h.Events.BatchDeadline)
	mux.HandleFunc("POST /events/batch/reminders", h.Events.BatchReminders)

	mux.HandleFunc("GET /events/{id}/session", h.Session.ResolveMine)
	mux.HandleFunc("POST /events/{id}/join", h.Session.Join)
	mux.HandleFunc("GET /sessions/{token}", h.Session.Resolve)
	mux.HandleFunc("PUT /sessions/{token}/recipients/{recipientID}", h.Session.Submit)
	mux.HandleFunc("GET /books/{accessToken}", h.Session.Book)

	mux.HandleFunc("GET /health", h.Health.Health)
	mux.HandleFunc("GET /health/live", h.Health.Live)
	mux.HandleFunc("GET /health/ready", h.Health.Ready)

	return mux
}
