// internal/app/features/changes/routes.go
package changes

import "github.com/go-chi/chi/v5"

// Routes returns the subrouter mounted under /changes. The per-person
// listings (/persons/{id}/changes, /persons/{id}/history) are mounted
// by bootstrap alongside the persons feature.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Propose)
	r.Post("/{changeID}/approve", h.Approve)
	r.Post("/{changeID}/reject", h.Reject)
	return r
}
