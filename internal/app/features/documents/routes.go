// internal/app/features/documents/routes.go
package documents

import "github.com/go-chi/chi/v5"

// Routes returns the subrouter mounted under /documents. The per-person
// listing is mounted by bootstrap alongside the persons feature.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Upload)
	r.Get("/{documentID}", h.Get)
	r.Delete("/{documentID}", h.Delete)
	return r
}
