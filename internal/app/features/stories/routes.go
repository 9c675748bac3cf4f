// internal/app/features/stories/routes.go
package stories

import "github.com/go-chi/chi/v5"

// Routes returns the subrouter mounted under /stories. The per-person
// listing is mounted by bootstrap alongside the persons feature.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Get("/{storyID}", h.Get)
	r.Put("/{storyID}", h.Update)
	r.Delete("/{storyID}", h.Delete)
	return r
}
