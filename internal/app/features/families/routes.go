// internal/app/features/families/routes.go
package families

import "github.com/go-chi/chi/v5"

// Routes returns the subrouter mounted under /families.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{familyID}", h.Get)
	r.Put("/{familyID}", h.Update)
	r.Delete("/{familyID}", h.Delete)
	return r
}
