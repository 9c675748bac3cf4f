// internal/app/features/persons/routes.go
package persons

import "github.com/go-chi/chi/v5"

// Routes returns the subrouter mounted under /persons.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Get("/{personID}", h.Get)
	r.Put("/{personID}", h.Update)
	r.Delete("/{personID}", h.Delete)
	r.Get("/{personID}/relatives", h.Relatives)
	return r
}
