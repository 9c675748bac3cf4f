// internal/app/features/gedcomio/routes.go
package gedcomio

import "github.com/go-chi/chi/v5"

// Routes returns the subrouter serving a family's GEDCOM transfer
// endpoints; bootstrap mounts it under /families/{familyID}/gedcom.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Export)
	r.Post("/", h.Import)
	return r
}
