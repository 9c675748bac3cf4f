// internal/app/features/relationships/routes.go
package relationships

import "github.com/go-chi/chi/v5"

// Routes returns the subrouter mounted under /relationships.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/parent-child", h.AddParentChild)
	r.Delete("/parent-child/{relID}", h.DeleteParentChild)
	r.Post("/spousal", h.AddSpousal)
	r.Put("/spousal/{relID}/status", h.UpdateMaritalStatus)
	r.Delete("/spousal/{relID}", h.DeleteSpousal)
	return r
}
