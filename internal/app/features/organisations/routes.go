// internal/app/features/organisations/routes.go
package organisations

import (
	"github.com/dalemusser/orgdesk/internal/app/system/authtoken"
	"github.com/dalemusser/orgdesk/internal/app/system/ratelimit"
	"github.com/go-chi/chi/v5"
)

// Routes mounts all Organisation routes under the base path
// (typically "/organisations" from bootstrap). The token issuer's
// LoadToken middleware must run before these routes.
func Routes(h *Handler, signup *ratelimit.Limiter) chi.Router {
	r := chi.NewRouter()

	// Public routes
	r.Group(func(pr chi.Router) {
		pr.Get("/", h.ServeList)
		pr.With(ratelimit.PerIP(signup, h.Log)).Post("/", h.HandleCreate)

		pr.Post("/by-session", h.HandleBySession)
		pr.Post("/nearby", h.HandleNearby)

		pr.Get("/{id}", h.ServeGet)
		pr.Get("/{id}/requests", h.ServeRequests)
		pr.Post("/{id}/requests", h.HandleCreateRequest)
	})

	// Signed-in organisations only
	r.Group(func(pr chi.Router) {
		pr.Use(authtoken.RequireToken(h.Log))

		pr.Get("/me", h.ServeMe)

		pr.Patch("/", h.HandleUpdate)
		pr.Patch("/{id}", h.HandleUpdate)

		pr.Post("/{id}/accept", h.HandleAccept)

		pr.Delete("/{id}", h.HandleDelete)
	})

	return r
}
