package calculator

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts all circuit endpoints onto the given router
// under the /circuit prefix.
func RegisterRoutes(r chi.Router) {
	r.Route("/circuit", func(r chi.Router) {
		r.Post("/solve", Solve)
		r.Post("/report/{view}", Report)
		r.Post("/chart", Chart)
		r.Post("/batch", Batch)
	})
}
