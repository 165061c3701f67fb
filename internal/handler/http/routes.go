package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Post("/api/auth/login", h.login)
		r.Get("/api/health", h.health)
		r.Get("/api/ws", h.feed.Subscribe)
	})

	// per-table CRUD behind bearer auth
	router.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Route("/api/table/{table}", func(r chi.Router) {
			r.Get("/", h.selectRows)
			r.Post("/", h.insertRow)
			r.Put("/{id}", h.updateRow)
			r.Delete("/{id}", h.deleteRow)
		})
	})

	return router
}
