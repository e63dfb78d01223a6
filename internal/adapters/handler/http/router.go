package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/askaway/backend/internal/monitoring"
)

func NewHandler(voteHandler *VoteHandler, votableHandler *VotableHandler, auth *AuthMiddleware) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(monitoring.Middleware)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/posts/{postId}/voters", voteHandler.ListVoters)
		r.Get("/votables/{id}/score", votableHandler.Score)

		r.Group(func(r chi.Router) {
			r.Use(auth.Handler)
			r.Post("/votables/{id}/vote", voteHandler.Vote)
			r.Post("/posts", votableHandler.CreatePost)
			r.Post("/posts/{id}/comments", votableHandler.CreateComment)
		})
	})

	return r
}
