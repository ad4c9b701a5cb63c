package handlers

import (
	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
)

func (h *Handler) SetRoutes(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		// every route sees the bearer token when there is one
		r.Use(jwtauth.Verifier(h.tokenAuth))
		r.Use(h.Identify)

		// public routes here
		r.Get("/health", h.HealthHandler)
		r.Post("/users/auth/register", h.Register)
		r.Post("/users/auth/login", h.Login)
		r.Get("/users", h.ListUsers)
		r.Get("/users/{id}", h.GetUser)
		r.Get("/user/me", h.Me)
		r.Get("/user/{user_id}/game-stats", h.GameStats)

		r.Get("/games", h.ListGames)
		r.Get("/games/{id}", h.GetGame)

		// Secure routes
		r.Group(func(r chi.Router) {
			r.Use(RequireIdentity)

			r.Post("/games", h.CreateGame)
			r.Put("/games/{id}", h.UpdateGame)
			r.Patch("/games/{id}", h.PatchGame)
			r.Delete("/games/{id}", h.DeleteGame)
			r.Get("/hosted", h.ListHostedGames)

			r.Route("/join-requests", func(r chi.Router) {
				r.Get("/status/{game_id}", h.CheckJoinStatus)
				r.Post("/join/{game_id}", h.CreateJoinRequest)
				r.Get("/all/{game_id}", h.ListGameJoinRequests)
				r.Post("/update/{join_request_id}", h.UpdateJoinRequestStatus)
				r.Get("/current-user-requests", h.ListUserJoinRequests)
			})
		})
	})
}
