package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/libratrack/backend/internal/middleware"
)

// NewRouter wires every route behind the auth gate. The gate itself decides
// which paths are public via its allow-list, so no handler is reachable
// without passing through it.
func NewRouter(handler *Handler, authMiddleware *middleware.AuthMiddleware, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(authMiddleware.Gate)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Auth routes (public: an expired access token must still be able
		// to reach refresh and logout)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", handler.Register)
			r.Post("/login", handler.Login)
			r.Post("/refresh", handler.Refresh)
			r.Post("/logout", handler.Logout)
		})

		// Public read-only catalog
		r.Route("/public", func(r chi.Router) {
			r.Get("/types", handler.ListTypes)
			r.Get("/genres", handler.ListGenres)
			r.Get("/titles", handler.BrowseTitles)
			r.Get("/titles/{id}", handler.GetTitle)
			r.Get("/titles/{id}/reviews", handler.ListTitleReviews)
		})

		// Authenticated routes
		r.Route("/users/me", func(r chi.Router) {
			r.Get("/", handler.GetCurrentUser)
			r.Put("/", handler.UpdateProfile)
			r.Put("/password", handler.ChangePassword)
			r.Delete("/sessions", handler.LogoutAll)
		})

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/", handler.ListCatalog)
			r.Post("/", handler.SaveCatalogEntry)
			r.Patch("/{titleId}", handler.UpdateCatalogEntry)
			r.Delete("/{titleId}", handler.RemoveCatalogEntry)
		})

		r.Post("/titles/{id}/reviews", handler.CreateReview)
		r.Put("/reviews/{id}", handler.UpdateReview)
		r.Delete("/reviews/{id}", handler.DeleteReview)

		r.Route("/proposals", func(r chi.Router) {
			r.Get("/", handler.ListOwnProposals)
			r.Post("/", handler.SubmitProposal)
		})

		// Moderator routes
		r.Route("/moderation", func(r chi.Router) {
			r.Use(authMiddleware.RequireModerator)
			r.Get("/proposals", handler.ModerationQueue)
			r.Post("/proposals/{id}/approve", handler.ApproveProposal)
			r.Post("/proposals/{id}/reject", handler.RejectProposal)
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Use(authMiddleware.RequireAdmin)
			r.Post("/types", handler.CreateType)
			r.Put("/types/{id}", handler.UpdateType)
			r.Delete("/types/{id}", handler.DeleteType)
			r.Post("/genres", handler.CreateGenre)
			r.Put("/genres/{id}", handler.UpdateGenre)
			r.Delete("/genres/{id}", handler.DeleteGenre)
			r.Post("/titles", handler.CreateTitle)
			r.Put("/titles/{id}", handler.UpdateTitle)
			r.Delete("/titles/{id}", handler.DeleteTitle)
		})
	})

	return r
}
