package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/fantacard/market-api/internal/api"
	apiMiddleware "github.com/fantacard/market-api/internal/api/middleware"
)

// setupRouter configures the application router with all routes and
// middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(
		app.userService,
		app.userStore,
		app.jwtService,
		app.passwordVerifier,
	)
	marketHandler := api.NewMarketHandler(app.tradeEngine, app.cardStore)
	userHandler := api.NewUserHandler(app.userService)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Market endpoints
			r.Get("/market", marketHandler.ListMarket)
			r.Get("/market/{cardID}", marketHandler.GetCard)
			r.Post("/market", marketHandler.ListCard)
			r.Patch("/market/{cardID}", marketHandler.TradeCard)

			// User endpoints
			r.Get("/users", userHandler.ListUsers)
			r.Get("/users/{userID}", userHandler.GetUser)
			r.Patch("/users/{userID}", userHandler.UpdateUser)
			r.Delete("/users/{userID}", userHandler.DeleteUser)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
