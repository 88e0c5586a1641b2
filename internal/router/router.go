// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// Inkwell API. Routes are grouped into public reads and authenticated
// writes with the appropriate middleware stacks.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"

	"inkwell/internal/handlers"
	"inkwell/internal/middleware"
	"inkwell/internal/session"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(
	sessionStore *session.Store,
	corsOrigins []string,
	auth *handlers.Auth,
	categories *handlers.Categories,
	posts *handlers.Posts,
	uploads *handlers.Uploads,
) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}).Handler)
	r.Use(middleware.LoadSession(sessionStore))

	// Auth endpoints get a tighter rate limit than the rest of the API.
	authLimiter := middleware.NewRateLimiter(20, time.Minute)
	apiLimiter := middleware.NewRateLimiter(300, time.Minute)

	// Health check.
	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware)

			r.Post("/register", auth.Register)
			r.Post("/login", auth.Login)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Post("/logout", auth.Logout)
				r.Get("/me", auth.Me)
				r.Put("/updatedetails", auth.UpdateDetails)
				r.Put("/updatepassword", auth.UpdatePassword)
				r.Post("/2fa/setup", auth.TwoFASetup)
				r.Post("/2fa/enable", auth.TwoFAEnable)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(apiLimiter.Middleware)

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", categories.List)
				r.Get("/{key}", categories.Get)

				// Category writes are admin-only.
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAuth)
					r.Use(middleware.RequireAdmin)
					r.Post("/", categories.Create)
					r.Put("/{id}", categories.Update)
					r.Delete("/{id}", categories.Delete)
				})
			})

			r.Route("/posts", func(r chi.Router) {
				r.Get("/", posts.List)
				r.Get("/search", posts.Search)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAuth)
					r.Get("/my/posts", posts.MyPosts)
					r.Post("/", posts.Create)
					r.Put("/{id}", posts.Update)
					r.Delete("/{id}", posts.Delete)
					r.Post("/{id}/comments", posts.AddComment)
				})

				// Registered last so fixed segments above win.
				r.Get("/{key}", posts.Get)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Post("/uploads", uploads.Upload)
			})
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
