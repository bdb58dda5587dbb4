package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/raminkz/gotodo/internal/api/handlers"
	"github.com/raminkz/gotodo/internal/api/middleware"
	"github.com/raminkz/gotodo/internal/auth"
	"github.com/raminkz/gotodo/internal/todo"
	"github.com/raminkz/gotodo/pkg/config"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Router struct {
	chi.Router
}

type RouterConfig struct {
	DB             *gorm.DB
	Redis          *redis.Client
	Logger         *slog.Logger
	JWTService     *auth.JWTService
	AuthService    *auth.Service
	Sessions       *auth.SessionTokens
	TaskStore      *todo.Store
	Weather        config.WeatherConfig
	AllowedOrigins []string
	RateLimitReqs  int
	RateLimitSecs  int
}

func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	if cfg.RateLimitReqs > 0 {
		r.Use(middleware.RateLimit(cfg.Redis, cfg.RateLimitReqs, cfg.RateLimitSecs))
	}

	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Authentication is resolved once for every request; routes then
	// declare whether they need a principal, forbid one, or take either.
	r.Use(middleware.Authenticate(cfg.JWTService, cfg.Sessions))

	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Redis)
	authHandler := handlers.NewAuthHandler(cfg.AuthService, cfg.JWTService)
	taskHandler := handlers.NewTaskHandler(cfg.TaskStore, cfg.AuthService)
	weatherHandler := handlers.NewWeatherHandler(cfg.Weather, cfg.Redis)

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	r.Route("/api/v1", func(r chi.Router) {
		// Public auth endpoints
		r.Post("/registration", authHandler.Register)
		r.Post("/token/login", authHandler.SessionLogin)
		r.Post("/jwt/create", authHandler.JWTCreate)
		r.Post("/jwt/refresh", authHandler.JWTRefresh)
		r.Post("/jwt/verify", authHandler.JWTVerify)
		r.Get("/activation/confirm/{token}", authHandler.ActivationConfirm)
		r.Post("/activation/resend", authHandler.ActivationResend)

		// Anonymous-only: logged-in users must use change-password
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAnonymous)
			r.Post("/reset-password", authHandler.ResetPassword)
			r.Put("/reset-password/{token}", authHandler.ResetPasswordConfirm)
		})

		// Authenticated endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Post("/token/logout", authHandler.SessionLogout)
			r.Put("/change-password", authHandler.ChangePassword)
			r.Get("/profile", authHandler.GetProfile)
			r.Put("/profile", authHandler.UpdateProfile)
		})

		// Tasks: anonymous read, owner-only write
		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", taskHandler.List)
			r.Get("/{id}", taskHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Post("/", taskHandler.Create)
				r.Put("/{id}", taskHandler.Update)
				r.Patch("/{id}", taskHandler.Update)
				r.Delete("/{id}", taskHandler.Delete)
			})
		})

		r.Get("/weather", weatherHandler.Get)
	})

	return &Router{r}
}
