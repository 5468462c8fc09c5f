package http

import (
	"log/slog"
	"os"
	"time"

	"github.com/LoosePrince/Huisheen/internal/handler/http/middleware"
	"github.com/LoosePrince/Huisheen/internal/pkg/token"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/redis/go-redis/v9"
)

// RouterDeps collects everything the router wires together.
type RouterDeps struct {
	TokenService        token.Service
	SubscriptionHandler SubscriptionHandler
	NotificationHandler NotificationHandler
	ExternalHandler     ExternalHandler
	UserHandler         UserHandler
	AdminHandler        AdminHandler

	// RedisClient may be nil, which disables rate limiting.
	RedisClient     *redis.Client
	RateLimitMax    int
	RateLimitWindow time.Duration
	Env             string
}

func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "huisheen"),
		slog.String("version", "v1.0.0"),
		slog.String("env", deps.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowCredentials: false,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	publicLimit := middleware.RateLimit(deps.RedisClient, "public", deps.RateLimitMax, deps.RateLimitWindow)

	// Third-party surface: no session, credentials travel in the request.
	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(publicLimit)
			r.Post("/notifications/receive", deps.NotificationHandler.Receive)
			r.Post("/external/auth", deps.ExternalHandler.Auth)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.ExternalAuth(deps.TokenService))
			r.Get("/external/notifications", deps.ExternalHandler.ListNotifications)
			r.Patch("/external/notifications/{id}/read", deps.ExternalHandler.MarkRead)
			r.Patch("/external/notifications/batch/read", deps.ExternalHandler.MarkReadBatch)
			r.Delete("/external/notifications/{id}", deps.ExternalHandler.Delete)
			r.Get("/external/stats", deps.ExternalHandler.Stats)
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		// SSE stream authenticates with its own query-param token.
		r.Get("/notifications/stream", deps.NotificationHandler.Stream)

		// Third party verifying a notify code, rate limited like the other
		// public endpoints.
		r.With(publicLimit).Post("/subscriptions/active/verify", deps.SubscriptionHandler.SubscribeActive)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(deps.TokenService.JWTAuth()))
			r.Use(middleware.AuthRequired(deps.TokenService.JWTAuth()))

			r.Get("/users/me/notify-code", deps.UserHandler.NotifyCode)
			r.Post("/notifications/sse-token", deps.NotificationHandler.SSEToken)

			r.Route("/subscriptions", func(r chi.Router) {
				r.Get("/", deps.SubscriptionHandler.List)
				r.Post("/passive", deps.SubscriptionHandler.SubscribePassive)
				r.Patch("/{id}/status", deps.SubscriptionHandler.SetStatus)
				r.Delete("/{id}", deps.SubscriptionHandler.Delete)
				r.Post("/{id}/trigger-poll", deps.SubscriptionHandler.TriggerPoll)
			})

			// Admin only
			r.Group(func(r chi.Router) {
				r.Use(middleware.AdminOnly)
				r.Patch("/admin/services/{serviceHost}/status", deps.AdminHandler.SetServiceStatus)
			})
		})
	})

	return r
}
