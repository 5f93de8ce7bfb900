package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/shopassist/search-chat/internal/api/handler"
	customMiddleware "github.com/shopassist/search-chat/internal/api/middleware"
	"github.com/shopassist/search-chat/internal/config"
	"github.com/shopassist/search-chat/internal/repository/redis"
)

// Deps are the constructed application components the router wires up.
// Everything is built once at startup; handlers never construct clients.
type Deps struct {
	ChatService   handler.ChatService
	SearchService handler.SearchService
	Backend       handler.Pinger
	RateLimiter   *redis.RateLimiter
}

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, deps Deps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	chatHandler := handler.NewChatHandler(deps.ChatService)
	searchHandler := handler.NewSearchHandler(deps.SearchService, cfg.Search.DefaultLimit)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(deps.Backend))

		r.Group(func(r chi.Router) {
			if deps.RateLimiter != nil {
				r.Use(customMiddleware.NewRateLimitMiddleware(deps.RateLimiter).Limit)
			}

			r.Route("/chat", func(r chi.Router) {
				r.Post("/start", chatHandler.Start)
				r.Post("/message", chatHandler.SendMessage)
				r.Get("/sessions/list", chatHandler.List)

				r.Route("/{sessionID}", func(r chi.Router) {
					r.Get("/", chatHandler.Get)
					r.Delete("/", chatHandler.Delete)
					r.Get("/products", chatHandler.Products)
				})
			})

			r.Route("/search", func(r chi.Router) {
				r.Post("/", searchHandler.Search)
				r.Get("/brands", searchHandler.Brands)
				r.Get("/colors", searchHandler.Colors)
			})
		})
	})

	return r
}
