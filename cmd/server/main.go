package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopassist/search-chat/internal/api"
	"github.com/shopassist/search-chat/internal/config"
	"github.com/shopassist/search-chat/internal/llm/openai"
	"github.com/shopassist/search-chat/internal/repository/memory"
	"github.com/shopassist/search-chat/internal/repository/redis"
	"github.com/shopassist/search-chat/internal/search"
	searchWeaviate "github.com/shopassist/search-chat/internal/search/weaviate"
	"github.com/shopassist/search-chat/internal/service"
)

func main() {
	// Load .env file - try multiple locations
	envPaths := []string{".env", "../.env", "../../.env"}
	for _, p := range envPaths {
		if err := godotenv.Load(p); err == nil {
			fmt.Printf("Loaded .env from: %s\n", p)
			break
		}
	}

	// Setup logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if level, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	// Missing credentials are fatal here, not at first request.
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Msg("Starting search chat API server")

	// Initialize OpenAI client
	llmClient, err := openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.Timeout)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create OpenAI client")
	}

	// Initialize Weaviate connection
	conn, err := searchWeaviate.Connect(searchWeaviate.Config{
		URL:                 cfg.Weaviate.URL,
		APIKey:              cfg.Weaviate.APIKey,
		OpenAIAPIKey:        cfg.OpenAI.APIKey,
		Class:               cfg.Weaviate.Class,
		QueryTimeout:        cfg.Weaviate.QueryTimeout,
		HealthCheckInterval: cfg.Weaviate.HealthCheckInterval,
		MaxRetries:          cfg.Weaviate.MaxRetries,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Weaviate")
	}

	gateway := search.NewGateway(conn, search.Config{
		MaxRetries: cfg.Weaviate.MaxRetries,
		SampleSize: cfg.Search.SampleSize,
	})

	sessionStore := memory.NewSessionStore()

	chatService := service.NewChatService(sessionStore, gateway, llmClient, service.Options{
		SearchLimit:     cfg.Search.DefaultLimit,
		ContextProducts: cfg.Search.ContextProducts,
		MaxOutputTokens: cfg.OpenAI.MaxOutputTokens,
		Temperature:     cfg.OpenAI.Temperature,
	})

	// Redis is optional: without it the API simply runs unthrottled.
	var rateLimiter *redis.RateLimiter
	if cfg.Redis.Enabled() {
		redisClient, err := redis.NewClient(cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisClient.Close()
		rateLimiter = redis.NewRateLimiter(redisClient, cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
	}

	router := api.NewRouter(cfg, api.Deps{
		ChatService:   chatService,
		SearchService: gateway,
		Backend:       conn,
		RateLimiter:   rateLimiter,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Int("active_sessions", sessionStore.Count()).Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
