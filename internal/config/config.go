package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Weaviate  WeaviateConfig  `mapstructure:"weaviate"`
	Search    SearchConfig    `mapstructure:"search"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

type OpenAIConfig struct {
	APIKey          string        `mapstructure:"api_key"`
	Model           string        `mapstructure:"model"`
	MaxOutputTokens int           `mapstructure:"max_output_tokens"`
	Temperature     float64       `mapstructure:"temperature"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

type WeaviateConfig struct {
	URL                 string        `mapstructure:"url"`
	APIKey              string        `mapstructure:"api_key"`
	Class               string        `mapstructure:"class"`
	QueryTimeout        time.Duration `mapstructure:"query_timeout"`
	HealthCheckInterval time.Duration `mapstructure:"health_check_interval"`
	MaxRetries          int           `mapstructure:"max_retries"`
}

type SearchConfig struct {
	DefaultLimit    int `mapstructure:"default_limit"`
	SampleSize      int `mapstructure:"sample_size"`
	ContextProducts int `mapstructure:"context_products"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Enabled reports whether redis-backed rate limiting should be wired at all.
func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
	Burst             int `mapstructure:"burst"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/config.yaml"
	}

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(configPath); statErr == nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	v.AutomaticEnv()
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate checks that required external capabilities can be constructed.
// Missing credentials are fatal at startup, never deferred to first use.
func (c *Config) Validate() error {
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("OpenAI API key not configured (OPENAI_API_KEY)")
	}
	if c.Weaviate.URL == "" {
		return fmt.Errorf("Weaviate URL not configured (WEAVIATE_URL)")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.request_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "15s")
	v.SetDefault("server.cors_origins", []string{
		"http://localhost:8501",
		"http://localhost:3000",
		"http://127.0.0.1:8501",
	})

	// OpenAI
	v.SetDefault("openai.model", "gpt-4o")
	v.SetDefault("openai.max_output_tokens", 800)
	v.SetDefault("openai.temperature", 0.7)
	v.SetDefault("openai.timeout", "120s")

	// Weaviate
	v.SetDefault("weaviate.class", "EcommerceProducts")
	v.SetDefault("weaviate.query_timeout", "60s")
	v.SetDefault("weaviate.health_check_interval", "300s")
	v.SetDefault("weaviate.max_retries", 3)

	// Search
	v.SetDefault("search.default_limit", 10)
	v.SetDefault("search.sample_size", 2000)
	v.SetDefault("search.context_products", 5)

	// Redis (optional, rate limiting only)
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("rate_limit.requests_per_minute", 60)
	v.SetDefault("rate_limit.burst", 10)

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

func bindEnvVars(v *viper.Viper) {
	v.BindEnv("server.host", "API_HOST")
	v.BindEnv("server.port", "API_PORT")

	v.BindEnv("openai.api_key", "OPENAI_API_KEY")
	v.BindEnv("openai.model", "OPENAI_MODEL")

	v.BindEnv("weaviate.url", "WEAVIATE_URL")
	v.BindEnv("weaviate.api_key", "WEAVIATE_API_KEY")

	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	v.BindEnv("logging.level", "LOG_LEVEL")
}
