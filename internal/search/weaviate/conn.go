package weaviate

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopassist/search-chat/internal/search"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

// Config holds connection settings for the Weaviate instance
type Config struct {
	URL                 string
	APIKey              string
	OpenAIAPIKey        string
	Class               string
	QueryTimeout        time.Duration
	HealthCheckInterval time.Duration
	MaxRetries          int
}

// Conn is a shared, lazily-reconnected connection to Weaviate implementing
// search.Conn. A liveness probe runs before each batch of calls, skipped
// while inside the cooldown window; an unhealthy connection triggers a
// bounded reconnect loop. The probe-and-reconnect sequence is mutually
// exclusive with concurrent query attempts.
type Conn struct {
	cfg Config

	mu              sync.Mutex
	client          *weaviate.Client
	lastHealthCheck time.Time
}

// Connect creates the connection and verifies the instance is ready.
func Connect(cfg Config) (*Conn, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("Weaviate URL not configured")
	}
	if cfg.Class == "" {
		cfg.Class = "EcommerceProducts"
	}
	if cfg.QueryTimeout == 0 {
		cfg.QueryTimeout = 60 * time.Second
	}
	if cfg.HealthCheckInterval == 0 {
		cfg.HealthCheckInterval = 300 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}

	conn := &Conn{cfg: cfg}

	client, err := conn.dial()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	ready, err := client.Misc().ReadyChecker().Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("weaviate readiness check failed: %w", err)
	}
	if !ready {
		return nil, fmt.Errorf("weaviate instance at %s is not ready", cfg.URL)
	}

	conn.client = client
	conn.lastHealthCheck = time.Now()
	log.Info().Str("url", cfg.URL).Str("class", cfg.Class).Msg("Connected to Weaviate")
	return conn, nil
}

func (c *Conn) dial() (*weaviate.Client, error) {
	host, scheme, err := splitURL(c.cfg.URL)
	if err != nil {
		return nil, err
	}

	headers := map[string]string{}
	if c.cfg.OpenAIAPIKey != "" {
		// The nearText vectorizer on the Weaviate side needs this key.
		headers["X-OpenAI-Api-Key"] = c.cfg.OpenAIAPIKey
	}

	wcfg := weaviate.Config{
		Host:             host,
		Scheme:           scheme,
		Headers:          headers,
		ConnectionClient: &http.Client{Timeout: c.cfg.QueryTimeout},
	}
	if c.cfg.APIKey != "" {
		wcfg.AuthConfig = auth.ApiKey{Value: c.cfg.APIKey}
	}

	client, err := weaviate.NewClient(wcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %w", err)
	}
	return client, nil
}

func splitURL(raw string) (host, scheme string, err error) {
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("invalid weaviate URL: %w", err)
	}
	return u.Host, u.Scheme, nil
}

// ForceRecheck drops the health-check cooldown so the next call re-probes
// the connection before going out.
func (c *Conn) ForceRecheck() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastHealthCheck = time.Time{}
}

// Ping probes the instance regardless of the cooldown window.
func (c *Conn) Ping(ctx context.Context) error {
	c.mu.Lock()
	client := c.client
	c.mu.Unlock()

	ready, err := client.Misc().ReadyChecker().Do(ctx)
	if err != nil {
		return fmt.Errorf("weaviate readiness check failed: %w", err)
	}
	if !ready {
		return fmt.Errorf("weaviate instance is not ready")
	}
	return nil
}

// acquire returns a healthy client, probing and reconnecting as needed.
// Held under the mutex so reconnects never race concurrent queries.
func (c *Conn) acquire(ctx context.Context) (*weaviate.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if time.Since(c.lastHealthCheck) < c.cfg.HealthCheckInterval {
		return c.client, nil
	}

	ready, err := c.client.Misc().ReadyChecker().Do(ctx)
	if err == nil && ready {
		c.lastHealthCheck = time.Now()
		return c.client, nil
	}
	log.Warn().Err(err).Msg("Weaviate connection unhealthy, reconnecting")

	var lastErr error
	for attempt := 0; attempt < c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Second << (attempt - 1)):
			}
		}

		client, err := c.dial()
		if err != nil {
			lastErr = err
			continue
		}
		ready, err := client.Misc().ReadyChecker().Do(ctx)
		if err != nil || !ready {
			if err == nil {
				err = fmt.Errorf("instance not ready")
			}
			lastErr = err
			log.Error().Err(err).Int("attempt", attempt+1).Msg("Weaviate reconnection attempt failed")
			continue
		}

		c.client = client
		c.lastHealthCheck = time.Now()
		log.Info().Msg("Successfully reconnected to Weaviate")
		return c.client, nil
	}

	return nil, fmt.Errorf("failed to reconnect to Weaviate after %d attempts: %w", c.cfg.MaxRetries, lastErr)
}

func productFields() []graphql.Field {
	return []graphql.Field{
		{Name: "product_id"},
		{Name: "product_title"},
		{Name: "product_brand"},
		{Name: "product_color"},
		{Name: "product_description"},
		{Name: "product_bullet_point"},
	}
}

// NearText runs a similarity query with optional ANDed equality filters.
func (c *Conn) NearText(ctx context.Context, query string, limit int, propFilters []search.PropertyFilter) ([]map[string]any, error) {
	client, err := c.acquire(ctx)
	if err != nil {
		return nil, err
	}

	nearText := client.GraphQL().NearTextArgBuilder().WithConcepts([]string{query})
	builder := client.GraphQL().Get().
		WithClassName(c.cfg.Class).
		WithFields(productFields()...).
		WithNearText(nearText).
		WithLimit(limit)

	if len(propFilters) > 0 {
		builder = builder.WithWhere(buildWhere(propFilters))
	}

	resp, err := builder.Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("near_text query failed: %w", err)
	}
	return c.objects(resp)
}

// FetchSample reads a bounded window of the catalog projecting only the
// given properties; used for building filter pickers.
func (c *Conn) FetchSample(ctx context.Context, limit int, properties []string) ([]map[string]any, error) {
	client, err := c.acquire(ctx)
	if err != nil {
		return nil, err
	}

	fields := make([]graphql.Field, 0, len(properties))
	for _, p := range properties {
		fields = append(fields, graphql.Field{Name: p})
	}

	resp, err := client.GraphQL().Get().
		WithClassName(c.cfg.Class).
		WithFields(fields...).
		WithLimit(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch query failed: %w", err)
	}
	return c.objects(resp)
}

func buildWhere(propFilters []search.PropertyFilter) *filters.WhereBuilder {
	operands := make([]*filters.WhereBuilder, 0, len(propFilters))
	for _, f := range propFilters {
		operands = append(operands, filters.Where().
			WithPath([]string{f.Property}).
			WithOperator(filters.Equal).
			WithValueText(f.Value))
	}
	if len(operands) == 1 {
		return operands[0]
	}
	return filters.Where().WithOperator(filters.And).WithOperands(operands)
}

// objects unpacks the GraphQL Get response into raw property maps.
func (c *Conn) objects(resp *models.GraphQLResponse) ([]map[string]any, error) {
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("graphql query failed: %s", resp.Errors[0].Message)
	}

	get, ok := resp.Data["Get"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected graphql response shape: missing Get block")
	}
	raw, ok := get[c.cfg.Class]
	if !ok || raw == nil {
		return []map[string]any{}, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("unexpected graphql response shape for class %s", c.cfg.Class)
	}

	items := make([]map[string]any, 0, len(list))
	for _, entry := range list {
		if item, ok := entry.(map[string]any); ok {
			items = append(items, item)
		}
	}
	return items, nil
}
