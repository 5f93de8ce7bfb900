package search

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopassist/search-chat/internal/domain"
)

// Catalog item properties as stored in the vector index.
const (
	propID          = "product_id"
	propTitle       = "product_title"
	propBrand       = "product_brand"
	propColor       = "product_color"
	propDescription = "product_description"
	propBullets     = "product_bullet_point"
)

// PropertyFilter is an exact-match equality restriction on one property.
type PropertyFilter struct {
	Property string
	Value    string
}

// Conn is the connection to the vector search service. Implementations are
// expected to run their own liveness probe before serving a call and to
// reconnect when unhealthy; ForceRecheck drops the probe cooldown so the next
// call re-verifies the connection.
type Conn interface {
	NearText(ctx context.Context, query string, limit int, filters []PropertyFilter) ([]map[string]any, error)
	FetchSample(ctx context.Context, limit int, properties []string) ([]map[string]any, error)
	ForceRecheck()
}

// Config tunes gateway retry and sampling behavior.
type Config struct {
	MaxRetries int
	Backoff    time.Duration
	SampleSize int
}

// Gateway translates (query, filters) pairs into vector-store calls and
// normalizes results into the Product shape.
type Gateway struct {
	conn       Conn
	maxRetries int
	backoff    time.Duration
	sampleSize int
}

// NewGateway creates a search gateway over the given connection
func NewGateway(conn Conn, cfg Config) *Gateway {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = time.Second
	}
	if cfg.SampleSize <= 0 {
		cfg.SampleSize = 2000
	}
	return &Gateway{
		conn:       conn,
		maxRetries: cfg.MaxRetries,
		backoff:    cfg.Backoff,
		sampleSize: cfg.SampleSize,
	}
}

// Search runs a similarity query restricted to the given equality filters and
// returns up to limit normalized products. Zero matches is a valid successful
// outcome; only exhausted retries surface an error.
func (g *Gateway) Search(ctx context.Context, query string, limit int, filters domain.SearchFilters) ([]domain.Product, error) {
	propFilters := buildFilters(filters)

	var lastErr error
	for attempt := 0; attempt < g.maxRetries; attempt++ {
		if attempt > 0 {
			// Force a liveness recheck before the retry goes out.
			g.conn.ForceRecheck()
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(g.backoff << (attempt - 1)):
			}
		}

		items, err := g.conn.NearText(ctx, query, limit, propFilters)
		if err != nil {
			lastErr = err
			log.Warn().Err(err).
				Str("query", query).
				Int("attempt", attempt+1).
				Msg("semantic search attempt failed")
			continue
		}

		products := normalizeItems(items)
		log.Info().
			Str("query", query).
			Int("found", len(products)).
			Str("brand_filter", filters.Brand).
			Str("color_filter", filters.Color).
			Msg("semantic search completed")
		return products, nil
	}

	return nil, fmt.Errorf("semantic search failed after %d attempts: %w", g.maxRetries, lastErr)
}

// AvailableBrands returns the most frequent brand values in a bounded catalog
// sample, most frequent first. Failures degrade to a fixed reference list.
func (g *Gateway) AvailableBrands(ctx context.Context, limit int) []string {
	return g.topValues(ctx, propBrand, limit, fallbackBrands)
}

// AvailableColors returns the most frequent color values in a bounded catalog
// sample, most frequent first. Failures degrade to a fixed reference list.
func (g *Gateway) AvailableColors(ctx context.Context, limit int) []string {
	return g.topValues(ctx, propColor, limit, fallbackColors)
}

func buildFilters(filters domain.SearchFilters) []PropertyFilter {
	var propFilters []PropertyFilter
	if filters.Brand != "" {
		propFilters = append(propFilters, PropertyFilter{Property: propBrand, Value: filters.Brand})
	}
	// A blank-after-trim color is treated as no color filter.
	if strings.TrimSpace(filters.Color) != "" {
		propFilters = append(propFilters, PropertyFilter{Property: propColor, Value: filters.Color})
	}
	return propFilters
}

func normalizeItems(items []map[string]any) []domain.Product {
	products := make([]domain.Product, 0, len(items))
	for _, item := range items {
		products = append(products, domain.Product{
			ID:           stringProp(item, propID),
			Title:        stringProp(item, propTitle),
			Brand:        stringProp(item, propBrand),
			Color:        stringProp(item, propColor),
			Description:  stringProp(item, propDescription),
			BulletPoints: stringProp(item, propBullets),
			// Not present in the catalog schema; defaulted, never errored.
			Price:    domain.PriceUnavailable,
			ImageURL: "",
			Rating:   0,
			Reviews:  0,
		})
	}
	return products
}

func stringProp(item map[string]any, key string) string {
	if v, ok := item[key].(string); ok {
		return v
	}
	return ""
}

func (g *Gateway) topValues(ctx context.Context, property string, limit int, fallback []string) []string {
	if limit <= 0 {
		limit = 50
	}

	items, err := g.conn.FetchSample(ctx, g.sampleSize, []string{property})
	if err != nil {
		log.Error().Err(err).Str("property", property).Msg("catalog sample failed, using fallback list")
		if limit < len(fallback) {
			return fallback[:limit]
		}
		return fallback
	}

	counts := make(map[string]int)
	for _, item := range items {
		value := strings.TrimSpace(stringProp(item, property))
		if value != "" {
			counts[value]++
		}
	}

	values := make([]string, 0, len(counts))
	for value := range counts {
		values = append(values, value)
	}
	sort.Slice(values, func(i, j int) bool {
		if counts[values[i]] != counts[values[j]] {
			return counts[values[i]] > counts[values[j]]
		}
		return values[i] < values[j]
	})

	if len(values) > limit {
		values = values[:limit]
	}
	return values
}

// Reference lists used when the catalog sample is unavailable; a degraded
// filter picker beats a broken page.
var fallbackBrands = []string{
	"Apple", "Dell", "HP", "Lenovo", "ASUS", "Acer", "Samsung", "Microsoft", "Sony", "LG",
	"Canon", "Nikon", "Nike", "Adidas", "Amazon", "Google", "Intel", "AMD", "NVIDIA", "Tesla",
}

var fallbackColors = []string{
	"Black", "White", "Gray", "Silver", "Blue", "Red", "Green", "Gold", "Pink", "Purple",
	"Yellow", "Orange", "Brown", "Navy", "Beige", "Tan", "Maroon", "Teal", "Olive", "Coral",
}
