package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopassist/search-chat/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockConn mocks the Conn interface
type MockConn struct {
	mock.Mock
}

func (m *MockConn) NearText(ctx context.Context, query string, limit int, filters []PropertyFilter) ([]map[string]any, error) {
	args := m.Called(ctx, query, limit, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]map[string]any), args.Error(1)
}

func (m *MockConn) FetchSample(ctx context.Context, limit int, properties []string) ([]map[string]any, error) {
	args := m.Called(ctx, limit, properties)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]map[string]any), args.Error(1)
}

func (m *MockConn) ForceRecheck() {
	m.Called()
}

func fastGateway(conn Conn) *Gateway {
	return NewGateway(conn, Config{MaxRetries: 3, Backoff: time.Millisecond, SampleSize: 100})
}

func TestSearch_NormalizesItems(t *testing.T) {
	conn := new(MockConn)
	items := []map[string]any{
		{
			"product_id":           "p1",
			"product_title":        "Wireless Headphones",
			"product_brand":        "Sony",
			"product_color":        "Black",
			"product_description":  "Over-ear noise cancelling",
			"product_bullet_point": "30h battery",
		},
		{
			// Sparse item: everything missing except title.
			"product_title": "Budget Earbuds",
		},
	}
	conn.On("NearText", mock.Anything, "wireless headphones", 10, mock.Anything).Return(items, nil)

	products, err := fastGateway(conn).Search(context.Background(), "wireless headphones", 10, domain.SearchFilters{})
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "p1", products[0].ID)
	assert.Equal(t, "Sony", products[0].Brand)
	assert.Equal(t, domain.PriceUnavailable, products[0].Price)

	assert.Equal(t, "Budget Earbuds", products[1].Title)
	assert.Equal(t, "", products[1].Brand)
	assert.Equal(t, domain.PriceUnavailable, products[1].Price)
	assert.Equal(t, "", products[1].ImageURL)
	assert.Zero(t, products[1].Rating)
	assert.Zero(t, products[1].Reviews)

	conn.AssertExpectations(t)
}

func TestSearch_ZeroMatchesIsSuccess(t *testing.T) {
	conn := new(MockConn)
	conn.On("NearText", mock.Anything, "unobtainium", 10, mock.Anything).Return([]map[string]any{}, nil)

	products, err := fastGateway(conn).Search(context.Background(), "unobtainium", 10, domain.SearchFilters{})
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestSearch_FilterComposition(t *testing.T) {
	tests := []struct {
		name    string
		filters domain.SearchFilters
		want    []PropertyFilter
	}{
		{
			name:    "no filters",
			filters: domain.SearchFilters{},
			want:    nil,
		},
		{
			name:    "brand only",
			filters: domain.SearchFilters{Brand: "Sony"},
			want:    []PropertyFilter{{Property: "product_brand", Value: "Sony"}},
		},
		{
			name:    "brand and color are ANDed",
			filters: domain.SearchFilters{Brand: "Sony", Color: "Blue"},
			want: []PropertyFilter{
				{Property: "product_brand", Value: "Sony"},
				{Property: "product_color", Value: "Blue"},
			},
		},
		{
			name:    "blank-after-trim color is no color filter",
			filters: domain.SearchFilters{Color: "   "},
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildFilters(tt.filters))
		})
	}
}

func TestSearch_RetriesWithHealthRecheckThenSucceeds(t *testing.T) {
	conn := new(MockConn)
	conn.On("NearText", mock.Anything, "laptop", 10, mock.Anything).Return(nil, errors.New("connection reset")).Twice()
	conn.On("NearText", mock.Anything, "laptop", 10, mock.Anything).Return([]map[string]any{{"product_id": "p1"}}, nil).Once()
	conn.On("ForceRecheck").Return().Twice()

	products, err := fastGateway(conn).Search(context.Background(), "laptop", 10, domain.SearchFilters{})
	require.NoError(t, err)
	assert.Len(t, products, 1)
	conn.AssertExpectations(t)
}

func TestSearch_ExhaustedRetriesSurfaceError(t *testing.T) {
	conn := new(MockConn)
	upstream := errors.New("connection refused")
	conn.On("NearText", mock.Anything, "laptop", 10, mock.Anything).Return(nil, upstream).Times(3)
	conn.On("ForceRecheck").Return().Twice()

	_, err := fastGateway(conn).Search(context.Background(), "laptop", 10, domain.SearchFilters{})
	require.Error(t, err)
	assert.ErrorIs(t, err, upstream)
	conn.AssertExpectations(t)
}

func TestAvailableBrands_FrequencyOrdering(t *testing.T) {
	conn := new(MockConn)
	sample := []map[string]any{
		{"product_brand": "Sony"},
		{"product_brand": "Sony"},
		{"product_brand": "Sony"},
		{"product_brand": "Apple"},
		{"product_brand": "Apple"},
		{"product_brand": "Bose"},
		{"product_brand": "Acme"},
		{"product_brand": "  "}, // blank values are skipped
	}
	conn.On("FetchSample", mock.Anything, 100, []string{"product_brand"}).Return(sample, nil)

	brands := fastGateway(conn).AvailableBrands(context.Background(), 3)
	assert.Equal(t, []string{"Sony", "Apple", "Acme"}, brands)
}

func TestAvailableBrands_FallbackOnFailure(t *testing.T) {
	conn := new(MockConn)
	conn.On("FetchSample", mock.Anything, 100, []string{"product_brand"}).Return(nil, errors.New("unreachable"))

	brands := fastGateway(conn).AvailableBrands(context.Background(), 5)
	assert.Equal(t, []string{"Apple", "Dell", "HP", "Lenovo", "ASUS"}, brands)
	assert.NotEmpty(t, brands)
}

func TestAvailableColors_FallbackOnFailure(t *testing.T) {
	conn := new(MockConn)
	conn.On("FetchSample", mock.Anything, 100, []string{"product_color"}).Return(nil, errors.New("unreachable"))

	colors := fastGateway(conn).AvailableColors(context.Background(), 50)
	assert.Len(t, colors, 20)
	assert.Equal(t, "Black", colors[0])
}
