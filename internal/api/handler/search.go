package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shopassist/search-chat/internal/api/response"
	"github.com/shopassist/search-chat/internal/domain"
)

// SearchService is the direct-search capability the HTTP layer depends on.
type SearchService interface {
	Search(ctx context.Context, query string, limit int, filters domain.SearchFilters) ([]domain.Product, error)
	AvailableBrands(ctx context.Context, limit int) []string
	AvailableColors(ctx context.Context, limit int) []string
}

// filterOptionCount bounds the brand and color filter option lists.
const filterOptionCount = 20

type SearchHandler struct {
	searchService SearchService
	defaultLimit  int
}

func NewSearchHandler(searchService SearchService, defaultLimit int) *SearchHandler {
	if defaultLimit <= 0 {
		defaultLimit = 10
	}
	return &SearchHandler{searchService: searchService, defaultLimit: defaultLimit}
}

// Search runs a product search without a chat session
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req domain.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	limit := req.Limit
	if limit <= 0 {
		limit = h.defaultLimit
	}

	products, err := h.searchService.Search(r.Context(), req.Query, limit, domain.SearchFilters{
		Brand: req.BrandFilter,
		Color: req.ColorFilter,
	})
	if err != nil {
		response.InternalError(w, "search failed: "+err.Error())
		return
	}

	response.OK(w, domain.SearchResponse{
		Products:     products,
		TotalResults: len(products),
		Status:       "success",
	})
}

// Brands returns the brands available for filtering
func (h *SearchHandler) Brands(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]any{
		"brands": h.searchService.AvailableBrands(r.Context(), filterOptionCount),
	})
}

// Colors returns the colors available for filtering
func (h *SearchHandler) Colors(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]any{
		"colors": h.searchService.AvailableColors(r.Context(), filterOptionCount),
	})
}
