package service

import (
	"fmt"
	"strings"

	"github.com/shopassist/search-chat/internal/domain"
)

const basePrompt = `You are an intelligent search engine assistant. Your role is to:

1. Summarize search results in a concise, helpful way
2. Provide brief overviews of what was found
3. Help users understand their search results at a glance
4. Answer follow-up questions about the search results
5. Be conversational and helpful, but concise

IMPORTANT: When a user searches for something, I will provide you with the ACTUAL PRODUCTS that were found in our database. Always reference these specific products in your responses.`

// noProductsSignal marks the zero-match case explicitly in the instructions
// so the model never invents catalog items. Zero matches is a successful
// search, not an upstream failure.
const noProductsSignal = `NO PRODUCTS FOUND: the current search returned no matching products. Tell the user nothing matched and suggest different search terms or adjusted filters. Do not invent or describe any products.`

// systemPrompt composes the assistant persona with the grounding block for
// the current search results.
func systemPrompt(productsContext string) string {
	if productsContext == "" {
		return basePrompt + "\n\n" + noProductsSignal
	}

	return fmt.Sprintf(`%s

CURRENT SEARCH RESULTS:
The user can see these specific products in their search results:
%s

CRITICAL: These are REAL products that exist in our database and are currently displayed to the user. When responding:
- Always acknowledge what was actually found with a brief summary
- If filters were applied, acknowledge the filtered results (don't refer to the original unfiltered query)
- Mention the number of products found and key categories/brands represented
- Keep your response concise (2-3 sentences max for initial search)
- Don't list all product details - users can see those in the UI
- Be enthusiastic about successful searches
- If few results, suggest the user might want to try different search terms or adjust filters`, basePrompt, productsContext)
}

// buildProductsContext formats up to maxProducts results into the grounding
// block, annotated with whichever filters were applied. Returns "" when the
// search matched nothing.
func buildProductsContext(query string, products []domain.Product, filters domain.SearchFilters, maxProducts int) string {
	if len(products) == 0 {
		return ""
	}

	filterInfo := ""
	var parts []string
	if filters.Brand != "" {
		parts = append(parts, "Brand: "+filters.Brand)
	}
	if strings.TrimSpace(filters.Color) != "" {
		parts = append(parts, "Color: "+filters.Color)
	}
	if len(parts) > 0 {
		filterInfo = fmt.Sprintf(" (FILTERED BY: %s)", strings.Join(parts, ", "))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SEARCH RESULTS FOR: '%s'%s\n", query, filterInfo)

	for i, p := range products {
		if i >= maxProducts {
			break
		}
		fmt.Fprintf(&sb, "\n- %s by %s", p.Title, p.Brand)
		if p.Color != "" {
			fmt.Fprintf(&sb, " (Color: %s)", p.Color)
		}
		if p.Description != "" {
			fmt.Fprintf(&sb, "\n  Description: %s...", truncate(p.Description, 150))
		}
		if p.BulletPoints != "" {
			fmt.Fprintf(&sb, "\n  Key Features: %s...", truncate(p.BulletPoints, 100))
		}
	}
	return sb.String()
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
