package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopassist/search-chat/internal/domain"
	"github.com/shopassist/search-chat/internal/llm"
)

// filterMarker is the annotation the UI appends to displayed user text.
// It must never leak into model input or reformulated queries.
const filterMarker = "(with filters:"

const (
	// reformulation history window; older context is simply dropped
	reformulateHistory     = 6
	reformulateMaxTokens   = 20
	reformulateTemperature = 0.3
)

// stripFilterAnnotation removes the UI's filter annotation from message text.
func stripFilterAnnotation(content string) string {
	if idx := strings.Index(content, filterMarker); idx >= 0 {
		return strings.TrimSpace(content[:idx])
	}
	return content
}

// reformulateQuery derives a compact product-search query from conversation
// history plus the new message. Reformulation is best-effort: any model
// failure or empty generation falls back to the (annotation-stripped) raw
// message, reported through fellBack rather than an error.
func (s *ChatService) reformulateQuery(ctx context.Context, history []domain.ChatMessage, newMessage string) (query string, fellBack bool) {
	prompt := reformulationPrompt(history, newMessage)

	result, err := s.llm.Complete(ctx, llm.CompletionRequest{
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		MaxTokens:   reformulateMaxTokens,
		Temperature: reformulateTemperature,
	})
	if err != nil {
		fallback := stripFilterAnnotation(newMessage)
		log.Warn().Err(err).Str("fallback", fallback).Msg("query reformulation failed, using raw message")
		return fallback, true
	}

	generated := strings.TrimSpace(strings.Trim(strings.TrimSpace(result.Text), `"'`))
	if generated == "" {
		fallback := stripFilterAnnotation(newMessage)
		log.Warn().Str("fallback", fallback).Msg("empty reformulation result, using raw message")
		return fallback, true
	}

	log.Info().Str("query", generated).Msg("generated search query from conversation")
	return generated, false
}

func reformulationPrompt(history []domain.ChatMessage, newMessage string) string {
	recent := history
	if len(recent) > reformulateHistory {
		recent = recent[len(recent)-reformulateHistory:]
	}

	lines := make([]string, 0, len(recent))
	for _, msg := range recent {
		label := "Assistant"
		content := msg.Content
		if msg.Role == domain.RoleUser {
			label = "User"
			content = stripFilterAnnotation(content)
		}
		lines = append(lines, fmt.Sprintf("%s: %s", label, content))
	}

	return fmt.Sprintf(`Based on this conversation history and the new user message, generate a concise, effective search query for a product search engine.

Conversation History:
%s

New User Message: %s

Generate a search query that captures the user's current intent. The query should be:
- Concise (2-6 words typically)
- Focused on products the user is looking for
- Consider the context from previous messages
- Don't include filter information (brand/color) in the query itself

Return only the search query, nothing else.`, strings.Join(lines, "\n"), newMessage)
}
