package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopassist/search-chat/internal/domain"
	"github.com/shopassist/search-chat/internal/llm"
)

// responseHistory is the recency window of prior messages rebuilt into each
// turn's model context.
const responseHistory = 8

// ProductSearcher is the search gateway capability the orchestrator needs.
type ProductSearcher interface {
	Search(ctx context.Context, query string, limit int, filters domain.SearchFilters) ([]domain.Product, error)
}

// Options tunes per-turn behavior.
type Options struct {
	SearchLimit     int
	ContextProducts int
	MaxOutputTokens int
	Temperature     float64
}

// ChatService owns the per-turn conversation protocol:
// reformulate -> search -> grounding context -> model call -> persist turn.
type ChatService struct {
	sessions        domain.SessionRepository
	searcher        ProductSearcher
	llm             llm.Client
	searchLimit     int
	contextProducts int
	maxOutputTokens int
	temperature     float64
}

// NewChatService creates a new chat service
func NewChatService(sessions domain.SessionRepository, searcher ProductSearcher, client llm.Client, opts Options) *ChatService {
	if opts.SearchLimit <= 0 {
		opts.SearchLimit = 10
	}
	if opts.ContextProducts <= 0 {
		opts.ContextProducts = 5
	}
	if opts.MaxOutputTokens <= 0 {
		opts.MaxOutputTokens = 800
	}
	if opts.Temperature <= 0 {
		opts.Temperature = 0.7
	}
	return &ChatService{
		sessions:        sessions,
		searcher:        searcher,
		llm:             client,
		searchLimit:     opts.SearchLimit,
		contextProducts: opts.ContextProducts,
		maxOutputTokens: opts.MaxOutputTokens,
		temperature:     opts.Temperature,
	}
}

// StartChat opens a new session: search with the raw query, ground the model
// on the results, and persist a session holding exactly the first user and
// assistant messages. The session is only constructed once every step has
// succeeded, so a mid-sequence failure leaves no trace.
func (s *ChatService) StartChat(ctx context.Context, req domain.StartChatRequest) (*domain.StartChatResponse, error) {
	filters := domain.SearchFilters{Brand: req.BrandFilter, Color: req.ColorFilter}

	log.Info().
		Str("query", req.Query).
		Str("brand_filter", req.BrandFilter).
		Str("color_filter", req.ColorFilter).
		Msg("starting new chat session")

	products, err := s.searcher.Search(ctx, req.Query, s.searchLimit, filters)
	if err != nil {
		return nil, fmt.Errorf("product search failed: %w", err)
	}

	instructions := systemPrompt(buildProductsContext(req.Query, products, filters, s.contextProducts))

	result, err := s.llm.Respond(ctx, llm.ResponseRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: instructions},
			{Role: llm.RoleUser, Content: "I want to search for: " + req.Query},
		},
		MaxOutputTokens: s.maxOutputTokens,
		Temperature:     s.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("model response failed: %w", err)
	}

	now := time.Now()
	userMessage := domain.ChatMessage{
		Role:      domain.RoleUser,
		Content:   req.Query,
		Timestamp: now,
	}
	assistantMessage := domain.ChatMessage{
		Role:       domain.RoleAssistant,
		Content:    result.Text,
		Timestamp:  now,
		ResponseID: result.ResponseID,
	}

	session := &domain.ChatSession{
		SessionID:   uuid.New().String(),
		UserID:      req.UserID,
		Messages:    []domain.ChatMessage{userMessage, assistantMessage},
		CreatedAt:   now,
		LastUpdated: now,
		SearchQuery: req.Query,
		Products:    products,
	}
	if err := s.sessions.Create(session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	log.Info().
		Str("session_id", session.SessionID).
		Int("products_found", len(products)).
		Msg("chat session created")

	return &domain.StartChatResponse{
		SessionID:      session.SessionID,
		InitialMessage: assistantMessage,
		ResponseID:     result.ResponseID,
		Status:         "success",
	}, nil
}

// SendMessage continues a session: reformulate the query from history, run a
// fresh search so the grounding always matches the current filter state,
// chain the model call on the last assistant continuation token, then append
// the message pair and replace the product list wholesale. The session is
// mutated only after every external call has succeeded.
func (s *ChatService) SendMessage(ctx context.Context, req domain.SendMessageRequest) (*domain.SendMessageResponse, error) {
	session, err := s.sessions.Get(req.SessionID)
	if err != nil {
		return nil, err
	}

	filters := domain.SearchFilters{Brand: req.BrandFilter, Color: req.ColorFilter}

	searchQuery, fellBack := s.reformulateQuery(ctx, session.Messages, req.Message)

	products, err := s.searcher.Search(ctx, searchQuery, s.searchLimit, filters)
	if err != nil {
		return nil, fmt.Errorf("product search failed: %w", err)
	}

	instructions := systemPrompt(buildProductsContext(searchQuery, products, filters, s.contextProducts))

	messages := make([]llm.Message, 0, responseHistory+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: instructions})
	recent := session.Messages
	if len(recent) > responseHistory {
		recent = recent[len(recent)-responseHistory:]
	}
	for _, msg := range recent {
		messages = append(messages, llm.Message{Role: string(msg.Role), Content: msg.Content})
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: req.Message})

	previousResponseID := lastAssistantResponseID(session.Messages)

	result, err := s.llm.Respond(ctx, llm.ResponseRequest{
		Messages:           messages,
		PreviousResponseID: previousResponseID,
		MaxOutputTokens:    s.maxOutputTokens,
		Temperature:        s.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("model response failed: %w", err)
	}

	now := time.Now()
	userMessage := domain.ChatMessage{
		Role:      domain.RoleUser,
		Content:   req.Message,
		Timestamp: now,
	}
	assistantMessage := domain.ChatMessage{
		Role:               domain.RoleAssistant,
		Content:            result.Text,
		Timestamp:          now,
		ResponseID:         result.ResponseID,
		PreviousResponseID: previousResponseID,
	}

	session.Messages = append(session.Messages, userMessage, assistantMessage)
	session.Products = products
	session.SearchQuery = searchQuery
	session.LastUpdated = now

	log.Info().
		Str("session_id", session.SessionID).
		Str("search_query", searchQuery).
		Bool("reformulation_fallback", fellBack).
		Int("products_found", len(products)).
		Msg("message processed")

	return &domain.SendMessageResponse{
		SessionID:         session.SessionID,
		UserMessage:       userMessage,
		AssistantResponse: assistantMessage,
		SearchQueryUsed:   searchQuery,
		ProductsFound:     len(products),
		Status:            "success",
	}, nil
}

// GetSession returns the full session state.
func (s *ChatService) GetSession(sessionID string) (*domain.ChatSession, error) {
	return s.sessions.Get(sessionID)
}

// DeleteSession destroys a session.
func (s *ChatService) DeleteSession(sessionID string) error {
	return s.sessions.Delete(sessionID)
}

// ListSessions returns all sessions, optionally scoped to a user id.
func (s *ChatService) ListSessions(userID string) []*domain.ChatSession {
	return s.sessions.List(userID)
}

// SessionProducts returns the products from a session's latest search.
func (s *ChatService) SessionProducts(sessionID string) ([]domain.Product, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Products == nil {
		return []domain.Product{}, nil
	}
	return session.Products, nil
}

// lastAssistantResponseID resolves the continuation token for the next model
// call: the most recent assistant message's response id, if any.
func lastAssistantResponseID(messages []domain.ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == domain.RoleAssistant && messages[i].ResponseID != "" {
			return messages[i].ResponseID
		}
	}
	return ""
}
