package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopassist/search-chat/internal/api/response"
	"github.com/shopassist/search-chat/internal/domain"
)

var validate = validator.New()

// ChatService is the conversation capability the HTTP layer depends on.
type ChatService interface {
	StartChat(ctx context.Context, req domain.StartChatRequest) (*domain.StartChatResponse, error)
	SendMessage(ctx context.Context, req domain.SendMessageRequest) (*domain.SendMessageResponse, error)
	GetSession(sessionID string) (*domain.ChatSession, error)
	DeleteSession(sessionID string) error
	ListSessions(userID string) []*domain.ChatSession
	SessionProducts(sessionID string) ([]domain.Product, error)
}

type ChatHandler struct {
	chatService ChatService
}

func NewChatHandler(chatService ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Start opens a new chat session from an initial search query
func (h *ChatHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req domain.StartChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	resp, err := h.chatService.StartChat(r.Context(), req)
	if err != nil {
		response.InternalError(w, "failed to start chat: "+err.Error())
		return
	}

	response.Created(w, resp)
}

// SendMessage continues an existing chat session
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req domain.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	resp, err := h.chatService.SendMessage(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			response.NotFound(w, "session not found")
			return
		}
		response.InternalError(w, "failed to process message: "+err.Error())
		return
	}

	response.OK(w, resp)
}

// Get returns the full state of a session
func (h *ChatHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	session, err := h.chatService.GetSession(sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			response.NotFound(w, "session not found")
			return
		}
		response.InternalError(w, "failed to get session")
		return
	}

	response.OK(w, session)
}

// Delete destroys a session
func (h *ChatHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.chatService.DeleteSession(sessionID); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			response.NotFound(w, "session not found")
			return
		}
		response.InternalError(w, "failed to delete session")
		return
	}

	response.OK(w, map[string]string{
		"message": "session deleted",
		"status":  "success",
	})
}

// List returns all active sessions, optionally filtered by user id
func (h *ChatHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")

	sessions := h.chatService.ListSessions(userID)

	response.OK(w, map[string]any{
		"sessions":       sessions,
		"total_sessions": len(sessions),
	})
}

// Products returns the products from a session's latest search
func (h *ChatHandler) Products(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	products, err := h.chatService.SessionProducts(sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			response.NotFound(w, "session not found")
			return
		}
		response.InternalError(w, "failed to get session products")
		return
	}

	response.OK(w, map[string]any{
		"session_id": sessionID,
		"products":   products,
		"total":      len(products),
	})
}
