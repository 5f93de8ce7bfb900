package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopassist/search-chat/internal/domain"
	"github.com/shopassist/search-chat/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func reformulatorService(client *MockLLMClient) *ChatService {
	return NewChatService(nil, nil, client, Options{})
}

func TestReformulateQuery_UsesGeneratedQuery(t *testing.T) {
	client := new(MockLLMClient)
	client.On("Complete", mock.Anything, mock.MatchedBy(func(req llm.CompletionRequest) bool {
		return req.MaxTokens == 20 && req.Temperature == 0.3
	})).Return(&llm.Result{Text: "\"blue wireless headphones\"\n"}, nil)

	query, fellBack := reformulatorService(client).reformulateQuery(context.Background(), nil, "show me blue ones")
	assert.Equal(t, "blue wireless headphones", query)
	assert.False(t, fellBack)
}

func TestReformulateQuery_FallsBackOnError(t *testing.T) {
	client := new(MockLLMClient)
	client.On("Complete", mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))

	query, fellBack := reformulatorService(client).reformulateQuery(context.Background(), nil, "show me blue ones (with filters: Color: Blue)")
	assert.Equal(t, "show me blue ones", query)
	assert.True(t, fellBack)
}

func TestReformulateQuery_FallsBackOnEmptyGeneration(t *testing.T) {
	client := new(MockLLMClient)
	client.On("Complete", mock.Anything, mock.Anything).Return(&llm.Result{Text: "  \"\"  "}, nil)

	query, fellBack := reformulatorService(client).reformulateQuery(context.Background(), nil, "red sneakers")
	assert.Equal(t, "red sneakers", query)
	assert.True(t, fellBack)
}

func TestReformulationPrompt_StripsFilterAnnotation(t *testing.T) {
	history := []domain.ChatMessage{
		{Role: domain.RoleUser, Content: "wireless headphones (with filters: Brand: Sony)"},
		{Role: domain.RoleAssistant, Content: "Found some Sony headphones."},
	}

	prompt := reformulationPrompt(history, "cheaper ones")
	assert.NotContains(t, prompt, filterMarker)
	assert.Contains(t, prompt, "User: wireless headphones")
	assert.Contains(t, prompt, "Assistant: Found some Sony headphones.")
	assert.Contains(t, prompt, "New User Message: cheaper ones")
}

func TestReformulationPrompt_RecencyWindow(t *testing.T) {
	var history []domain.ChatMessage
	for i := 0; i < 10; i++ {
		role := domain.RoleUser
		if i%2 == 1 {
			role = domain.RoleAssistant
		}
		history = append(history, domain.ChatMessage{Role: role, Content: strings.Repeat("m", 1) + string(rune('0'+i))})
	}

	prompt := reformulationPrompt(history, "next")
	// Only the last six messages appear; older context is dropped.
	assert.NotContains(t, prompt, "m3")
	assert.Contains(t, prompt, "m4")
	assert.Contains(t, prompt, "m9")
}

func TestStripFilterAnnotation(t *testing.T) {
	assert.Equal(t, "blue shoes", stripFilterAnnotation("blue shoes (with filters: Color: Blue)"))
	assert.Equal(t, "blue shoes", stripFilterAnnotation("blue shoes"))
	assert.Equal(t, "", stripFilterAnnotation("(with filters: Brand: Nike)"))
}
