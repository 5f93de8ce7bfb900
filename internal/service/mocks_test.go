package service

import (
	"context"

	"github.com/shopassist/search-chat/internal/domain"
	"github.com/shopassist/search-chat/internal/llm"
	"github.com/stretchr/testify/mock"
)

// MockSearcher mocks the ProductSearcher interface
type MockSearcher struct {
	mock.Mock
}

func (m *MockSearcher) Search(ctx context.Context, query string, limit int, filters domain.SearchFilters) ([]domain.Product, error) {
	args := m.Called(ctx, query, limit, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

// MockLLMClient mocks llm.Client
type MockLLMClient struct {
	mock.Mock
}

func (m *MockLLMClient) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.Result, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llm.Result), args.Error(1)
}

func (m *MockLLMClient) Respond(ctx context.Context, req llm.ResponseRequest) (*llm.Result, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llm.Result), args.Error(1)
}
