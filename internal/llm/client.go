package llm

import "context"

// Message is a role/content pair sent to the model service.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// CompletionRequest is a one-shot chat-completion call, used for short
// utility generations such as query reformulation.
type CompletionRequest struct {
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// ResponseRequest is a conversational call against the responses capability.
// The adapter reduces Messages to the service's input/instructions shape:
// the first system message becomes the instructions, the last user message
// becomes the input. PreviousResponseID chains server-side context.
type ResponseRequest struct {
	Messages           []Message
	PreviousResponseID string
	MaxOutputTokens    int
	Temperature        float64
}

// Usage reports token accounting for a call.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Result is the single well-typed outcome every model call resolves to.
// Shape-probing of the provider's wire format stays inside the adapter.
type Result struct {
	Text       string
	ResponseID string
	Model      string
	Usage      *Usage
}

// Client defines the interface to the language model service
type Client interface {
	// Complete calls the chat-completions capability.
	Complete(ctx context.Context, req CompletionRequest) (*Result, error)

	// Respond calls the responses capability and returns the generated text
	// plus the continuation token for the next turn.
	Respond(ctx context.Context, req ResponseRequest) (*Result, error)
}
