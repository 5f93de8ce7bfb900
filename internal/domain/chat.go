package domain

// StartChatRequest opens a new session with an initial search query.
type StartChatRequest struct {
	Query       string `json:"query" validate:"required"`
	UserID      string `json:"user_id,omitempty"`
	BrandFilter string `json:"brand_filter,omitempty"`
	ColorFilter string `json:"color_filter,omitempty"`
}

type StartChatResponse struct {
	SessionID      string      `json:"session_id"`
	InitialMessage ChatMessage `json:"initial_message"`
	ResponseID     string      `json:"response_id"`
	Status         string      `json:"status"`
}

// SendMessageRequest continues an existing session.
type SendMessageRequest struct {
	SessionID   string `json:"session_id" validate:"required"`
	Message     string `json:"message" validate:"required"`
	UserID      string `json:"user_id,omitempty"`
	BrandFilter string `json:"brand_filter,omitempty"`
	ColorFilter string `json:"color_filter,omitempty"`
}

type SendMessageResponse struct {
	SessionID         string      `json:"session_id"`
	UserMessage       ChatMessage `json:"user_message"`
	AssistantResponse ChatMessage `json:"assistant_response"`
	SearchQueryUsed   string      `json:"search_query_used"`
	ProductsFound     int         `json:"products_found"`
	Status            string      `json:"status"`
}

// SearchRequest is a direct product search without a chat session.
type SearchRequest struct {
	Query       string `json:"query" validate:"required"`
	Limit       int    `json:"limit,omitempty" validate:"omitempty,min=1,max=100"`
	BrandFilter string `json:"brand_filter,omitempty"`
	ColorFilter string `json:"color_filter,omitempty"`
}

type SearchResponse struct {
	Products     []Product `json:"products"`
	TotalResults int       `json:"total_results"`
	Status       string    `json:"status"`
}
