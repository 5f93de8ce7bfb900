package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopassist/search-chat/internal/llm"
)

// Client implements llm.Client against the OpenAI API
type Client struct {
	apiKey  string
	model   string
	client  *http.Client
	baseURL string
}

// NewClient creates a new OpenAI client. The API key must be present; a
// missing key is a configuration error caught at startup.
func NewClient(apiKey, model string, timeout time.Duration) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key not configured")
	}
	if model == "" {
		model = "gpt-4o"
	}
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: timeout},
		baseURL: "https://api.openai.com/v1",
	}, nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []llm.Message `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// Complete calls the chat completions endpoint
func (c *Client) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.Result, error) {
	body := chatRequest{
		Model:       c.model,
		Messages:    req.Messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}

	var parsed chatResponse
	if err := c.post(ctx, "/chat/completions", body, &parsed); err != nil {
		return nil, err
	}

	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("no completion choices returned")
	}

	return &llm.Result{
		Text:  strings.TrimSpace(parsed.Choices[0].Message.Content),
		Model: parsed.Model,
		Usage: &llm.Usage{
			InputTokens:  parsed.Usage.PromptTokens,
			OutputTokens: parsed.Usage.CompletionTokens,
			TotalTokens:  parsed.Usage.TotalTokens,
		},
	}, nil
}

type responsesRequest struct {
	Model              string  `json:"model"`
	Input              string  `json:"input"`
	Instructions       string  `json:"instructions,omitempty"`
	PreviousResponseID string  `json:"previous_response_id,omitempty"`
	MaxOutputTokens    int     `json:"max_output_tokens,omitempty"`
	Temperature        float64 `json:"temperature"`
}

type responsesResponse struct {
	ID     string `json:"id"`
	Model  string `json:"model"`
	Output []struct {
		Type    string `json:"type"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

// Respond calls the responses endpoint with chained server-side context.
// The message sequence is reduced here: first system message -> instructions,
// last user message -> input.
func (c *Client) Respond(ctx context.Context, req llm.ResponseRequest) (*llm.Result, error) {
	input, instructions, err := reduceMessages(req.Messages)
	if err != nil {
		return nil, err
	}

	temperature := req.Temperature
	if temperature == 0 {
		temperature = 0.7
	}

	body := responsesRequest{
		Model:              c.model,
		Input:              input,
		Instructions:       instructions,
		PreviousResponseID: req.PreviousResponseID,
		MaxOutputTokens:    req.MaxOutputTokens,
		Temperature:        temperature,
	}

	var parsed responsesResponse
	if err := c.post(ctx, "/responses", body, &parsed); err != nil {
		return nil, err
	}

	text := extractOutputText(parsed)
	if text == "" {
		return nil, fmt.Errorf("empty output in response %s", parsed.ID)
	}

	log.Debug().
		Str("response_id", parsed.ID).
		Int("output_tokens", parsed.Usage.OutputTokens).
		Msg("OpenAI response created")

	return &llm.Result{
		Text:       text,
		ResponseID: parsed.ID,
		Model:      parsed.Model,
		Usage: &llm.Usage{
			InputTokens:  parsed.Usage.InputTokens,
			OutputTokens: parsed.Usage.OutputTokens,
			TotalTokens:  parsed.Usage.TotalTokens,
		},
	}, nil
}

func reduceMessages(messages []llm.Message) (input, instructions string, err error) {
	for _, msg := range messages {
		switch msg.Role {
		case llm.RoleSystem:
			if instructions == "" {
				instructions = msg.Content
			}
		case llm.RoleUser:
			input = msg.Content
		}
	}
	if input == "" {
		return "", "", fmt.Errorf("no user message found")
	}
	return input, instructions, nil
}

func extractOutputText(resp responsesResponse) string {
	var sb strings.Builder
	for _, out := range resp.Output {
		if out.Type != "" && out.Type != "message" {
			continue
		}
		for _, block := range out.Content {
			if block.Type == "" || block.Type == "output_text" {
				sb.WriteString(block.Text)
			}
		}
	}
	return strings.TrimSpace(sb.String())
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("openai returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
