package agent

import (
	"context"
	"errors"
	"fmt"
	"math"

	openaiapi "github.com/sashabaranov/go-openai"

	"github.com/FeelPulse/flightpulse/internal/logger"
	"github.com/FeelPulse/flightpulse/pkg/types"
)

const defaultOpenAIModel = "gpt-3.5-turbo"

var log = logger.Component("agent")

// OpenAIClient implements Completer for OpenAI and compatible endpoints
type OpenAIClient struct {
	api   *openaiapi.Client
	model string
}

// NewOpenAIClient creates a new OpenAI client. baseURL overrides the API
// root (for example "http://localhost:8080/v1") when non-empty.
func NewOpenAIClient(apiKey, model, baseURL string) *OpenAIClient {
	if model == "" {
		model = defaultOpenAIModel
	}

	cfg := openaiapi.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &OpenAIClient{
		api:   openaiapi.NewClientWithConfig(cfg),
		model: model,
	}
}

// Name returns the provider name
func (c *OpenAIClient) Name() string {
	return "openai"
}

// Complete sends a system + user message pair and returns the first choice
func (c *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (*types.AgentResponse, error) {
	messages := make([]openaiapi.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openaiapi.ChatCompletionMessage{
			Role:    openaiapi.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openaiapi.ChatCompletionMessage{
		Role:    openaiapi.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	// a zero temperature is dropped by omitempty and the API then defaults to 1
	temperature := req.Temperature
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}

	resp, err := c.api.CreateChatCompletion(ctx, openaiapi.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("openai API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, errors.New("openai returned empty response")
	}

	return &types.AgentResponse{
		Text:     resp.Choices[0].Message.Content,
		Model:    resp.Model,
		Provider: c.Name(),
		Usage: types.Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}
