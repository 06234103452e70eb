package openai

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/touchbasehq/touchbase-backend/internal/pkg/logger"
)

// Client is the narrow LLM surface the query translator needs.
type Client interface {
	// GenerateJSON asks the model for a strict-JSON reply and returns the
	// raw message content.
	GenerateJSON(ctx context.Context, system, user string) (string, error)
}

type client struct {
	log   *logger.Logger
	api   *openai.Client
	model string
}

// NewClient builds an OpenAI-backed client from the environment. When
// OPENAI_API_KEY is unset it returns (nil, nil) and callers skip AI
// features.
func NewClient(log *logger.Logger) (Client, error) {
	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		return nil, nil
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL := strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")); baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}

	timeoutSec := 60
	if v := os.Getenv("OPENAI_TIMEOUT_SECONDS"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
			timeoutSec = parsed
		}
	}
	cfg.HTTPClient = &http.Client{Timeout: time.Duration(timeoutSec) * time.Second}

	model := strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &client{
		log:   log.With("service", "OpenAIClient"),
		api:   openai.NewClientWithConfig(cfg),
		model: model,
	}, nil
}

func (c *client) GenerateJSON(ctx context.Context, system, user string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0.1,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	}
	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		c.log.Error("chat completion failed", "error", err, "model", c.model)
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}
	return resp.Choices[0].Message.Content, nil
}
