package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/selfai-labs/selfai/src/ai/core"
	"github.com/selfai-labs/selfai/src/webclient"
)

const defaultBaseURL = "https://api.openai.com/v1"

func init() {
	core.RegisterProvider("openai", newClient, "gpt", "gpt4omini")
}

type client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	defaults   core.Options
}

func newClient(cfg core.FactoryConfig) (core.Client, error) {
	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("openai: API key not configured")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &client{
		apiKey:     cfg.OpenAIKey,
		baseURL:    baseURL,
		httpClient: webclient.NewDefault(timeout),
		defaults: core.Options{
			Model:               core.ResolveModelName("openai", cfg.Model),
			Temperature:         cfg.Temperature,
			MaxCompletionTokens: orInt(cfg.MaxCompletionTokens, 512),
		},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate calls chat completions once; the caller decides whether to retry.
func (c *client) Generate(ctx context.Context, system, prompt string, opts core.Options) (string, error) {
	merged := core.Merge(c.defaults, opts)
	payload := chatRequest{
		Model: merged.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   merged.MaxCompletionTokens,
		Temperature: merged.Temperature,
	}
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	_, body, err := webclient.DoWithRetry(ctx, 1, 0, func() (int, []byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
		if err != nil {
			return 0, nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		return webclient.Do(c.httpClient, req)
	})
	if err != nil {
		return "", fmt.Errorf("openai API error: %w", err)
	}

	var result chatResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("openai: decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("openai: %w", core.ErrEmptyResponse)
	}
	text := strings.TrimSpace(result.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("openai: %w", core.ErrEmptyResponse)
	}
	return text, nil
}

func orInt(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
