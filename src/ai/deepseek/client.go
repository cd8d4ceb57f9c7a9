package deepseek

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

const (
	defaultBaseURL     = "https://api.deepseek.com"
	defaultMaxTokens   = 512
	defaultTemperature = 0.7
)

func init() {
	core.RegisterProvider("deepseek", newClient)
}

type client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	defaults   core.Options
}

func newClient(cfg core.FactoryConfig) (core.Client, error) {
	if cfg.DeepSeekKey == "" {
		return nil, fmt.Errorf("deepseek: API key not configured")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	return &client{
		apiKey:     cfg.DeepSeekKey,
		baseURL:    baseURL,
		httpClient: webclient.NewDefault(timeout),
		defaults: core.Options{
			Model:               core.ResolveModelName("deepseek", cfg.Model),
			Temperature:         orFloat(cfg.Temperature, defaultTemperature),
			MaxCompletionTokens: orInt(cfg.MaxCompletionTokens, defaultMaxTokens),
		},
	}, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	Stream      bool      `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

func (c *client) Generate(ctx context.Context, system, prompt string, opts core.Options) (string, error) {
	merged := core.Merge(c.defaults, opts)
	messages := []message{}
	if strings.TrimSpace(system) != "" {
		messages = append(messages, message{Role: "system", Content: system})
	}
	messages = append(messages, message{Role: "user", Content: prompt})

	bodyBytes, err := json.Marshal(chatRequest{
		Model:       merged.Model,
		Messages:    messages,
		Temperature: merged.Temperature,
		MaxTokens:   merged.MaxCompletionTokens,
	})
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
		return "", fmt.Errorf("deepseek API error: %w", err)
	}

	var result chatResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("deepseek: decode response: %w", err)
	}
	for _, choice := range result.Choices {
		if text := strings.TrimSpace(choice.Message.Content); text != "" {
			return text, nil
		}
	}
	return "", fmt.Errorf("deepseek: %w", core.ErrEmptyResponse)
}

func orInt(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func orFloat(v, def float64) float64 {
	if v != 0 {
		return v
	}
	return def
}
