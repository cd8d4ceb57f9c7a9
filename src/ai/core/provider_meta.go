package core

import (
	"strings"
)

var providerDefaultModels = map[string]string{
	"openai":   "gpt-4o-mini",
	"claude":   "claude-3-5-haiku-latest",
	"gemini":   "gemini-2.5-flash",
	"deepseek": "deepseek-chat",
}

// DefaultModelForProvider returns the baked-in default model for a provider key.
func DefaultModelForProvider(provider string) string {
	key := strings.ToLower(strings.TrimSpace(provider))
	if key == "anthropic" {
		key = "claude"
	}
	if val, ok := providerDefaultModels[key]; ok {
		return val
	}
	return ""
}

// ResolveModelName picks the configured model if provided, otherwise the provider's default.
func ResolveModelName(provider, configuredModel string) string {
	model := strings.TrimSpace(configuredModel)
	if model != "" {
		return model
	}
	if def := DefaultModelForProvider(provider); def != "" {
		return def
	}
	return "unknown"
}

// Merge overlays non-zero fields of opts onto defaults.
func Merge(defaults, opts Options) Options {
	out := defaults
	if opts.Model != "" {
		out.Model = opts.Model
	}
	if opts.Temperature != 0 {
		out.Temperature = opts.Temperature
	}
	if opts.MaxCompletionTokens > 0 {
		out.MaxCompletionTokens = opts.MaxCompletionTokens
	}
	return out
}
