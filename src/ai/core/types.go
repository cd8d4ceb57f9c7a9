package core

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned when a provider answers without any text.
var ErrEmptyResponse = errors.New("ai: empty response")

// Options controls model behavior; zero fields fall back to provider defaults.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int
}

// Client is a provider-agnostic text generator. system frames the persona,
// prompt carries the task.
type Client interface {
	Generate(ctx context.Context, system, prompt string, opts Options) (string, error)
}
