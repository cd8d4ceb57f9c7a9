package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoClient struct{ model string }

func (e echoClient) Generate(_ context.Context, system, prompt string, _ Options) (string, error) {
	return e.model + ":" + prompt, nil
}

func TestNewClient_UsesRegisteredFactory(t *testing.T) {
	RegisterProvider("echo-test", func(cfg FactoryConfig) (Client, error) {
		return echoClient{model: cfg.Model}, nil
	}, "Echo-Alias")

	client, err := NewClient(FactoryConfig{Provider: "ECHO-ALIAS", Model: "m1"})
	require.NoError(t, err)
	out, err := client.Generate(context.Background(), "sys", "hi", Options{})
	require.NoError(t, err)
	assert.Equal(t, "m1:hi", out)
	assert.Contains(t, Registered(), "echo-test")

	_, err = NewClient(FactoryConfig{Provider: "nope"})
	assert.Error(t, err)
}

func TestResolveModelName(t *testing.T) {
	assert.Equal(t, "gpt-4o-mini", ResolveModelName("openai", ""))
	assert.Equal(t, "claude-3-5-haiku-latest", ResolveModelName("anthropic", " "))
	assert.Equal(t, "custom", ResolveModelName("openai", "custom"))
	assert.Equal(t, "unknown", ResolveModelName("mystery", ""))
}

func TestMerge(t *testing.T) {
	defaults := Options{Model: "a", Temperature: 0.7, MaxCompletionTokens: 1000}
	got := Merge(defaults, Options{MaxCompletionTokens: 200})
	assert.Equal(t, Options{Model: "a", Temperature: 0.7, MaxCompletionTokens: 200}, got)
}
