package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selfai-labs/selfai/src/ai/core"
	"github.com/selfai-labs/selfai/src/webclient"
)

func TestGenerate_SendsSystemAndUserMessages(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  gm frens  "}}]}`))
	}))
	defer srv.Close()

	client, err := core.NewClient(core.FactoryConfig{Provider: "openai", OpenAIKey: "sk-test", BaseURL: srv.URL + "/v1/"})
	require.NoError(t, err)

	out, err := client.Generate(context.Background(), "Name: Nova", "Write a post", core.Options{MaxCompletionTokens: 200})
	require.NoError(t, err)
	assert.Equal(t, "gm frens", out)

	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.Equal(t, 200, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, chatMessage{Role: "system", Content: "Name: Nova"}, got.Messages[0])
	assert.Equal(t, chatMessage{Role: "user", Content: "Write a post"}, got.Messages[1])
}

func TestGenerate_NoRetryOnServerError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := core.NewClient(core.FactoryConfig{Provider: "openai", OpenAIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), "s", "p", core.Options{})
	var se *webclient.StatusError
	assert.ErrorAs(t, err, &se)
	assert.Equal(t, 1, calls)
}

func TestGenerate_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	client, err := core.NewClient(core.FactoryConfig{Provider: "gpt", OpenAIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), "s", "p", core.Options{})
	assert.ErrorIs(t, err, core.ErrEmptyResponse)
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := core.NewClient(core.FactoryConfig{Provider: "openai"})
	assert.Error(t, err)
}
