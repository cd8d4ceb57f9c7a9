package deepseek

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

func TestGenerate(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer ds-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"gm from deepseek"}}]}`))
	}))
	defer srv.Close()

	client, err := core.NewClient(core.FactoryConfig{Provider: "deepseek", DeepSeekKey: "ds-key", BaseURL: srv.URL})
	require.NoError(t, err)

	out, err := client.Generate(context.Background(), "Name: Nova", "Summarize", core.Options{MaxCompletionTokens: 200})
	require.NoError(t, err)
	assert.Equal(t, "gm from deepseek", out)
	assert.Equal(t, "deepseek-chat", got.Model)
	assert.Equal(t, 0.7, got.Temperature)
	assert.Equal(t, 200, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
}

func TestGenerate_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "insufficient balance", http.StatusPaymentRequired)
	}))
	defer srv.Close()

	client, err := core.NewClient(core.FactoryConfig{Provider: "deepseek", DeepSeekKey: "ds-key", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), "", "x", core.Options{})
	var statusErr *webclient.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusPaymentRequired, statusErr.Status)
}
