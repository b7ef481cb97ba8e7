package model

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrokClient_Chat(t *testing.T) {
	var gotReq chatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": `{"ok":true}`}},
			},
		})
	}))
	defer srv.Close()

	g := NewGrokClient(srv.URL, "test-key", "grok-beta")
	out, err := g.Chat(context.Background(), ChatRequest{
		System:      "be terse",
		Prompt:      "hello",
		Temperature: 0.1,
		JSONOutput:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, out)

	assert.Equal(t, "grok-beta", gotReq.Model)
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Equal(t, "be terse", gotReq.Messages[0].Content)
	assert.Equal(t, "user", gotReq.Messages[1].Role)
	require.NotNil(t, gotReq.ResponseFormat)
	assert.Equal(t, "json_object", gotReq.ResponseFormat.Type)
}

func TestGrokClient_Chat_NoJSONFormat(t *testing.T) {
	var gotReq chatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]any{"content": "plain text"}}},
		})
	}))
	defer srv.Close()

	g := NewGrokClient(srv.URL, "k", "m")
	out, err := g.Chat(context.Background(), ChatRequest{Prompt: "hi", Temperature: 0.2})
	require.NoError(t, err)
	assert.Equal(t, "plain text", out)
	assert.Nil(t, gotReq.ResponseFormat)
}

func TestGrokClient_Chat_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	g := NewGrokClient(srv.URL, "k", "m")
	_, err := g.Chat(context.Background(), ChatRequest{Prompt: "hi"})
	assert.Error(t, err)
}

func TestGrokClient_Chat_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	g := NewGrokClient(srv.URL, "k", "m")
	_, err := g.Chat(context.Background(), ChatRequest{Prompt: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}
