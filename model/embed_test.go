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

func TestGrokEmbedder_Embed(t *testing.T) {
	var gotReq embeddingRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		// Vectors deliberately out of order; the client must place by index.
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"index": 1, "embedding": []float32{0.2, 0.2}},
				{"index": 0, "embedding": []float32{0.1, 0.1}},
			},
		})
	}))
	defer srv.Close()

	e := NewGrokEmbedder(srv.URL, "test-key", "text-embedding-ada-002")
	vectors, err := e.Embed(context.Background(), []string{"first", "second"})
	require.NoError(t, err)

	assert.Equal(t, "text-embedding-ada-002", gotReq.Model)
	assert.Equal(t, []string{"first", "second"}, gotReq.Input)

	require.Len(t, vectors, 2)
	assert.Equal(t, []float32{0.1, 0.1}, vectors[0])
	assert.Equal(t, []float32{0.2, 0.2}, vectors[1])
}

func TestGrokEmbedder_EmptyInput(t *testing.T) {
	e := NewGrokEmbedder("http://unused", "k", "m")
	vectors, err := e.Embed(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vectors)
}

func TestGrokEmbedder_CountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"index": 0, "embedding": []float32{0.1}}},
		})
	}))
	defer srv.Close()

	e := NewGrokEmbedder(srv.URL, "k", "m")
	_, err := e.Embed(context.Background(), []string{"a", "b"})
	assert.Error(t, err)
}

func TestGrokEmbedder_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	e := NewGrokEmbedder(srv.URL, "k", "m")
	_, err := e.Embed(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}
