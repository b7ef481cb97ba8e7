package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"docqa/types"
)

// PineconeStore is a minimal REST client to a Pinecone serverless index.
// host is the index endpoint ("https://<index>-<project>.svc.<env>.pinecone.io").
type PineconeStore struct {
	host      string
	apiKey    string
	namespace string
	client    *http.Client
}

type PineconeConfig struct {
	Host      string
	APIKey    string
	Namespace string
	Timeout   time.Duration
}

func NewPineconeStore(cfg PineconeConfig) *PineconeStore {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &PineconeStore{
		host:      cfg.Host,
		apiKey:    cfg.APIKey,
		namespace: cfg.Namespace,
		client:    &http.Client{Timeout: timeout},
	}
}

type pineconeVector struct {
	ID       string         `json:"id"`
	Values   []float32      `json:"values"`
	Metadata map[string]any `json:"metadata"`
}

func (s *PineconeStore) Upsert(ctx context.Context, docID string, chunks []types.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}

	points := make([]pineconeVector, len(chunks))
	for i := range chunks {
		points[i] = pineconeVector{
			ID:       VectorID(docID, i),
			Values:   vectors[i],
			Metadata: vectorMetadata(docID, chunks[i]),
		}
	}

	body := map[string]any{"vectors": points}
	if s.namespace != "" {
		body["namespace"] = s.namespace
	}
	return s.postJSON(ctx, s.host+"/vectors/upsert", body, nil)
}

func (s *PineconeStore) Search(ctx context.Context, vector []float32, docID string, topK int) ([]types.ClauseMatch, error) {
	if topK <= 0 {
		topK = 5
	}

	req := map[string]any{
		"vector":          vector,
		"topK":            topK,
		"includeMetadata": true,
	}
	if docID != "" {
		req["filter"] = map[string]any{"doc_id": map[string]any{"$eq": docID}}
	}
	if s.namespace != "" {
		req["namespace"] = s.namespace
	}

	var resp struct {
		Matches []struct {
			ID       string         `json:"id"`
			Score    float64        `json:"score"`
			Metadata map[string]any `json:"metadata"`
		} `json:"matches"`
	}
	if err := s.postJSON(ctx, s.host+"/query", req, &resp); err != nil {
		return nil, err
	}

	matches := make([]types.ClauseMatch, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		content, _ := m.Metadata["content"].(string)
		matches = append(matches, types.ClauseMatch{
			ID:       m.ID,
			Score:    m.Score,
			Content:  content,
			Metadata: m.Metadata,
		})
	}
	return matches, nil
}

func (s *PineconeStore) postJSON(ctx context.Context, url string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("pinecone POST %s failed: status %d, body: %s", url, resp.StatusCode, string(respBody))
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
