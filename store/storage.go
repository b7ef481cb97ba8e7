package store

import (
	"context"
	"fmt"

	"docqa/types"
)

// VectorStorer persists chunk embeddings and serves similarity search.
//
// Upsert writes each chunk under id "{docID}-{index}" with the chunk's
// metadata plus injected "content" and "doc_id" fields, overwriting any
// existing entry with the same id. Search returns at most topK matches
// ordered by descending score, restricted to docID when it is non-empty.
type VectorStorer interface {
	Upsert(ctx context.Context, docID string, chunks []types.Chunk, vectors [][]float32) error
	Search(ctx context.Context, vector []float32, docID string, topK int) ([]types.ClauseMatch, error)
}

// VectorID renders the index id for a chunk of a document.
func VectorID(docID string, index int) string {
	return fmt.Sprintf("%s-%d", docID, index)
}

// vectorMetadata builds the indexed metadata for a chunk: everything the
// loader attached, plus the literal content and the owning document id.
func vectorMetadata(docID string, chunk types.Chunk) map[string]any {
	meta := make(map[string]any, len(chunk.Metadata)+2)
	for k, v := range chunk.Metadata {
		meta[k] = v
	}
	meta["content"] = chunk.Content
	meta["doc_id"] = docID
	return meta
}
