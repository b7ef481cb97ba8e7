package loader

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"docqa/types"

	"github.com/pkoukk/tiktoken-go"
)

// DocumentProcessor turns a document reference (URL or local path) into a
// stable document id and its ordered content chunks.
type DocumentProcessor interface {
	Process(ctx context.Context, ref string) (string, []types.Chunk, error)
}

// Loader fetches a document, converts it to plain text and splits it into
// overlapping word-window chunks.
type Loader struct {
	chunkSize    int
	chunkOverlap int
	converterURL string
	client       *http.Client
	encoder      *tiktoken.Tiktoken
}

func New(chunkSize, chunkOverlap int, converterURL string) *Loader {
	if chunkSize <= 0 {
		chunkSize = 200
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = 0
	}
	// Token counts are advisory metadata; if the encoding tables are not
	// available the loader runs without them.
	enc, err := tiktoken.EncodingForModel("gpt-3.5-turbo")
	if err != nil {
		enc = nil
	}
	return &Loader{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		converterURL: converterURL,
		client:       &http.Client{Timeout: 60 * time.Second},
		encoder:      enc,
	}
}

// DocumentID derives a stable id from the document reference, so repeated
// submissions of the same reference land on the same vector ids.
func DocumentID(ref string) string {
	sum := sha256.Sum256([]byte(ref))
	return fmt.Sprintf("%x", sum)[:32]
}

func (l *Loader) Process(ctx context.Context, ref string) (string, []types.Chunk, error) {
	docID := DocumentID(ref)

	path, cleanup, err := l.localize(ctx, ref)
	if err != nil {
		return "", nil, err
	}
	defer cleanup()

	var text string
	if isPDF(path) {
		text, err = l.convertPDF(ctx, path)
	} else {
		text, err = readText(path)
	}
	if err != nil {
		return "", nil, err
	}

	chunks := l.split(ref, text)
	if len(chunks) == 0 {
		return "", nil, fmt.Errorf("document %s produced no chunks", ref)
	}
	return docID, chunks, nil
}

// localize makes the reference available as a local file. Remote documents
// are downloaded to a temp file that the returned cleanup removes.
func (l *Loader) localize(ctx context.Context, ref string) (string, func(), error) {
	noop := func() {}

	if !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://") {
		if _, err := os.Stat(ref); err != nil {
			return "", noop, fmt.Errorf("file does not exist: %s", ref)
		}
		return ref, noop, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return "", noop, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return "", noop, fmt.Errorf("failed to download document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", noop, fmt.Errorf("failed to download document: status %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp("", "docqa-*"+refExt(ref))
	if err != nil {
		return "", noop, fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", noop, fmt.Errorf("failed to save document: %w", err)
	}
	tmp.Close()

	return tmp.Name(), func() { os.Remove(tmp.Name()) }, nil
}

func refExt(ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return filepath.Ext(u.Path)
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read document: %w", err)
	}
	return string(data), nil
}

// split cuts text into word windows of chunkSize words, stepping by
// chunkSize-chunkOverlap so consecutive chunks share context.
func (l *Loader) split(ref, text string) []types.Chunk {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	step := l.chunkSize - l.chunkOverlap
	var chunks []types.Chunk
	for i := 0; i < len(words); i += step {
		end := i + l.chunkSize
		if end > len(words) {
			end = len(words)
		}
		content := strings.Join(words[i:end], " ")
		meta := map[string]any{
			"source":      ref,
			"chunk_index": len(chunks),
		}
		if l.encoder != nil {
			meta["tokens"] = len(l.encoder.Encode(content, nil, nil))
		}
		chunks = append(chunks, types.Chunk{Content: content, Metadata: meta})
		if end == len(words) {
			break
		}
	}
	return chunks
}
