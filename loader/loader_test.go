package loader

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentID(t *testing.T) {
	id := DocumentID("https://example.com/policy.pdf")

	assert.Len(t, id, 32)
	assert.Equal(t, id, DocumentID("https://example.com/policy.pdf"), "id must be stable per reference")
	assert.NotEqual(t, id, DocumentID("https://example.com/other.pdf"))
}

func TestSplit(t *testing.T) {
	l := New(5, 1, "")

	words := make([]string, 12)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	chunks := l.split("ref", strings.Join(words, " "))

	require.Len(t, chunks, 3)
	assert.Equal(t, "w0 w1 w2 w3 w4", chunks[0].Content)
	assert.Equal(t, "w4 w5 w6 w7 w8", chunks[1].Content, "consecutive chunks overlap by one word")
	assert.Equal(t, "w8 w9 w10 w11", chunks[2].Content)

	for i, c := range chunks {
		assert.Equal(t, i, c.Metadata["chunk_index"])
		assert.Equal(t, "ref", c.Metadata["source"])
	}
}

func TestSplit_ShortText(t *testing.T) {
	l := New(200, 20, "")

	chunks := l.split("ref", "only a few words here")
	require.Len(t, chunks, 1)
	assert.Equal(t, "only a few words here", chunks[0].Content)
}

func TestSplit_Empty(t *testing.T) {
	l := New(200, 20, "")
	assert.Empty(t, l.split("ref", "   \n\t  "))
}

func TestProcess_LocalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.txt")
	require.NoError(t, os.WriteFile(path, []byte("The policy covers knee surgery after a waiting period of thirty days."), 0o644))

	l := New(5, 0, "")
	docID, chunks, err := l.Process(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, DocumentID(path), docID)
	require.NotEmpty(t, chunks)
	assert.Equal(t, "The policy covers knee surgery", chunks[0].Content)
}

func TestProcess_RemoteDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("remote document body with several words in it"))
	}))
	defer srv.Close()

	ref := srv.URL + "/doc.txt"
	l := New(200, 20, "")
	docID, chunks, err := l.Process(context.Background(), ref)
	require.NoError(t, err)

	assert.Equal(t, DocumentID(ref), docID)
	require.Len(t, chunks, 1)
	assert.Equal(t, "remote document body with several words in it", chunks[0].Content)
	assert.Equal(t, ref, chunks[0].Metadata["source"])
}

func TestProcess_RemoteDownloadError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	l := New(200, 20, "")
	_, _, err := l.Process(context.Background(), srv.URL+"/doc.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestProcess_MissingFile(t *testing.T) {
	l := New(200, 20, "")
	_, _, err := l.Process(context.Background(), "/does/not/exist.txt")
	assert.Error(t, err)
}

func TestProcess_EmptyDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(path, []byte("  \n "), 0o644))

	l := New(200, 20, "")
	_, _, err := l.Process(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no chunks")
}

func TestProcess_PDFWithoutConverter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 not really a pdf"), 0o644))

	l := New(200, 20, "")
	_, _, err := l.Process(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CONVERTER_URL")
}

func TestIsPDF(t *testing.T) {
	dir := t.TempDir()

	pdfPath := filepath.Join(dir, "doc.bin")
	require.NoError(t, os.WriteFile(pdfPath, []byte("%PDF-1.7 ..."), 0o644))
	assert.True(t, isPDF(pdfPath), "content sniff on %%PDF- magic")
	assert.True(t, isPDF(filepath.Join(dir, "whatever.PDF")), "extension check is case-insensitive")

	txtPath := filepath.Join(dir, "doc.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte("plain text"), 0o644))
	assert.False(t, isPDF(txtPath))
}
