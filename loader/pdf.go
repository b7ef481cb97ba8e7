package loader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	pdftypes "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Header and footer bands trimmed off every page before conversion, in
// points (1 pt = 1/72 inch).
const (
	cropTop    = 40.0
	cropBottom = 40.0
)

type converterResponse struct {
	Document struct {
		MDContent string `json:"md_content"`
	} `json:"document"`
}

func isPDF(path string) bool {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return true
	}
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	head := make([]byte, 5)
	if _, err := io.ReadFull(f, head); err != nil {
		return false
	}
	return bytes.Equal(head, []byte("%PDF-"))
}

// convertPDF validates the file, trims page headers/footers and sends the
// result to the configured converter service for text extraction.
func (l *Loader) convertPDF(ctx context.Context, path string) (string, error) {
	if l.converterURL == "" {
		return "", fmt.Errorf("PDF source %s requires CONVERTER_URL", path)
	}

	conf := api.LoadConfiguration()
	if err := api.ValidateFile(path, conf); err != nil {
		return "", fmt.Errorf("invalid PDF: %w", err)
	}

	cropped := path
	tmp, err := os.CreateTemp("", "docqa-crop-*.pdf")
	if err == nil {
		tmp.Close()
		if err := cropHeaderFooter(path, tmp.Name(), cropTop, cropBottom); err == nil {
			cropped = tmp.Name()
		}
		defer os.Remove(tmp.Name())
	}

	return l.convertFile(ctx, cropped)
}

// cropHeaderFooter trims top and bottom bands off every page.
func cropHeaderFooter(inputPath, outputPath string, top, bottom float64) error {
	conf := api.LoadConfiguration()
	pages := []string{"1-"}

	cropStr := fmt.Sprintf("%.2f 0 %.2f 0", top, bottom)
	box, err := pdfmodel.ParseBox(cropStr, pdftypes.POINTS)
	if err != nil {
		return fmt.Errorf("failed to parse crop box: %w", err)
	}

	if err := api.CropFile(inputPath, outputPath, pages, box, conf); err != nil {
		return fmt.Errorf("failed to crop PDF: %w", err)
	}
	return nil
}

// convertFile posts the PDF to the converter service and returns the
// extracted markdown text.
func (l *Loader) convertFile(ctx context.Context, path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("files", filepath.Base(path))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", err
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.converterURL, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := l.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("converter request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("converter error: status %d, body: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var out converterResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to unmarshal converter response: %w", err)
	}
	return out.Document.MDContent, nil
}
