// Package pdf renders HTML documents to PDF byte streams using
// wkhtmltopdf. The wkhtmltopdf binary must be on PATH at runtime.
package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	wkhtmltopdf "github.com/SebastiaanKlippert/go-wkhtmltopdf"
)

// Renderer converts HTML documents into PDF bytes and can save them
// under a downloads directory.
type Renderer struct {
	downloadsDir string
}

// NewRenderer creates a Renderer that saves files under downloadsDir.
func NewRenderer(downloadsDir string) *Renderer {
	return &Renderer{downloadsDir: downloadsDir}
}

// Render converts an HTML document into PDF bytes.
func (r *Renderer) Render(html string) ([]byte, error) {
	gen, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	page := wkhtmltopdf.NewPageReader(strings.NewReader(html))
	page.EnableLocalFileAccess.Set(false)
	gen.AddPage(page)
	gen.PageSize.Set(wkhtmltopdf.PageSizeA4)

	if err := gen.Create(); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return gen.Bytes(), nil
}

// Save writes PDF bytes under the downloads directory and returns the
// full path. The name is sanitized to a flat file name.
func (r *Renderer) Save(name string, data []byte) (string, error) {
	if err := os.MkdirAll(r.downloadsDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create downloads directory: %w", err)
	}
	path := filepath.Join(r.downloadsDir, SanitizeFileName(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to save PDF: %w", err)
	}
	return path, nil
}

// SanitizeFileName strips path separators and awkward characters so a
// client-supplied company name cannot escape the downloads directory.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "quotation.pdf"
	}
	replacer := strings.NewReplacer(
		"/", "-",
		"\\", "-",
		"..", "-",
		" ", "_",
		":", "-",
	)
	return filepath.Base(replacer.Replace(name))
}
