package pdf

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain name", "quotation.pdf", "quotation.pdf"},
		{"empty falls back", "", "quotation.pdf"},
		{"whitespace falls back", "   ", "quotation.pdf"},
		{"spaces replaced", "Kumar Traders quotation.pdf", "Kumar_Traders_quotation.pdf"},
		{"path separators stripped", "a/b/c.pdf", "a-b-c.pdf"},
		{"backslashes stripped", `a\b.pdf`, "a-b.pdf"},
		{"parent traversal neutralized", "../../etc/passwd", "----etc-passwd"},
		{"colons replaced", "quote: final.pdf", "quote-_final.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeFileName(tt.in)
			if got != tt.want {
				t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if strings.ContainsAny(got, `/\`) {
				t.Errorf("sanitized name %q still contains a path separator", got)
			}
		})
	}
}

func TestSaveWritesUnderDownloadsDir(t *testing.T) {
	dir := t.TempDir()
	r := NewRenderer(dir)

	path, err := r.Save("../escape.pdf", []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	rel, err := filepath.Rel(dir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		t.Errorf("saved file %q escaped the downloads directory", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "%PDF-1.4" {
		t.Errorf("file content = %q", data)
	}
}
