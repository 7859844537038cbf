// Package extract turns uploaded resume files into raw text. The actual
// parsing is delegated to format-specific extractors; this package only
// dispatches on the file extension.
package extract

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"resume-screener/internal/pkg/docxextract"
	"resume-screener/internal/pkg/pdfextract"
)

var ErrUnsupportedFormat = fmt.Errorf("unsupported file format")

// TextExtractor converts file bytes into raw text.
type TextExtractor interface {
	Text(filename string, data []byte) (string, error)
}

// FileExtractor dispatches by extension: .pdf, .docx and .txt are supported.
type FileExtractor struct{}

func NewFileExtractor() *FileExtractor {
	return &FileExtractor{}
}

func (e *FileExtractor) Text(filename string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		text, err := pdfextract.ExtractText(bytes.NewReader(data))
		if err != nil {
			return "", fmt.Errorf("extract pdf text failed: %w", err)
		}
		return text, nil
	case ".docx":
		text, err := docxextract.ExtractText(bytes.NewReader(data))
		if err != nil {
			return "", fmt.Errorf("extract docx text failed: %w", err)
		}
		return text, nil
	case ".txt":
		return string(data), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}
