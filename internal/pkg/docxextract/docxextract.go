package docxextract

import (
	"bytes"
	"io"

	"github.com/nguyenthenguyen/docx"
)

// ExtractText reads the entire content of r and extracts the plain text of
// the DOCX document body.
func ExtractText(r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if len(b) == 0 {
		return "", nil
	}
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return "", err
	}
	defer doc.Close()
	return doc.Editable().GetContent(), nil
}
