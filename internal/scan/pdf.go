package scan

import (
	"bytes"
	"context"
	"io"

	"github.com/kfreiman/piigate/internal/retry"
	"github.com/kfreiman/piigate/internal/storage"
	"github.com/ledongthuc/pdf"
)

// PDFConverter extracts text from PDF files using pure Go
type PDFConverter struct {
	reader fileReader
}

// NewPDFConverter creates a new PDFConverter
func NewPDFConverter(fsys storage.FileSystem) *PDFConverter {
	return &PDFConverter{reader: fileReader{fs: fsys, retry: retry.DefaultConfig}}
}

func (c *PDFConverter) Supports(path string) bool {
	return extOf(path) == ".pdf"
}

// Convert extracts the plain text of every page
func (c *PDFConverter) Convert(ctx context.Context, path string) (string, error) {
	data, err := c.reader.read(ctx, path)
	if err != nil {
		return "", err
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &ConversionError{
			Path:   path,
			Format: "pdf",
			Err:    err,
			Hint:   "failed to open PDF",
		}
	}

	text, err := reader.GetPlainText()
	if err != nil {
		return "", &ConversionError{
			Path:   path,
			Format: "pdf",
			Err:    err,
			Hint:   "failed to extract text from PDF",
		}
	}

	content, err := io.ReadAll(text)
	if err != nil {
		return "", &ConversionError{
			Path:   path,
			Format: "pdf",
			Err:    err,
			Hint:   "failed to read PDF text",
		}
	}

	return string(content), nil
}
