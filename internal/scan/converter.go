package scan

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/kfreiman/piigate/internal/retry"
	"github.com/kfreiman/piigate/internal/storage"
)

// Converter extracts plain text from a document
type Converter interface {
	// Convert returns the text content of the document at path
	Convert(ctx context.Context, path string) (string, error)
	// Supports checks if the converter handles the given path
	Supports(path string) bool
}

// fileReader reads documents through the storage filesystem with retry
type fileReader struct {
	fs    storage.FileSystem
	retry retry.Config
}

func (r fileReader) read(ctx context.Context, path string) ([]byte, error) {
	var data []byte
	err := retry.Do(ctx, r.retry, func(attempt int) error {
		b, err := r.fs.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return &FileNotFoundError{Path: path}
			}
			return &readError{path: path, err: err}
		}
		data = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// validatePath validates a file path to prevent path traversal
func validatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return &SecurityError{Type: "empty_path", Details: "path must not be empty"}
	}
	if strings.Contains(path, "..") {
		return &SecurityError{
			Type:    "path_traversal",
			Details: "path contains traversal sequence: " + path,
		}
	}
	if strings.Contains(path, "\x00") {
		return &SecurityError{Type: "null_byte", Details: "path contains null bytes"}
	}
	return nil
}

func extOf(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// TextConverter reads plain text and markdown files as-is
type TextConverter struct {
	reader fileReader
}

// NewTextConverter creates a converter for .txt and .md files
func NewTextConverter(fsys storage.FileSystem) *TextConverter {
	return &TextConverter{reader: fileReader{fs: fsys, retry: retry.DefaultConfig}}
}

func (c *TextConverter) Supports(path string) bool {
	switch extOf(path) {
	case ".txt", ".md", ".markdown":
		return true
	}
	return false
}

func (c *TextConverter) Convert(ctx context.Context, path string) (string, error) {
	data, err := c.reader.read(ctx, path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
