package scan

import (
	"fmt"
)

// ConversionError represents a document conversion failure
type ConversionError struct {
	Path   string
	Format string
	Err    error
	Hint   string
}

func (e *ConversionError) Error() string {
	msg := fmt.Sprintf("conversion failed for %s", e.Path)
	if e.Format != "" {
		msg += fmt.Sprintf(" (format: %s)", e.Format)
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	if e.Hint != "" {
		msg += fmt.Sprintf("\nHint: %s", e.Hint)
	}
	return msg
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// FileNotFoundError represents a file not found error
type FileNotFoundError struct {
	Path string
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("file not found: %s", e.Path)
}

// SecurityError represents a rejected path
type SecurityError struct {
	Type    string // e.g., "path_traversal", "null_byte"
	Details string
}

func (e *SecurityError) Error() string {
	return fmt.Sprintf("security violation (%s): %s", e.Type, e.Details)
}

// UnsupportedFormatError is returned when no converter handles a file
type UnsupportedFormatError struct {
	Path string
	Ext  string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Ext == "" {
		return fmt.Sprintf("unsupported document format: %s", e.Path)
	}
	return fmt.Sprintf("unsupported document format %s: %s", e.Ext, e.Path)
}

// readError wraps a failed file read so the retry helper can try again
type readError struct {
	path string
	err  error
}

func (e *readError) Error() string {
	return fmt.Sprintf("read %s: %v", e.path, e.err)
}

func (e *readError) Unwrap() error {
	return e.err
}

// IsRetryable reports whether the read may succeed on another attempt
func (e *readError) IsRetryable() bool {
	return true
}
