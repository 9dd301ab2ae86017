package messaging

import (
	"errors"
	"fmt"

	"github.com/kfreiman/piigate/internal/pii"
)

// ErrSearchDisabled is returned by Search when no index is configured
var ErrSearchDisabled = errors.New("message search is not enabled")

// ValidationError represents input validation failure
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field != "" && e.Value != "" {
		return fmt.Sprintf("validation failed for %s '%s': %s", e.Field, e.Value, e.Reason)
	}
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("validation failed: %s", e.Reason)
}

// NotFoundError is returned when a thread or message does not exist
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// BlockedError is returned when a candidate message contains PII. The
// message was not stored.
type BlockedError struct {
	Verdict pii.Verdict
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("message blocked (%s): %s", e.Verdict.Category, e.Verdict.Message)
}

// IsBlocked reports whether err is a BlockedError and returns its verdict
func IsBlocked(err error) (pii.Verdict, bool) {
	var blocked *BlockedError
	if errors.As(err, &blocked) {
		return blocked.Verdict, true
	}
	return pii.Verdict{}, false
}

// IsNotFound reports whether err is a NotFoundError
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
