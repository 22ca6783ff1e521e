package catalog

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedInput marks files that are not JSON or not one of the two
	// accepted top-level shapes. The file is left in place for a later run.
	ErrMalformedInput = errors.New("malformed input")
	// ErrMissingRequiredField marks records with neither a usable name nor a
	// derivable id. Such records are dropped.
	ErrMissingRequiredField = errors.New("missing required field")
	// ErrIO marks read, archive, and catalog write failures.
	ErrIO = errors.New("io failure")
	// ErrUnexpected marks failures outside the taxonomy above; they end the run
	// with a non-zero exit.
	ErrUnexpected = errors.New("unexpected failure")
)

// Wrap builds an error that includes the subject and operation while tagging
// it with marker for later classification. marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, subject, operation string, err error) error {
	detail := buildDetail(subject, operation)
	if marker == nil {
		marker = ErrUnexpected
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind returns a short label for the taxonomy class of err.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMalformedInput):
		return "malformed_input"
	case errors.Is(err, ErrMissingRequiredField):
		return "missing_required_field"
	case errors.Is(err, ErrIO):
		return "io_failure"
	default:
		return "unexpected"
	}
}

func buildDetail(subject, operation string) string {
	parts := make([]string, 0, 2)
	if subject = strings.TrimSpace(subject); subject != "" {
		parts = append(parts, subject)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if len(parts) == 0 {
		return "catalog failure"
	}
	return strings.Join(parts, ": ")
}
