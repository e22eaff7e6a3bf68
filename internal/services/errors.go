// Package services defines the shared error taxonomy used by the import,
// override, and reconciliation flows to classify failures for callers.
package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFormat marks a DAT or override file that does not parse. The file
	// is skipped; the run continues with the remaining inputs.
	ErrFormat = errors.New("format error")
	// ErrStore marks a rejected write from the backing store. The current
	// transaction is rolled back and the failure surfaces to the caller.
	ErrStore = errors.New("store error")
	// ErrValidation marks input that parsed but violates a contract.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks a missing entity referenced by id.
	ErrNotFound = errors.New("not found")
	// ErrUnsafeField marks an override targeting a non-allow-listed field.
	// The single override is skipped; the rest of the batch proceeds.
	ErrUnsafeField = errors.New("unsafe override field")
	// ErrTransient marks failures with no specific classification.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ExitCode maps a classified error to a CLI exit code. Format and
// validation problems are caller mistakes (2); store failures are
// environmental (3); everything else is a generic failure (1).
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrFormat), errors.Is(err, ErrValidation), errors.Is(err, ErrUnsafeField):
		return 2
	case errors.Is(err, ErrStore):
		return 3
	default:
		return 1
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
