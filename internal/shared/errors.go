package shared

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrOffline indicates a mutating operation was attempted while the
	// application is in offline mode. Recoverable by going online.
	ErrOffline = errors.New("operation requires online mode")
	// ErrCounterConflict indicates the atomic counter update could not
	// complete. Safe to retry.
	ErrCounterConflict = errors.New("could not generate number, try again")
	// ErrFinalized indicates an edit against a finalized document.
	ErrFinalized = errors.New("document is finalized and cannot be changed")
	// ErrSubscription indicates the live collection listener failed.
	ErrSubscription = errors.New("collection subscription failed")
)

// OfflineError wraps ErrOffline with the rejected operation name.
func OfflineError(operation string) error {
	return fmt.Errorf("cannot %s while offline: %w", operation, ErrOffline)
}

// UniquenessError reports a uniqueness constraint violated against
// currently loaded data. Best effort: the in-memory check does not replace
// a backend constraint.
type UniquenessError struct {
	Field string
	Value string
}

func (e *UniquenessError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Field, e.Value)
}

// ValidationError carries row- or field-scoped reasons input cannot be
// committed. It is always surfaced to the caller, never dropped.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 1 {
		return e.Issues[0]
	}
	return fmt.Sprintf("%d validation issues: %s", len(e.Issues), strings.Join(e.Issues, "; "))
}

// Add appends an issue.
func (e *ValidationError) Add(format string, args ...any) {
	e.Issues = append(e.Issues, fmt.Sprintf(format, args...))
}

// Empty reports whether no issues were recorded.
func (e *ValidationError) Empty() bool {
	return len(e.Issues) == 0
}
