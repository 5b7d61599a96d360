package task

import "fmt"

// ValidationError reports malformed input: a bad enum value, an empty
// title, a priority out of range.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports a referenced task, dependency, or hook that
// does not exist.
type NotFoundError struct {
	Kind string // "task", "dependency", "hook"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// ConflictError reports a duplicate dependency edge.
type ConflictError struct {
	Detail string
}

func (e *ConflictError) Error() string {
	return e.Detail
}
