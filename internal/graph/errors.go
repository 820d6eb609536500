package graph

import "fmt"

// ValidationError reports malformed input: a missing required field, a
// strategy outside the allowed set, a threshold outside [0,1].
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Message
}

// NewValidationError builds a ValidationError from a format string.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports that an operation target (entity name or relation
// triple) does not exist in the graph.
type NotFoundError struct {
	Kind string // "entity" or "relation"
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Key)
}

// NewEntityNotFound reports a missing entity name.
func NewEntityNotFound(name string) *NotFoundError {
	return &NotFoundError{Kind: "entity", Key: name}
}

// NewRelationNotFound reports a missing relation triple.
func NewRelationNotFound(from, to, relationType string) *NotFoundError {
	return &NotFoundError{Kind: "relation", Key: fmt.Sprintf("%s -[%s]-> %s", from, relationType, to)}
}

// PersistenceError wraps a storage failure. The engine and the workspace
// service propagate it verbatim and never retry.
type PersistenceError struct {
	Op  string // "load" or "save"
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
