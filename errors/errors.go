package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the recoverable rejection cases. Callers match them
// with errors.Is after unwrapping whatever context the services added.
var (
	NotFound         = errors.New("not found")
	PermissionDenied = errors.New("permission denied")
	InvalidOperation = errors.New("invalid operation")
)

// Check if err is an instance of T for custom error types
func Is[T error](err error) bool {
	var target T
	return errors.As(err, &target)
}

// DuplicatePathError is raised in strict slug mode when a sibling board
// already owns the candidate slug.
type DuplicatePathError struct {
	Slug string
}

func (e *DuplicatePathError) Error() string {
	return fmt.Sprintf("duplicate path: slug %q already taken among siblings", e.Slug)
}

// DuplicateTopicError is raised when a topic title or slug collides with
// existing non-deleted topics. ConflictIds lists every conflicting topic.
type DuplicateTopicError struct {
	Title       string
	ConflictIds []int64
}

func (e *DuplicateTopicError) Error() string {
	return fmt.Sprintf("duplicate topic %q: conflicts with %d existing topic(s)", e.Title, len(e.ConflictIds))
}

// MissingAssociationError is raised when a required association is absent:
// a topic without a board, a message without a topic, a star without a
// user or message.
type MissingAssociationError struct {
	Association string
}

func (e *MissingAssociationError) Error() string {
	return fmt.Sprintf("required association missing: %s", e.Association)
}

// ValidationError wraps input validation failures from creation data.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s", e.Message)
}
