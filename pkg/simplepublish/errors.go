package simplepublish

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error types
var (
	// ErrNotFound indicates an entity was not found by id or slug
	ErrNotFound = errors.New("entity not found")

	// ErrOrderNotFound indicates an intake order was not found
	ErrOrderNotFound = errors.New("order not found")

	// ErrSlugConflict indicates a title normalizes to a slug already in use
	ErrSlugConflict = errors.New("slug already in use")

	// ErrForbidden indicates the caller's role does not permit the mutation
	ErrForbidden = errors.New("operation not permitted for role")

	// ErrIllegalTransition indicates a status change not allowed from the current state
	ErrIllegalTransition = errors.New("illegal status transition")

	// ErrUploadFailed indicates an external store write error
	ErrUploadFailed = errors.New("upload failed")

	// ErrUnknownKind indicates an unregistered entity kind
	ErrUnknownKind = errors.New("unknown entity kind")
)

// ValidationError reports malformed or missing input, per field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %d field(s)", len(e.Fields))
}

// NewValidationError builds a ValidationError from field/message pairs.
func NewValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

// EntityError wraps an error with the entity operation that produced it.
type EntityError struct {
	EntityID uuid.UUID
	Kind     EntityKind
	Op       string
	Err      error
}

func (e *EntityError) Error() string {
	return fmt.Sprintf("%s operation %s failed for entity %s: %v", e.Kind, e.Op, e.EntityID, e.Err)
}

func (e *EntityError) Unwrap() error {
	return e.Err
}

// StorageError wraps an error from a blob store backend.
type StorageError struct {
	Backend string
	Key     string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s on backend %s: %v", e.Op, e.Key, e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
