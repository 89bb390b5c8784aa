package simplepublish

import (
	"io"
	"net/url"

	"github.com/google/uuid"
)

// CreateEntityRequest contains parameters for creating a publishable entity.
// Content carries either raw text (uploaded to the external store) or a
// pre-existing URL (stored as-is). File carries the body for binary-asset
// kinds instead.
type CreateEntityRequest struct {
	Kind     EntityKind
	Title    string
	Summary  string
	Content  string
	CoverURL string
	Rating   int

	File     io.Reader
	FileName string

	Role Role
}

// UpdateEntityRequest contains partial updates; nil fields are left
// unchanged. A non-nil Status is routed through the lifecycle state machine.
type UpdateEntityRequest struct {
	ID       uuid.UUID
	Title    *string
	Summary  *string
	Content  *string
	CoverURL *string
	Rating   *int
	Status   *Status

	File     io.Reader
	FileName string

	Role Role
}

// ListEntitiesRequest carries the untrusted query parameters of a list call.
type ListEntitiesRequest struct {
	Kind   EntityKind
	Params url.Values
	Role   Role
}

// SubmitOrderRequest contains the public order-intake form fields.
type SubmitOrderRequest struct {
	Name    string
	Email   string
	Phone   string
	Service string
	Message string
}
