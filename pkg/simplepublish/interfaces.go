package simplepublish

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// BlobStore defines the interface for external storage backends.
type BlobStore interface {
	// Upload writes the content under objectKey, overwriting any previous
	// value at that key.
	Upload(ctx context.Context, objectKey string, reader io.Reader) error

	// Download reads the content stored under objectKey.
	Download(ctx context.Context, objectKey string) (io.ReadCloser, error)

	// Delete removes the object. Deleting an absent key is not an error.
	Delete(ctx context.Context, objectKey string) error

	// URL returns the stable externally visible locator for objectKey.
	URL(objectKey string) string

	// ResolveKey reverses URL: it parses an externally visible locator back
	// into a deletable object key. Returns false for URLs this backend did
	// not produce.
	ResolveKey(rawURL string) (string, bool)
}

// Repository defines the interface for entity and order persistence.
// Implementations are injected into the service; there is no ambient
// model registry.
type Repository interface {
	// Entity operations
	CreateEntity(ctx context.Context, entity *Entity) error
	GetEntity(ctx context.Context, id uuid.UUID) (*Entity, error)
	GetEntityBySlug(ctx context.Context, kind EntityKind, slug string) (*Entity, error)
	UpdateEntity(ctx context.Context, entity *Entity) error
	DeleteEntity(ctx context.Context, id uuid.UUID) error
	ListEntities(ctx context.Context, query Query) ([]*Entity, error)
	CountEntities(ctx context.Context, kind EntityKind, filter Filter) (int64, error)

	// SlugExists reports whether slug is taken within the kind's collection,
	// compared case-insensitively, excluding excludeID (uuid.Nil for none).
	SlugExists(ctx context.Context, kind EntityKind, slug string, excludeID uuid.UUID) (bool, error)

	// CountByStatus returns grouped per-status totals for one collection.
	CountByStatus(ctx context.Context, kind EntityKind) (map[Status]int64, error)

	// Order-intake operations
	CreateOrder(ctx context.Context, order *Order) error
	GetOrder(ctx context.Context, id uuid.UUID) (*Order, error)
	UpdateOrder(ctx context.Context, order *Order) error
	ListOrders(ctx context.Context, page Page) ([]*Order, int64, error)
}

// EventSink defines the interface for notification hooks. The email/WhatsApp
// notifier consumes these; failures are logged by the service and never fail
// the enclosing operation.
type EventSink interface {
	// EntityPublished is fired when an entity first enters its primary
	// visible state.
	EntityPublished(ctx context.Context, entity *Entity) error

	// EntityDeleted is fired after an entity record is removed.
	EntityDeleted(ctx context.Context, kind EntityKind, id uuid.UUID) error

	// OrderReceived is fired when an intake order is submitted.
	OrderReceived(ctx context.Context, order *Order) error
}
