package simplepublish

import (
	"context"
	"net/url"

	"github.com/google/uuid"
)

// Service is the entity lifecycle orchestrator: slug derivation, external
// content offloading, the per-kind status state machine and role-aware list
// planning, composed over an injected Repository and BlobStore.
type Service interface {
	// Entity lifecycle
	CreateEntity(ctx context.Context, req CreateEntityRequest) (*Entity, error)
	UpdateEntity(ctx context.Context, req UpdateEntityRequest) (*Entity, error)
	DeleteEntity(ctx context.Context, id uuid.UUID, callerRole Role) error

	// Reads
	GetEntity(ctx context.Context, id uuid.UUID) (*Entity, error)
	GetEntityBySlug(ctx context.Context, kind EntityKind, slug string, callerRole Role) (*Entity, error)
	ListEntities(ctx context.Context, req ListEntitiesRequest) (*EntityPage, error)

	// Status lifecycle
	SetStatus(ctx context.Context, id uuid.UUID, target Status, callerRole Role) (*Entity, error)
	ToggleStatus(ctx context.Context, id uuid.UUID, callerRole Role) (*Entity, error)
	Archive(ctx context.Context, id uuid.UUID, callerRole Role) (*Entity, error)

	// Statistics
	KindStatistics(ctx context.Context, kind EntityKind) (*StatusCounts, error)

	// Order intake
	SubmitOrder(ctx context.Context, req SubmitOrderRequest) (*Order, error)
	ListOrders(ctx context.Context, params url.Values, callerRole Role) (*OrderPage, error)
	MarkOrderHandled(ctx context.Context, id uuid.UUID, callerRole Role) (*Order, error)
}

// OrderPage is one page of intake orders.
type OrderPage struct {
	Items      []*Order    `json:"items"`
	Pagination *Pagination `json:"pagination,omitempty"`
	TotalItems int64       `json:"total_items"`
}
