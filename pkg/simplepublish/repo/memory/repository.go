package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/contentops/simple-publish/pkg/simplepublish"
)

// Repository implements simplepublish.Repository using in-memory storage.
// Used by tests and as the default backend in development.
type Repository struct {
	mu       sync.RWMutex
	entities map[uuid.UUID]*simplepublish.Entity
	orders   map[uuid.UUID]*simplepublish.Order
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		entities: make(map[uuid.UUID]*simplepublish.Entity),
		orders:   make(map[uuid.UUID]*simplepublish.Order),
	}
}

// Entity operations

func (r *Repository) CreateEntity(ctx context.Context, entity *simplepublish.Entity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Copy to avoid external modifications
	entityCopy := *entity
	r.entities[entity.ID] = &entityCopy
	return nil
}

func (r *Repository) GetEntity(ctx context.Context, id uuid.UUID) (*simplepublish.Entity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entity, exists := r.entities[id]
	if !exists || entity.DeletedAt != nil {
		return nil, simplepublish.ErrNotFound
	}
	entityCopy := *entity
	return &entityCopy, nil
}

func (r *Repository) GetEntityBySlug(ctx context.Context, kind simplepublish.EntityKind, slug string) (*simplepublish.Entity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, entity := range r.entities {
		if entity.Kind == kind && entity.DeletedAt == nil && strings.EqualFold(entity.Slug, slug) {
			entityCopy := *entity
			return &entityCopy, nil
		}
	}
	return nil, simplepublish.ErrNotFound
}

func (r *Repository) UpdateEntity(ctx context.Context, entity *simplepublish.Entity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.entities[entity.ID]
	if !exists || existing.DeletedAt != nil {
		return simplepublish.ErrNotFound
	}
	entityCopy := *entity
	r.entities[entity.ID] = &entityCopy
	return nil
}

func (r *Repository) DeleteEntity(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entity, exists := r.entities[id]
	if !exists || entity.DeletedAt != nil {
		return simplepublish.ErrNotFound
	}
	now := time.Now().UTC()
	entity.DeletedAt = &now
	entity.UpdatedAt = now
	return nil
}

func (r *Repository) ListEntities(ctx context.Context, query simplepublish.Query) ([]*simplepublish.Entity, error) {
	r.mu.RLock()
	matched := r.collectLocked(query.Kind, query.Filter)
	r.mu.RUnlock()

	sortEntities(matched, query.Sort)

	if query.Page.All {
		return matched, nil
	}
	offset := query.Page.Offset()
	if offset >= len(matched) {
		return []*simplepublish.Entity{}, nil
	}
	matched = matched[offset:]
	if query.Page.Limit > 0 && query.Page.Limit < len(matched) {
		matched = matched[:query.Page.Limit]
	}
	return matched, nil
}

func (r *Repository) CountEntities(ctx context.Context, kind simplepublish.EntityKind, filter simplepublish.Filter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.collectLocked(kind, filter))), nil
}

func (r *Repository) SlugExists(ctx context.Context, kind simplepublish.EntityKind, slug string, excludeID uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, entity := range r.entities {
		if entity.Kind != kind || entity.DeletedAt != nil || entity.ID == excludeID {
			continue
		}
		if strings.EqualFold(entity.Slug, slug) {
			return true, nil
		}
	}
	return false, nil
}

func (r *Repository) CountByStatus(ctx context.Context, kind simplepublish.EntityKind) (map[simplepublish.Status]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[simplepublish.Status]int64)
	for _, entity := range r.entities {
		if entity.Kind == kind && entity.DeletedAt == nil {
			counts[entity.Status]++
		}
	}
	return counts, nil
}

// collectLocked gathers copies of all live entities matching the filter.
// Caller holds at least a read lock.
func (r *Repository) collectLocked(kind simplepublish.EntityKind, filter simplepublish.Filter) []*simplepublish.Entity {
	var matched []*simplepublish.Entity
	for _, entity := range r.entities {
		if entity.Kind != kind || entity.DeletedAt != nil {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, entity.Status) {
			continue
		}
		if filter.Search != "" && !matchesSearch(entity, filter) {
			continue
		}
		entityCopy := *entity
		matched = append(matched, &entityCopy)
	}
	return matched
}

func containsStatus(set []simplepublish.Status, s simplepublish.Status) bool {
	for _, candidate := range set {
		if candidate == s {
			return true
		}
	}
	return false
}

func matchesSearch(entity *simplepublish.Entity, filter simplepublish.Filter) bool {
	needle := strings.ToLower(filter.Search)
	for _, field := range filter.SearchFields {
		var value string
		switch field {
		case "title":
			value = entity.Title
		case "summary":
			value = entity.Summary
		case "slug":
			value = entity.Slug
		}
		if value != "" && strings.Contains(strings.ToLower(value), needle) {
			return true
		}
	}
	return false
}

func sortEntities(entities []*simplepublish.Entity, s simplepublish.Sort) {
	less := func(a, b *simplepublish.Entity) bool {
		switch s.Key {
		case "title":
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		case "rating":
			if a.Rating != b.Rating {
				return a.Rating < b.Rating
			}
			return a.CreatedAt.Before(b.CreatedAt)
		case "views":
			if a.Views != b.Views {
				return a.Views < b.Views
			}
			return a.CreatedAt.Before(b.CreatedAt)
		case "published_at":
			at, bt := a.PublishedAt, b.PublishedAt
			if at == nil || bt == nil {
				return bt == nil && at != nil
			}
			return at.Before(*bt)
		default: // created_at
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
	sort.SliceStable(entities, func(i, j int) bool {
		if s.Desc {
			return less(entities[j], entities[i])
		}
		return less(entities[i], entities[j])
	})
}

// Order operations

func (r *Repository) CreateOrder(ctx context.Context, order *simplepublish.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	orderCopy := *order
	r.orders[order.ID] = &orderCopy
	return nil
}

func (r *Repository) GetOrder(ctx context.Context, id uuid.UUID) (*simplepublish.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, exists := r.orders[id]
	if !exists {
		return nil, simplepublish.ErrOrderNotFound
	}
	orderCopy := *order
	return &orderCopy, nil
}

func (r *Repository) UpdateOrder(ctx context.Context, order *simplepublish.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[order.ID]; !exists {
		return simplepublish.ErrOrderNotFound
	}
	orderCopy := *order
	r.orders[order.ID] = &orderCopy
	return nil
}

func (r *Repository) ListOrders(ctx context.Context, page simplepublish.Page) ([]*simplepublish.Order, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*simplepublish.Order
	for _, order := range r.orders {
		orderCopy := *order
		result = append(result, &orderCopy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	total := int64(len(result))
	offset := page.Offset()
	if offset >= len(result) {
		return []*simplepublish.Order{}, total, nil
	}
	result = result[offset:]
	if page.Limit > 0 && page.Limit < len(result) {
		result = result[:page.Limit]
	}
	return result, total, nil
}
