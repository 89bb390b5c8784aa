package simplepublish

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// service implements the Service interface
type service struct {
	repository Repository
	content    *ContentStore
	eventSink  EventSink
	logger     *slog.Logger
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithContentStore sets the external content store adapter
func WithContentStore(cs *ContentStore) Option {
	return func(s *service) {
		s.content = cs
	}
}

// WithEventSink sets the notification sink for the service
func WithEventSink(sink EventSink) Option {
	return func(s *service) {
		s.eventSink = sink
	}
}

// WithLogger sets the structured logger for the service
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.content == nil {
		return nil, fmt.Errorf("content store is required")
	}
	if s.eventSink == nil {
		s.eventSink = NewNoopEventSink()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s, nil
}

// Entity lifecycle

func (s *service) CreateEntity(ctx context.Context, req CreateEntityRequest) (*Entity, error) {
	sp, ok := SpecFor(req.Kind)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, req.Kind)
	}
	if !req.Role.Elevated() {
		return nil, fmt.Errorf("%w: create requires an elevated role", ErrForbidden)
	}
	if err := validateCreate(sp, req); err != nil {
		return nil, err
	}

	slug, err := s.ensureSlug(ctx, sp.Kind, req.Title, uuid.Nil)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entity := &Entity{
		ID:        uuid.New(),
		Kind:      sp.Kind,
		Title:     req.Title,
		Slug:      slug,
		Summary:   req.Summary,
		CoverURL:  req.CoverURL,
		Rating:    req.Rating,
		Status:    sp.RestingStatus(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	// Offload the body before touching the database; a failed upload must
	// never be recorded as the entity's content URL.
	if sp.ContentBearing {
		switch {
		case sp.BinaryAsset && req.File != nil:
			key := contentObjectKey(sp.Kind, entity.ID, path.Ext(req.FileName))
			locator, err := s.content.UploadBlob(ctx, key, req.File)
			if err != nil {
				return nil, err
			}
			entity.ContentURL = locator
		case req.Content != "" && IsExternalURL(req.Content):
			entity.ContentURL = req.Content
		case req.Content != "":
			key := contentObjectKey(sp.Kind, entity.ID, ".md")
			locator, err := s.content.UploadText(ctx, key, req.Content)
			if err != nil {
				return nil, err
			}
			entity.ContentURL = locator
		}
	}

	if err := s.repository.CreateEntity(ctx, entity); err != nil {
		// The just-written blob is orphaned; acceptable, logged.
		if entity.ContentURL != "" {
			s.logger.Warn("entity create failed after upload, blob orphaned",
				"kind", entity.Kind, "content_url", entity.ContentURL)
		}
		return nil, &EntityError{EntityID: entity.ID, Kind: entity.Kind, Op: "create", Err: err}
	}

	return entity, nil
}

func (s *service) UpdateEntity(ctx context.Context, req UpdateEntityRequest) (*Entity, error) {
	if !req.Role.Elevated() {
		return nil, fmt.Errorf("%w: update requires an elevated role", ErrForbidden)
	}

	entity, err := s.repository.GetEntity(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	sp, ok := SpecFor(entity.Kind)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, entity.Kind)
	}

	if req.Title != nil && *req.Title != entity.Title {
		slug, err := s.ensureSlug(ctx, entity.Kind, *req.Title, entity.ID)
		if err != nil {
			return nil, err
		}
		entity.Title = *req.Title
		entity.Slug = slug
	}
	if req.Summary != nil {
		entity.Summary = *req.Summary
	}
	if req.CoverURL != nil {
		entity.CoverURL = *req.CoverURL
	}
	if req.Rating != nil {
		entity.Rating = *req.Rating
	}

	// Content replacement. Strictly upload new, persist new locator, delete
	// old; a failed upload aborts with the previous locator untouched.
	supersededURL := ""
	if sp.ContentBearing {
		switch {
		case sp.BinaryAsset && req.File != nil:
			key := contentObjectKey(sp.Kind, entity.ID, path.Ext(req.FileName))
			locator, err := s.content.UploadBlob(ctx, key, req.File)
			if err != nil {
				return nil, err
			}
			supersededURL = entity.ContentURL
			entity.ContentURL = locator
		case req.Content != nil && IsExternalURL(*req.Content):
			if *req.Content != entity.ContentURL {
				supersededURL = entity.ContentURL
				entity.ContentURL = *req.Content
			}
		case req.Content != nil && *req.Content != "":
			key := contentObjectKey(sp.Kind, entity.ID, ".md")
			locator, err := s.content.UploadText(ctx, key, *req.Content)
			if err != nil {
				return nil, err
			}
			supersededURL = entity.ContentURL
			entity.ContentURL = locator
		}
	}

	firstPublish := false
	if req.Status != nil && *req.Status != entity.Status {
		if err := sp.CheckTransition(entity.Status, *req.Status); err != nil {
			return nil, err
		}
		firstPublish = applyStatus(sp, entity, *req.Status)
	}

	entity.UpdatedAt = time.Now().UTC()
	if err := s.repository.UpdateEntity(ctx, entity); err != nil {
		if supersededURL != "" && entity.ContentURL != supersededURL {
			s.logger.Warn("entity update failed after upload, blob orphaned",
				"kind", entity.Kind, "content_url", entity.ContentURL)
		}
		return nil, &EntityError{EntityID: entity.ID, Kind: entity.Kind, Op: "update", Err: err}
	}

	// Only now is the old blob superseded for good.
	if supersededURL != "" && supersededURL != entity.ContentURL {
		s.content.DeleteURL(ctx, supersededURL)
	}
	if firstPublish {
		s.firePublished(ctx, entity)
	}

	return entity, nil
}

func (s *service) DeleteEntity(ctx context.Context, id uuid.UUID, callerRole Role) error {
	if !callerRole.CanDelete() {
		return fmt.Errorf("%w: delete requires the top elevated role", ErrForbidden)
	}

	entity, err := s.repository.GetEntity(ctx, id)
	if err != nil {
		return err
	}

	// Blob cleanup is best-effort; the record removal is what matters.
	s.content.DeleteURL(ctx, entity.ContentURL)
	s.content.DeleteURL(ctx, entity.CoverURL)

	if err := s.repository.DeleteEntity(ctx, id); err != nil {
		return &EntityError{EntityID: id, Kind: entity.Kind, Op: "delete", Err: err}
	}

	if err := s.eventSink.EntityDeleted(ctx, entity.Kind, id); err != nil {
		s.logger.Warn("entity deleted event failed", "kind", entity.Kind, "id", id, "error", err)
	}
	return nil
}

// Reads

func (s *service) GetEntity(ctx context.Context, id uuid.UUID) (*Entity, error) {
	return s.repository.GetEntity(ctx, id)
}

func (s *service) GetEntityBySlug(ctx context.Context, kind EntityKind, slug string, callerRole Role) (*Entity, error) {
	sp, ok := SpecFor(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}

	entity, err := s.repository.GetEntityBySlug(ctx, kind, strings.ToLower(slug))
	if err != nil {
		return nil, err
	}
	if !callerRole.Elevated() && !statusIn(entity.Status, sp.Public) {
		return nil, ErrNotFound
	}
	return entity, nil
}

func (s *service) ListEntities(ctx context.Context, req ListEntitiesRequest) (*EntityPage, error) {
	sp, ok := SpecFor(req.Kind)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, req.Kind)
	}

	query := PlanQuery(sp, req.Params, req.Role)

	items, err := s.repository.ListEntities(ctx, query)
	if err != nil {
		return nil, err
	}
	total, err := s.repository.CountEntities(ctx, query.Kind, query.Filter)
	if err != nil {
		return nil, err
	}

	page := &EntityPage{Items: items, TotalItems: total}
	if !query.Page.All {
		p := PaginationFor(query.Page, total)
		page.Pagination = &p
	}
	return page, nil
}

// Status lifecycle

func (s *service) SetStatus(ctx context.Context, id uuid.UUID, target Status, callerRole Role) (*Entity, error) {
	if !callerRole.Elevated() {
		return nil, fmt.Errorf("%w: status changes require an elevated role", ErrForbidden)
	}

	entity, err := s.repository.GetEntity(ctx, id)
	if err != nil {
		return nil, err
	}
	sp, ok := SpecFor(entity.Kind)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, entity.Kind)
	}

	if target == entity.Status {
		return entity, nil
	}
	if err := sp.CheckTransition(entity.Status, target); err != nil {
		return nil, err
	}

	firstPublish := applyStatus(sp, entity, target)
	entity.UpdatedAt = time.Now().UTC()
	if err := s.repository.UpdateEntity(ctx, entity); err != nil {
		return nil, &EntityError{EntityID: id, Kind: entity.Kind, Op: "set_status", Err: err}
	}
	if firstPublish {
		s.firePublished(ctx, entity)
	}
	return entity, nil
}

func (s *service) ToggleStatus(ctx context.Context, id uuid.UUID, callerRole Role) (*Entity, error) {
	if !callerRole.Elevated() {
		return nil, fmt.Errorf("%w: status changes require an elevated role", ErrForbidden)
	}

	entity, err := s.repository.GetEntity(ctx, id)
	if err != nil {
		return nil, err
	}
	sp, ok := SpecFor(entity.Kind)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, entity.Kind)
	}

	target, err := sp.ToggleTarget(entity.Status)
	if err != nil {
		return nil, err
	}

	firstPublish := applyStatus(sp, entity, target)
	entity.UpdatedAt = time.Now().UTC()
	if err := s.repository.UpdateEntity(ctx, entity); err != nil {
		return nil, &EntityError{EntityID: id, Kind: entity.Kind, Op: "toggle_status", Err: err}
	}
	if firstPublish {
		s.firePublished(ctx, entity)
	}
	return entity, nil
}

func (s *service) Archive(ctx context.Context, id uuid.UUID, callerRole Role) (*Entity, error) {
	if !callerRole.Elevated() {
		return nil, fmt.Errorf("%w: status changes require an elevated role", ErrForbidden)
	}

	entity, err := s.repository.GetEntity(ctx, id)
	if err != nil {
		return nil, err
	}
	sp, ok := SpecFor(entity.Kind)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, entity.Kind)
	}
	if sp.Terminal == "" {
		return nil, fmt.Errorf("%w: kind %s has no terminal state", ErrIllegalTransition, entity.Kind)
	}
	if entity.Status == sp.Terminal {
		return entity, nil
	}

	entity.Status = sp.Terminal
	entity.UpdatedAt = time.Now().UTC()
	if err := s.repository.UpdateEntity(ctx, entity); err != nil {
		return nil, &EntityError{EntityID: id, Kind: entity.Kind, Op: "archive", Err: err}
	}
	return entity, nil
}

// applyStatus moves the entity to target and stamps the publication instant
// on the first entry into the primary visible state. The stamp is never
// overwritten. Reports whether this was the first publication.
func applyStatus(sp KindSpec, entity *Entity, target Status) bool {
	firstPublish := target == sp.PrimaryStatus() && entity.PublishedAt == nil
	entity.Status = target
	if firstPublish {
		now := time.Now().UTC()
		entity.PublishedAt = &now
	}
	return firstPublish
}

// firePublished notifies the sink after a publication has been persisted.
func (s *service) firePublished(ctx context.Context, entity *Entity) {
	if err := s.eventSink.EntityPublished(ctx, entity); err != nil {
		s.logger.Warn("entity published event failed", "kind", entity.Kind, "id", entity.ID, "error", err)
	}
}

// Statistics

func (s *service) KindStatistics(ctx context.Context, kind EntityKind) (*StatusCounts, error) {
	if _, ok := SpecFor(kind); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	byStatus, err := s.repository.CountByStatus(ctx, kind)
	if err != nil {
		return nil, err
	}
	counts := &StatusCounts{Kind: kind, ByStatus: byStatus}
	for _, n := range byStatus {
		counts.Total += n
	}
	return counts, nil
}

// Order intake

func (s *service) SubmitOrder(ctx context.Context, req SubmitOrderRequest) (*Order, error) {
	fields := map[string]string{}
	if strings.TrimSpace(req.Name) == "" {
		fields["name"] = "name is required"
	}
	if !strings.Contains(req.Email, "@") {
		fields["email"] = "a valid email is required"
	}
	if len(fields) > 0 {
		return nil, NewValidationError(fields)
	}

	order := &Order{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.TrimSpace(req.Email),
		Phone:     strings.TrimSpace(req.Phone),
		Service:   strings.TrimSpace(req.Service),
		Message:   req.Message,
		Status:    OrderStatusNew,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repository.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if err := s.eventSink.OrderReceived(ctx, order); err != nil {
		s.logger.Warn("order received event failed", "order_id", order.ID, "error", err)
	}
	return order, nil
}

func (s *service) ListOrders(ctx context.Context, params url.Values, callerRole Role) (*OrderPage, error) {
	if !callerRole.Elevated() {
		return nil, fmt.Errorf("%w: listing orders requires an elevated role", ErrForbidden)
	}

	page := Page{Number: 1, Limit: 20}
	if n, err := strconv.Atoi(params.Get("page")); err == nil && n > 0 {
		page.Number = n
	}
	if n, err := strconv.Atoi(params.Get("limit")); err == nil && n > 0 {
		page.Limit = n
	}

	items, total, err := s.repository.ListOrders(ctx, page)
	if err != nil {
		return nil, err
	}
	p := PaginationFor(page, total)
	return &OrderPage{Items: items, Pagination: &p, TotalItems: total}, nil
}

func (s *service) MarkOrderHandled(ctx context.Context, id uuid.UUID, callerRole Role) (*Order, error) {
	if !callerRole.Elevated() {
		return nil, fmt.Errorf("%w: handling orders requires an elevated role", ErrForbidden)
	}

	order, err := s.repository.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status == OrderStatusHandled {
		return order, nil
	}
	order.Status = OrderStatusHandled
	if err := s.repository.UpdateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}
	return order, nil
}

// Helpers

// ensureSlug derives the slug for title and verifies uniqueness within the
// kind's collection. Collisions fail with ErrSlugConflict; the caller must
// pick a different title.
func (s *service) ensureSlug(ctx context.Context, kind EntityKind, title string, excludeID uuid.UUID) (string, error) {
	slug := Slugify(title)
	if slug == "" {
		return "", NewValidationError(map[string]string{"title": "title must contain at least one letter or digit"})
	}
	taken, err := s.repository.SlugExists(ctx, kind, slug, excludeID)
	if err != nil {
		return "", fmt.Errorf("check slug uniqueness: %w", err)
	}
	if taken {
		return "", fmt.Errorf("%w: %q", ErrSlugConflict, slug)
	}
	return slug, nil
}

func validateCreate(sp KindSpec, req CreateEntityRequest) error {
	fields := map[string]string{}
	if strings.TrimSpace(req.Title) == "" {
		fields["title"] = "title is required"
	}
	if sp.Kind == KindTestimonial && (req.Rating < 0 || req.Rating > 5) {
		fields["rating"] = "rating must be between 0 and 5"
	}
	if sp.BinaryAsset && req.File == nil && req.Content == "" {
		fields["file"] = "a file upload or content url is required"
	}
	if len(fields) > 0 {
		return NewValidationError(fields)
	}
	return nil
}

func statusIn(s Status, set []Status) bool {
	for _, candidate := range set {
		if candidate == s {
			return true
		}
	}
	return false
}
