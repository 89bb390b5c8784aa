package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/contentops/simple-publish/pkg/simplepublish"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements simplepublish.Repository using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// handlePostgresError maps low-level driver errors onto domain errors.
// The unique index on (kind, slug) backs the slug invariant.
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			if strings.Contains(pgErr.ConstraintName, "slug") {
				return simplepublish.ErrSlugConflict
			}
			return fmt.Errorf("duplicate entry in %s", operation)
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return simplepublish.ErrNotFound
	}
	return fmt.Errorf("database error in %s: %w", operation, err)
}

const entityColumns = `id, kind, title, slug, summary, content_url, cover_url,
       rating, views, status, published_at, created_at, updated_at`

func scanEntity(row pgx.Row) (*simplepublish.Entity, error) {
	var entity simplepublish.Entity
	err := row.Scan(
		&entity.ID, &entity.Kind, &entity.Title, &entity.Slug, &entity.Summary,
		&entity.ContentURL, &entity.CoverURL, &entity.Rating, &entity.Views,
		&entity.Status, &entity.PublishedAt, &entity.CreatedAt, &entity.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

// Entity operations

func (r *Repository) CreateEntity(ctx context.Context, entity *simplepublish.Entity) error {
	query := `
		INSERT INTO entity (
			id, kind, title, slug, summary, content_url, cover_url,
			rating, views, status, published_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.db.Exec(ctx, query,
		entity.ID, entity.Kind, entity.Title, entity.Slug, entity.Summary,
		entity.ContentURL, entity.CoverURL, entity.Rating, entity.Views,
		entity.Status, entity.PublishedAt, entity.CreatedAt, entity.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("create entity", err)
	}
	return nil
}

func (r *Repository) GetEntity(ctx context.Context, id uuid.UUID) (*simplepublish.Entity, error) {
	query := `SELECT ` + entityColumns + ` FROM entity WHERE id = $1 AND deleted_at IS NULL`

	entity, err := scanEntity(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simplepublish.ErrNotFound
		}
		return nil, err
	}
	return entity, nil
}

func (r *Repository) GetEntityBySlug(ctx context.Context, kind simplepublish.EntityKind, slug string) (*simplepublish.Entity, error) {
	query := `SELECT ` + entityColumns + `
        FROM entity WHERE kind = $1 AND lower(slug) = lower($2) AND deleted_at IS NULL`

	entity, err := scanEntity(r.db.QueryRow(ctx, query, kind, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simplepublish.ErrNotFound
		}
		return nil, err
	}
	return entity, nil
}

func (r *Repository) UpdateEntity(ctx context.Context, entity *simplepublish.Entity) error {
	query := `
		UPDATE entity SET
			title = $2, slug = $3, summary = $4, content_url = $5, cover_url = $6,
			rating = $7, views = $8, status = $9, published_at = $10, updated_at = $11
		WHERE id = $1 AND deleted_at IS NULL`

	tag, err := r.db.Exec(ctx, query,
		entity.ID, entity.Title, entity.Slug, entity.Summary, entity.ContentURL,
		entity.CoverURL, entity.Rating, entity.Views, entity.Status,
		entity.PublishedAt, entity.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("update entity", err)
	}
	if tag.RowsAffected() == 0 {
		return simplepublish.ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteEntity(ctx context.Context, id uuid.UUID) error {
	// Soft delete, matching the repository convention everywhere else.
	query := `UPDATE entity SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return r.handlePostgresError("delete entity", err)
	}
	if tag.RowsAffected() == 0 {
		return simplepublish.ErrNotFound
	}
	return nil
}

func (r *Repository) ListEntities(ctx context.Context, query simplepublish.Query) ([]*simplepublish.Entity, error) {
	where, args := buildWhere(query.Kind, query.Filter)

	sql := `SELECT ` + entityColumns + ` FROM entity ` + where + ` ORDER BY ` + orderClause(query.Sort)
	if !query.Page.All {
		sql += fmt.Sprintf(" LIMIT %d OFFSET %d", query.Page.Limit, query.Page.Offset())
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, r.handlePostgresError("list entities", err)
	}
	defer rows.Close()

	var entities []*simplepublish.Entity
	for rows.Next() {
		entity, err := scanEntity(rows)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, rows.Err()
}

func (r *Repository) CountEntities(ctx context.Context, kind simplepublish.EntityKind, filter simplepublish.Filter) (int64, error) {
	where, args := buildWhere(kind, filter)

	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM entity `+where, args...).Scan(&count); err != nil {
		return 0, r.handlePostgresError("count entities", err)
	}
	return count, nil
}

func (r *Repository) SlugExists(ctx context.Context, kind simplepublish.EntityKind, slug string, excludeID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM entity
			WHERE kind = $1 AND lower(slug) = lower($2) AND id != $3 AND deleted_at IS NULL
		)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, kind, slug, excludeID).Scan(&exists); err != nil {
		return false, r.handlePostgresError("check slug", err)
	}
	return exists, nil
}

func (r *Repository) CountByStatus(ctx context.Context, kind simplepublish.EntityKind) (map[simplepublish.Status]int64, error) {
	query := `SELECT status, COUNT(*) FROM entity WHERE kind = $1 AND deleted_at IS NULL GROUP BY status`

	rows, err := r.db.Query(ctx, query, kind)
	if err != nil {
		return nil, r.handlePostgresError("count by status", err)
	}
	defer rows.Close()

	counts := make(map[simplepublish.Status]int64)
	for rows.Next() {
		var status simplepublish.Status
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// buildWhere assembles the WHERE clause from the planner's typed filter.
// Only planner-produced values reach this point; sort keys are whitelisted
// separately in orderClause.
func buildWhere(kind simplepublish.EntityKind, filter simplepublish.Filter) (string, []interface{}) {
	clauses := []string{"kind = $1", "deleted_at IS NULL"}
	args := []interface{}{kind}

	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, "status IN ("+strings.Join(placeholders, ", ")+")")
	}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		arg := fmt.Sprintf("$%d", len(args))
		var matches []string
		for _, field := range filter.SearchFields {
			switch field {
			case "title", "summary", "slug":
				matches = append(matches, field+" ILIKE "+arg)
			}
		}
		if len(matches) > 0 {
			clauses = append(clauses, "("+strings.Join(matches, " OR ")+")")
		}
	}

	return "WHERE " + strings.Join(clauses, " AND "), args
}

func orderClause(s simplepublish.Sort) string {
	column := "created_at"
	switch s.Key {
	case "title", "rating", "views", "published_at", "created_at", "updated_at":
		column = s.Key
	}
	if s.Desc {
		return column + " DESC"
	}
	return column + " ASC"
}

// Order operations

func (r *Repository) CreateOrder(ctx context.Context, order *simplepublish.Order) error {
	query := `
		INSERT INTO intake_order (id, name, email, phone, service, message, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(ctx, query,
		order.ID, order.Name, order.Email, order.Phone, order.Service,
		order.Message, order.Status, order.CreatedAt)
	if err != nil {
		return r.handlePostgresError("create order", err)
	}
	return nil
}

func (r *Repository) GetOrder(ctx context.Context, id uuid.UUID) (*simplepublish.Order, error) {
	query := `SELECT id, name, email, phone, service, message, status, created_at
        FROM intake_order WHERE id = $1`

	var order simplepublish.Order
	err := r.db.QueryRow(ctx, query, id).Scan(
		&order.ID, &order.Name, &order.Email, &order.Phone, &order.Service,
		&order.Message, &order.Status, &order.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simplepublish.ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *Repository) UpdateOrder(ctx context.Context, order *simplepublish.Order) error {
	query := `UPDATE intake_order SET status = $2 WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, order.ID, order.Status)
	if err != nil {
		return r.handlePostgresError("update order", err)
	}
	if tag.RowsAffected() == 0 {
		return simplepublish.ErrOrderNotFound
	}
	return nil
}

func (r *Repository) ListOrders(ctx context.Context, page simplepublish.Page) ([]*simplepublish.Order, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM intake_order`).Scan(&total); err != nil {
		return nil, 0, r.handlePostgresError("count orders", err)
	}

	query := fmt.Sprintf(`SELECT id, name, email, phone, service, message, status, created_at
        FROM intake_order ORDER BY created_at DESC LIMIT %d OFFSET %d`, page.Limit, page.Offset())

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, 0, r.handlePostgresError("list orders", err)
	}
	defer rows.Close()

	var orders []*simplepublish.Order
	for rows.Next() {
		var order simplepublish.Order
		if err := rows.Scan(
			&order.ID, &order.Name, &order.Email, &order.Phone, &order.Service,
			&order.Message, &order.Status, &order.CreatedAt); err != nil {
			return nil, 0, err
		}
		orders = append(orders, &order)
	}
	return orders, total, rows.Err()
}
