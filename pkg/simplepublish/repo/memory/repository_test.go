package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentops/simple-publish/pkg/simplepublish"
	"github.com/contentops/simple-publish/pkg/simplepublish/repo/memory"
)

func newEntity(kind simplepublish.EntityKind, title, slug string, status simplepublish.Status) *simplepublish.Entity {
	now := time.Now().UTC()
	return &simplepublish.Entity{
		ID:        uuid.New(),
		Kind:      kind,
		Title:     title,
		Slug:      slug,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestEntityCRUD(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()

	entity := newEntity(simplepublish.KindArticle, "First", "first", simplepublish.StatusDraft)
	require.NoError(t, repo.CreateEntity(ctx, entity))

	t.Run("get by id", func(t *testing.T) {
		got, err := repo.GetEntity(ctx, entity.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.Title, got.Title)
	})

	t.Run("stored copy is isolated", func(t *testing.T) {
		got, err := repo.GetEntity(ctx, entity.ID)
		require.NoError(t, err)
		got.Title = "mutated"

		again, err := repo.GetEntity(ctx, entity.ID)
		require.NoError(t, err)
		assert.Equal(t, "First", again.Title)
	})

	t.Run("get by slug is case-insensitive", func(t *testing.T) {
		got, err := repo.GetEntityBySlug(ctx, simplepublish.KindArticle, "FIRST")
		require.NoError(t, err)
		assert.Equal(t, entity.ID, got.ID)
	})

	t.Run("slug scoped to kind", func(t *testing.T) {
		_, err := repo.GetEntityBySlug(ctx, simplepublish.KindService, "first")
		assert.ErrorIs(t, err, simplepublish.ErrNotFound)
	})

	t.Run("update", func(t *testing.T) {
		entity.Summary = "updated"
		require.NoError(t, repo.UpdateEntity(ctx, entity))

		got, err := repo.GetEntity(ctx, entity.ID)
		require.NoError(t, err)
		assert.Equal(t, "updated", got.Summary)
	})

	t.Run("update unknown entity", func(t *testing.T) {
		missing := newEntity(simplepublish.KindArticle, "Ghost", "ghost", simplepublish.StatusDraft)
		assert.ErrorIs(t, repo.UpdateEntity(ctx, missing), simplepublish.ErrNotFound)
	})

	t.Run("soft delete hides the entity", func(t *testing.T) {
		require.NoError(t, repo.DeleteEntity(ctx, entity.ID))

		_, err := repo.GetEntity(ctx, entity.ID)
		assert.ErrorIs(t, err, simplepublish.ErrNotFound)
		_, err = repo.GetEntityBySlug(ctx, simplepublish.KindArticle, "first")
		assert.ErrorIs(t, err, simplepublish.ErrNotFound)

		assert.ErrorIs(t, repo.DeleteEntity(ctx, entity.ID), simplepublish.ErrNotFound)
	})
}

func TestSlugExists(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()

	entity := newEntity(simplepublish.KindArticle, "Taken", "taken", simplepublish.StatusDraft)
	require.NoError(t, repo.CreateEntity(ctx, entity))

	taken, err := repo.SlugExists(ctx, simplepublish.KindArticle, "TAKEN", uuid.Nil)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.SlugExists(ctx, simplepublish.KindArticle, "taken", entity.ID)
	require.NoError(t, err)
	assert.False(t, taken, "excluded id must not count")

	taken, err = repo.SlugExists(ctx, simplepublish.KindService, "taken", uuid.Nil)
	require.NoError(t, err)
	assert.False(t, taken, "slug uniqueness is per kind")
}

func TestListEntities(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	titles := []struct {
		title  string
		status simplepublish.Status
		views  int64
	}{
		{"Alpha", simplepublish.StatusPublished, 30},
		{"Bravo", simplepublish.StatusPublished, 10},
		{"Charlie", simplepublish.StatusDraft, 20},
		{"Delta", simplepublish.StatusPublished, 20},
	}
	for i, tt := range titles {
		entity := newEntity(simplepublish.KindArticle, tt.title, simplepublish.Slugify(tt.title), tt.status)
		entity.Views = tt.views
		entity.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, repo.CreateEntity(ctx, entity))
	}

	t.Run("status filter", func(t *testing.T) {
		items, err := repo.ListEntities(ctx, simplepublish.Query{
			Kind:   simplepublish.KindArticle,
			Filter: simplepublish.Filter{Statuses: []simplepublish.Status{simplepublish.StatusPublished}},
			Sort:   simplepublish.Sort{Key: "created_at"},
			Page:   simplepublish.Page{All: true},
		})
		require.NoError(t, err)
		require.Len(t, items, 3)
	})

	t.Run("views descending", func(t *testing.T) {
		items, err := repo.ListEntities(ctx, simplepublish.Query{
			Kind: simplepublish.KindArticle,
			Sort: simplepublish.Sort{Key: "views", Desc: true},
			Page: simplepublish.Page{All: true},
		})
		require.NoError(t, err)
		require.Len(t, items, 4)
		assert.Equal(t, "Alpha", items[0].Title)
		assert.Equal(t, int64(10), items[3].Views)
	})

	t.Run("title ascending", func(t *testing.T) {
		items, err := repo.ListEntities(ctx, simplepublish.Query{
			Kind: simplepublish.KindArticle,
			Sort: simplepublish.Sort{Key: "title"},
			Page: simplepublish.Page{All: true},
		})
		require.NoError(t, err)
		assert.Equal(t, "Alpha", items[0].Title)
		assert.Equal(t, "Delta", items[3].Title)
	})

	t.Run("pagination window", func(t *testing.T) {
		items, err := repo.ListEntities(ctx, simplepublish.Query{
			Kind: simplepublish.KindArticle,
			Sort: simplepublish.Sort{Key: "title"},
			Page: simplepublish.Page{Number: 2, Limit: 3},
		})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "Delta", items[0].Title)
	})

	t.Run("offset beyond range is empty", func(t *testing.T) {
		items, err := repo.ListEntities(ctx, simplepublish.Query{
			Kind: simplepublish.KindArticle,
			Sort: simplepublish.Sort{Key: "title"},
			Page: simplepublish.Page{Number: 9, Limit: 10},
		})
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("search over title", func(t *testing.T) {
		items, err := repo.ListEntities(ctx, simplepublish.Query{
			Kind: simplepublish.KindArticle,
			Filter: simplepublish.Filter{
				Search:       "brav",
				SearchFields: []string{"title"},
			},
			Sort: simplepublish.Sort{Key: "title"},
			Page: simplepublish.Page{All: true},
		})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "Bravo", items[0].Title)
	})

	t.Run("count matches filter", func(t *testing.T) {
		count, err := repo.CountEntities(ctx, simplepublish.KindArticle, simplepublish.Filter{
			Statuses: []simplepublish.Status{simplepublish.StatusDraft},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("count by status", func(t *testing.T) {
		counts, err := repo.CountByStatus(ctx, simplepublish.KindArticle)
		require.NoError(t, err)
		assert.Equal(t, int64(3), counts[simplepublish.StatusPublished])
		assert.Equal(t, int64(1), counts[simplepublish.StatusDraft])
	})
}

func TestOrders(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		order := &simplepublish.Order{
			ID:        uuid.New(),
			Name:      "Customer",
			Email:     "customer@example.com",
			Status:    simplepublish.OrderStatusNew,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.CreateOrder(ctx, order))
		ids = append(ids, order.ID)
	}

	t.Run("list newest first", func(t *testing.T) {
		orders, total, err := repo.ListOrders(ctx, simplepublish.Page{Number: 1, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, orders, 3)
		assert.Equal(t, ids[2], orders[0].ID)
	})

	t.Run("paginated", func(t *testing.T) {
		orders, total, err := repo.ListOrders(ctx, simplepublish.Page{Number: 2, Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, orders, 1)
		assert.Equal(t, ids[0], orders[0].ID)
	})

	t.Run("update status", func(t *testing.T) {
		order, err := repo.GetOrder(ctx, ids[0])
		require.NoError(t, err)
		order.Status = simplepublish.OrderStatusHandled
		require.NoError(t, repo.UpdateOrder(ctx, order))

		got, err := repo.GetOrder(ctx, ids[0])
		require.NoError(t, err)
		assert.Equal(t, simplepublish.OrderStatusHandled, got.Status)
	})

	t.Run("unknown order", func(t *testing.T) {
		_, err := repo.GetOrder(ctx, uuid.New())
		assert.ErrorIs(t, err, simplepublish.ErrOrderNotFound)
	})
}
