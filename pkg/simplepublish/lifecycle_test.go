package simplepublish_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentops/simple-publish/pkg/simplepublish"
)

func specFor(t *testing.T, kind simplepublish.EntityKind) simplepublish.KindSpec {
	t.Helper()
	sp, ok := simplepublish.SpecFor(kind)
	require.True(t, ok)
	return sp
}

func TestToggleTarget(t *testing.T) {
	article := specFor(t, simplepublish.KindArticle)
	service := specFor(t, simplepublish.KindService)

	t.Run("draft article toggles to published", func(t *testing.T) {
		target, err := article.ToggleTarget(simplepublish.StatusDraft)
		require.NoError(t, err)
		assert.Equal(t, simplepublish.StatusPublished, target)
	})

	t.Run("published article toggles back to draft", func(t *testing.T) {
		target, err := article.ToggleTarget(simplepublish.StatusPublished)
		require.NoError(t, err)
		assert.Equal(t, simplepublish.StatusDraft, target)
	})

	t.Run("archived article cannot toggle", func(t *testing.T) {
		_, err := article.ToggleTarget(simplepublish.StatusArchived)
		assert.ErrorIs(t, err, simplepublish.ErrIllegalTransition)
	})

	t.Run("draft service toggles to live", func(t *testing.T) {
		target, err := service.ToggleTarget(simplepublish.StatusDraft)
		require.NoError(t, err)
		assert.Equal(t, simplepublish.StatusLive, target)
	})

	t.Run("service side states cannot toggle", func(t *testing.T) {
		for _, status := range []simplepublish.Status{simplepublish.StatusInactive, simplepublish.StatusComingSoon} {
			_, err := service.ToggleTarget(status)
			assert.ErrorIs(t, err, simplepublish.ErrIllegalTransition)
		}
	})

	t.Run("unknown status fails", func(t *testing.T) {
		_, err := article.ToggleTarget(simplepublish.Status("bogus"))
		assert.ErrorIs(t, err, simplepublish.ErrIllegalTransition)
	})
}

func TestCheckTransition(t *testing.T) {
	article := specFor(t, simplepublish.KindArticle)
	service := specFor(t, simplepublish.KindService)

	tests := []struct {
		name    string
		spec    simplepublish.KindSpec
		from    simplepublish.Status
		to      simplepublish.Status
		wantErr bool
	}{
		{"draft to published", article, simplepublish.StatusDraft, simplepublish.StatusPublished, false},
		{"published to archived", article, simplepublish.StatusPublished, simplepublish.StatusArchived, false},
		{"draft straight to archived", article, simplepublish.StatusDraft, simplepublish.StatusArchived, false},
		{"archived is terminal", article, simplepublish.StatusArchived, simplepublish.StatusDraft, true},
		{"archived to archived is allowed", article, simplepublish.StatusArchived, simplepublish.StatusArchived, false},
		{"status outside the kind enum", article, simplepublish.StatusDraft, simplepublish.StatusLive, true},
		{"live to inactive side state", service, simplepublish.StatusLive, simplepublish.StatusInactive, false},
		{"inactive back to live", service, simplepublish.StatusInactive, simplepublish.StatusLive, false},
		{"service has no archived", service, simplepublish.StatusLive, simplepublish.StatusArchived, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.CheckTransition(tt.from, tt.to)
			if tt.wantErr {
				assert.ErrorIs(t, err, simplepublish.ErrIllegalTransition)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
