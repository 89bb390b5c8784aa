package memory_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentops/simple-publish/pkg/simplepublish"
	"github.com/contentops/simple-publish/pkg/simplepublish/storage/memory"
)

func TestUploadDownloadDelete(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()

	require.NoError(t, backend.Upload(ctx, "article/a/body.md", strings.NewReader("hello")))

	reader, err := backend.Download(ctx, "article/a/body.md")
	require.NoError(t, err)
	defer reader.Close()
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, backend.Delete(ctx, "article/a/body.md"))
	_, err = backend.Download(ctx, "article/a/body.md")
	assert.ErrorIs(t, err, simplepublish.ErrNotFound)

	// Deleting an absent key succeeds.
	assert.NoError(t, backend.Delete(ctx, "article/a/body.md"))
}

func TestURLRoundTrip(t *testing.T) {
	backend := memory.New()

	url := backend.URL("article/a/body.md")
	assert.Equal(t, "memory://article/a/body.md", url)

	key, ok := backend.ResolveKey(url)
	require.True(t, ok)
	assert.Equal(t, "article/a/body.md", key)

	_, ok = backend.ResolveKey("https://elsewhere.example.com/x")
	assert.False(t, ok)

	_, ok = backend.ResolveKey("memory://")
	assert.False(t, ok)
}
