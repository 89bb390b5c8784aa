package fs_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentops/simple-publish/pkg/simplepublish"
	"github.com/contentops/simple-publish/pkg/simplepublish/storage/fs"
)

func newBackend(t *testing.T) (*fs.Backend, string) {
	t.Helper()
	dir := t.TempDir()
	backend, err := fs.New(fs.Config{
		BaseDir:   dir,
		URLPrefix: "http://localhost:8080/uploads",
	})
	require.NoError(t, err)
	return backend, dir
}

func TestConfigValidation(t *testing.T) {
	_, err := fs.New(fs.Config{URLPrefix: "http://x"})
	assert.Error(t, err)

	_, err = fs.New(fs.Config{BaseDir: t.TempDir()})
	assert.Error(t, err)
}

func TestUploadDownloadDelete(t *testing.T) {
	ctx := context.Background()
	backend, dir := newBackend(t)

	require.NoError(t, backend.Upload(ctx, "article/a/body.md", strings.NewReader("content")))

	// Nested directories are created under the base dir.
	_, err := os.Stat(filepath.Join(dir, "article", "a", "body.md"))
	require.NoError(t, err)

	reader, err := backend.Download(ctx, "article/a/body.md")
	require.NoError(t, err)
	data, err := io.ReadAll(reader)
	require.NoError(t, reader.Close())
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))

	require.NoError(t, backend.Delete(ctx, "article/a/body.md"))
	_, err = backend.Download(ctx, "article/a/body.md")
	assert.ErrorIs(t, err, simplepublish.ErrNotFound)

	// Empty parents are pruned, absent keys succeed.
	_, err = os.Stat(filepath.Join(dir, "article"))
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, backend.Delete(ctx, "article/a/body.md"))
}

func TestURLRoundTrip(t *testing.T) {
	backend, _ := newBackend(t)

	url := backend.URL("article/a/body.md")
	assert.Equal(t, "http://localhost:8080/uploads/article/a/body.md", url)

	key, ok := backend.ResolveKey(url)
	require.True(t, ok)
	assert.Equal(t, "article/a/body.md", key)

	_, ok = backend.ResolveKey("http://other.example.com/uploads/article/a/body.md")
	assert.False(t, ok)
}
