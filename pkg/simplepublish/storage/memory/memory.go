package memory

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"

	"github.com/contentops/simple-publish/pkg/simplepublish"
)

const urlScheme = "memory://"

// Backend is an in-memory implementation of the simplepublish.BlobStore
// interface, used by tests and development setups.
type Backend struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// New creates a new in-memory storage backend
func New() *Backend {
	return &Backend{
		objects: make(map[string][]byte),
	}
}

var _ simplepublish.BlobStore = (*Backend)(nil)

// Upload stores content directly in memory
func (b *Backend) Upload(ctx context.Context, objectKey string, reader io.Reader) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.objects[objectKey] = data
	return nil
}

// Download reads content directly from memory
func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, exists := b.objects[objectKey]
	if !exists {
		return nil, simplepublish.ErrNotFound
	}

	return io.NopCloser(bytes.NewReader(data)), nil
}

// Delete removes content from memory. Absent keys are not an error.
func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.objects, objectKey)
	return nil
}

// URL returns the memory:// locator for an object key
func (b *Backend) URL(objectKey string) string {
	return urlScheme + objectKey
}

// ResolveKey reverses URL back to the object key
func (b *Backend) ResolveKey(rawURL string) (string, bool) {
	key, found := strings.CutPrefix(rawURL, urlScheme)
	if !found || key == "" {
		return "", false
	}
	return key, true
}

// Len reports the number of stored objects. Test helper.
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.objects)
}
