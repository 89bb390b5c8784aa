package simplepublish

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ContentStore adapts a BlobStore to the entity content lifecycle: it
// publishes externally visible URLs for uploaded bodies and can reverse a
// stored URL back to the deletable object key. Deletes are best-effort:
// failures are logged and swallowed so cleanup never blocks the primary
// write path.
type ContentStore struct {
	backend string
	store   BlobStore
	logger  *slog.Logger
}

// NewContentStore wraps the named blob backend.
func NewContentStore(backend string, store BlobStore, logger *slog.Logger) *ContentStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContentStore{backend: backend, store: store, logger: logger}
}

// UploadText stores a raw text body and returns its external URL.
// Any transport or provider error surfaces as ErrUploadFailed.
func (cs *ContentStore) UploadText(ctx context.Context, objectKey, content string) (string, error) {
	return cs.UploadBlob(ctx, objectKey, strings.NewReader(content))
}

// UploadBlob stores a binary body and returns its external URL.
func (cs *ContentStore) UploadBlob(ctx context.Context, objectKey string, reader io.Reader) (string, error) {
	if err := cs.store.Upload(ctx, objectKey, reader); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, &StorageError{
			Backend: cs.backend,
			Key:     objectKey,
			Op:      "upload",
			Err:     err,
		})
	}
	return cs.store.URL(objectKey), nil
}

// DeleteURL removes the blob behind a stored locator, best-effort. URLs not
// produced by this backend (caller-supplied external references) are left
// alone.
func (cs *ContentStore) DeleteURL(ctx context.Context, rawURL string) {
	if rawURL == "" {
		return
	}
	objectKey, ok := cs.store.ResolveKey(rawURL)
	if !ok {
		return
	}
	if err := cs.store.Delete(ctx, objectKey); err != nil {
		cs.logger.Warn("blob cleanup failed",
			"backend", cs.backend,
			"object_key", objectKey,
			"error", err)
	}
}

// IsExternalURL reports whether a caller-supplied content value already
// references an external location (leading scheme) and should be stored
// as-is instead of uploaded.
func IsExternalURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	return err == nil && u.Scheme != "" && u.Host != ""
}

// contentObjectKey builds the object key for an entity body. The trailing
// uuid keeps superseded blobs addressable until their delete completes.
func contentObjectKey(kind EntityKind, entityID uuid.UUID, ext string) string {
	if ext == "" {
		ext = ".md"
	}
	return path.Join(string(kind), entityID.String(), uuid.NewString()+ext)
}
