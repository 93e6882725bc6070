package storage

import (
	"context"
	"io"
	"time"
)

// BlobStore is the video-bytes collaborator. The engine stores only the opaque
// reference returned by Upload; it never persists bytes itself.
type BlobStore interface {
	// Upload streams the object and returns its canonical reference.
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, reference string) error
	// TemporaryURL returns a time-limited read URL for the reference.
	TemporaryURL(ctx context.Context, reference string, ttl time.Duration) (string, error)
}
