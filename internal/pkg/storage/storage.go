package storage

import (
	"context"
	"io"
	"time"
)

// BlobStorage stores verification photos. Refs returned by Upload are
// opaque to the rest of the system and are persisted verbatim on the
// shift record. Blobs older than the retention window are purged by
// the retention sweeper, so readers must tolerate missing blobs.
type BlobStorage interface {
	// Upload stores a blob and returns its opaque ref
	Upload(ctx context.Context, blob io.Reader, ref string, contentType string) (string, error)

	// Delete removes a blob; deleting a missing blob is not an error
	Delete(ctx context.Context, ref string) error

	// GetURL generates a public/presigned URL for a stored ref
	GetURL(ctx context.Context, ref string, expiry time.Duration) (string, error)

	// Exists checks whether the blob is still retained
	Exists(ctx context.Context, ref string) (bool, error)
}
