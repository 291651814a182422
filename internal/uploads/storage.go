package uploads

import (
	"context"
	"io"
	"time"
)

// StorageDriver stores evidence binaries (officer photos, lab report scans).
// Content types live on the EvidenceFile metadata row, not in the driver.
type StorageDriver interface {
	// Save writes the content under the given key.
	Save(ctx context.Context, key string, body io.Reader, contentType string) error

	// Open returns a reader for the stored content.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the content. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// URL returns a link to the content; expires applies to presigned URLs only.
	URL(ctx context.Context, key string, expires time.Duration) (string, error)
}
