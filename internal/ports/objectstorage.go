package ports

import "context"

// ObjectStorage is the remote tier: an S3-compatible bucket addressed
// by full object key. Implementations must map a missing object to
// application.ErrNotFound so callers can distinguish absence from
// unavailability.
type ObjectStorage interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error

	// List returns all object keys under a prefix, relative to that
	// prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}
