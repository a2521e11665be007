package cache

import "context"

// BlobStore is a minimal key-value contract for opaque string blobs.
// The sermon repository keeps the whole collection under a single key,
// so this is all the persistence surface it needs.
type BlobStore interface {
	// Get returns the value for key. The second return reports whether
	// the key exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key string, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
