// Package metadata persists small key/value settings that must survive
// restarts but never ride through the encrypted store itself: the encryption
// enabled flag, the KDF salt and the passphrase verifier.
package metadata

import "context"

// Repository is the storage contract for metadata key/value pairs.
type Repository interface {
	// Get returns the value for key, or (nil, nil) when absent.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set upserts the value for key.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key; deleting an absent key is a no-op.
	Delete(ctx context.Context, key string) error
	// Clear removes all metadata.
	Clear(ctx context.Context) error
}
