// Package collections persists named record collections: one row of opaque
// text per logical key, plus a flag marking whether the text is an encrypted
// blob or plaintext-serialized data. The two forms are never stored
// simultaneously for one key.
package collections

import "context"

// Row is one stored collection.
type Row struct {
	Key       string
	Value     string
	Encrypted bool
}

// Repository is the storage contract for named collections.
type Repository interface {
	// Get returns the stored row for key, or (nil, nil) when absent.
	Get(ctx context.Context, key string) (*Row, error)
	// Set upserts the value and encrypted flag for key.
	Set(ctx context.Context, key, value string, encrypted bool) error
	// Delete removes the row for key; deleting an absent key is a no-op.
	Delete(ctx context.Context, key string) error
	// Keys lists all stored collection keys.
	Keys(ctx context.Context) ([]string, error)
}
