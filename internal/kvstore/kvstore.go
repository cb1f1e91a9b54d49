// Package kvstore provides the synchronous string key-value substrate the
// period store persists into. Values are opaque serialized blobs; encoding
// and decode-failure tolerance live with the callers.
package kvstore

import "context"

type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value under key, replacing any prior value.
	Set(ctx context.Context, key string, value string) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
	// Clear deletes every key in the store.
	Clear(ctx context.Context) error
	// Keys lists all stored keys in unspecified order.
	Keys(ctx context.Context) ([]string, error)
}
