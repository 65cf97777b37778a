// Package storage persists application state as whole JSON documents under
// string keys. Every mutation re-serializes the full document; there is no
// incremental persistence.
package storage

import "context"

// Storage keys. Key StateKey holds the transactional/profile document,
// ColorKey the serialized category color cache. The two are independent.
const (
	StateKey = "meuSaldoData"
	ColorKey = "meuSaldoColors"
)

// DocumentStore is a string key-value store for JSON documents.
type DocumentStore interface {
	// Get returns the document under key, reporting whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Put stores the document under key, replacing any previous value.
	Put(ctx context.Context, key, value string) error

	// Delete removes the document under key. Deleting a missing key is
	// not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}
