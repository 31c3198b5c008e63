// Package storage defines the sink contract for persisting extracted key
// sets. Concrete engines live in subpackages (sqlite, postgres); callers
// depend only on Repository so engines stay swappable.
package storage

import "context"

// Repository persists keys into a single-column table. Implementations must
// tolerate keys that already exist in the table: inserting a duplicate is a
// no-op, not an error, so repeated loads of the same lexicon converge.
type Repository interface {
	// EnsureTable creates the key table when it does not exist.
	EnsureTable(ctx context.Context) error

	// InsertKeys writes a batch of keys and returns the number of rows
	// actually added (keys already present don't count).
	InsertKeys(ctx context.Context, keys []string) (int64, error)

	// Close releases the underlying connections.
	Close()
}
