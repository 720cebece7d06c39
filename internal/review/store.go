package review

import "context"

// StateStore persists one opaque JSON blob per namespace. There is no
// caching in front of it: every Load and Save round-trips the backing
// store.
//
// Load returns (nil, nil) when the namespace has never been written.
// Save overwrites unconditionally. Concurrent writers to the same
// namespace race last-writer-wins; with a single user and rare writes
// that is an accepted limitation of the design, not something the
// backends try to paper over.
type StateStore interface {
	Load(ctx context.Context, namespace string) ([]byte, error)
	Save(ctx context.Context, namespace string, blob []byte) error
}
