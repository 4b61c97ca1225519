// Package store defines the minimal interface to the external
// content-addressed store (IPFS) that the rest of the system treats as
// opaque: cat(hash, timeout) -> bytes, add(bytes) -> hash.
package store

import "context"

// Store is the content-addressed store the publisher writes to and the
// server/downloader read from.
type Store interface {
	// Cat returns the content addressed by hash, or a wrapped
	// subfileerr.ErrTimeout / ErrNotFound / ErrStore on failure. ctx governs
	// the request; callers are expected to bound it with a timeout (the
	// reference client defaults to 10s, see WithCatTimeout).
	Cat(ctx context.Context, hash string) ([]byte, error)

	// Add uploads data and returns its assigned content hash.
	Add(ctx context.Context, data []byte) (string, error)
}
