// Package storage abstracts where session upload bytes live. The session
// manager only sees opaque blobs keyed by (sessionID, name), so the backing
// medium (local disk, S3) is an assembly choice.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a blob or session container does not exist.
var ErrNotFound = errors.New("blob not found")

// Store persists raw file bytes per session. A session's blobs are created,
// listed and destroyed together; no other session can reach them.
type Store interface {
	// Put writes data under (sessionID, name), creating the session
	// container if needed. Overwrites silently.
	Put(ctx context.Context, sessionID, name string, data []byte) error

	// Get reads one blob. Returns ErrNotFound if it does not exist.
	Get(ctx context.Context, sessionID, name string) ([]byte, error)

	// List returns the blob names of a session in lexical order.
	// Returns ErrNotFound if the session container does not exist.
	List(ctx context.Context, sessionID string) ([]string, error)

	// DeleteSession removes the session container and every blob in it.
	// Deleting an absent session is a no-op.
	DeleteSession(ctx context.Context, sessionID string) error
}
