package storage

import (
	"context"
	"errors"
)

// DefaultKey is the fixed key under which the application state lives.
const DefaultKey = "communityVoiceData"

// ErrClosed is returned by operations on a closed backend.
var ErrClosed = errors.New("storage: backend closed")

// Backend loads and saves one opaque blob per key.
type Backend interface {
	// Load returns the blob stored under key. ok is false when nothing has
	// been saved yet; that is not an error.
	Load(ctx context.Context, key string) (blob []byte, ok bool, err error)

	// Save replaces the blob stored under key.
	Save(ctx context.Context, key string, blob []byte) error
}
