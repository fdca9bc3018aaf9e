// Package blob abstracts binary asset storage: store bytes under a key,
// fetch bytes by key, delete bytes by key. The engine never interprets
// key structure beyond generating it.
package blob

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get for unknown keys.
var ErrKeyNotFound = errors.New("blob key not found")

// Store is the engine's view of object storage.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
