// Package storage mirrors the application snapshot into a key-value medium.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when nothing is stored under the key
var ErrNotFound = errors.New("storage: key not found")

// ErrCorruptSnapshot wraps a stored blob that could be read but not decoded
var ErrCorruptSnapshot = errors.New("storage: corrupt snapshot")

// Adapter is the opaque get/set capability the store persists through.
// Set is a total overwrite of whatever the key held before.
type Adapter interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, blob []byte) error
	Close() error
}
