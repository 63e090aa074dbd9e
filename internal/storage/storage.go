package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a blob does not exist for the given key.
var ErrNotFound = errors.New("blob not found")

// BlobStorage is the contract the KYC core needs from object storage: store a
// blob under an opaque key, get it back, check it exists. Content semantics
// live elsewhere.
type BlobStorage interface {
	Store(ctx context.Context, key, contentType string, data []byte) error
	Fetch(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}
