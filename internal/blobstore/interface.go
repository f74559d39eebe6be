package blobstore

import (
	"context"
	"io"
)

// PutResult describes one persisted file.
type PutResult struct {
	Key       string
	SHA256    string
	SizeBytes int64
}

// BlobStore is the byte-storage abstraction used by the media service.
// Keys are slash-separated paths relative to the store root.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader) (PutResult, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
