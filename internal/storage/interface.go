package storage

import (
	"context"
	"io"
	"time"
)

// ObjectInfo describes one listed object.
type ObjectInfo struct {
	Key          string
	LastModified time.Time
	Size         int64
}

// ObjectStorage defines the interface for object storage operations.
// The result bucket is written by the external worker Lambdas; this service
// only lists and reads it.
type ObjectStorage interface {
	// List enumerates all objects under the given key prefix. An empty
	// prefix lists the whole bucket.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)

	// Download downloads an object from storage
	Download(ctx context.Context, key string) (io.ReadCloser, error)
}
