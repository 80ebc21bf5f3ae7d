package blobstore

import (
	"context"
	"errors"
)

// Downloader fetches a stored object by key.
type Downloader interface {
	Download(ctx context.Context, key string) ([]byte, error)
}

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrEmptyKey       = errors.New("object key is empty")
)
