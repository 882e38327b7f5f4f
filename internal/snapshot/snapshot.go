package snapshot

import (
	"context"
	"io"
)

// Store keeps point-in-time copies of exported data.
type Store interface {
	Save(ctx context.Context, prefix, contentType string, r io.Reader) (key string, err error)
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, key string) error
	// List returns the keys saved under prefix, oldest first.
	List(ctx context.Context, prefix string) ([]string, error)
}
