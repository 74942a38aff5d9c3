package core

import (
	"context"
	"io"
)

// FileStore persists uploaded files under a backend-specific location.
// Writing the same key twice overwrites the earlier content; last write wins.
type FileStore interface {
	Save(ctx context.Context, key string, src io.Reader) (path string, err error)
}
