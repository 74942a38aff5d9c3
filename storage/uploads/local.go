package uploads

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

type localStore struct {
	dir string
}

var _ core.FileStore = (*localStore)(nil)

// NewLocalStore stores files under dir on the local disk, the same directory
// the file server exposes at /uploads.
func NewLocalStore(dir string) (core.FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating %s", dir)
	}
	return &localStore{dir: dir}, nil
}

func (s *localStore) Save(_ context.Context, key string, src io.Reader) (string, error) {
	path := filepath.Join(s.dir, key)
	dst, err := os.Create(path)
	if err != nil {
		return "", errors.Wrapf(err, "creating %s", path)
	}
	defer func() { _ = dst.Close() }()

	if _, err = io.Copy(dst, src); err != nil {
		return "", errors.Wrapf(err, "writing %s", path)
	}
	return path, nil
}
