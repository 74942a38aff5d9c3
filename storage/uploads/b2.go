package uploads

import (
	"context"
	"io"

	"github.com/kurin/blazer/b2"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

type b2Store struct {
	bucket *b2.Bucket
}

var _ core.FileStore = (*b2Store)(nil)

// NewB2Store stores files in a Backblaze B2 bucket.
func NewB2Store(ctx context.Context, conf *core.Config) (core.FileStore, error) {
	client, err := b2.NewClient(ctx, conf.Uploads.B2Account, conf.Uploads.B2Key)
	if err != nil {
		return nil, errors.Wrap(err, "creating b2 client")
	}
	bucket, err := client.Bucket(ctx, conf.Uploads.B2Bucket)
	if err != nil {
		return nil, errors.Wrap(err, "getting b2 bucket")
	}
	return &b2Store{bucket: bucket}, nil
}

func (s *b2Store) Save(ctx context.Context, key string, src io.Reader) (string, error) {
	obj := s.bucket.Object(key)
	w := obj.NewWriter(ctx)

	if _, err := io.Copy(w, src); err != nil {
		_ = w.Close()
		return "", errors.Wrapf(err, "writing b2 object %s", key)
	}
	if err := w.Close(); err != nil {
		return "", errors.Wrapf(err, "closing b2 object %s", key)
	}
	return obj.URL(), nil
}
