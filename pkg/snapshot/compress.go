package snapshot

import (
	"context"

	"github.com/klauspost/compress/zstd"

	"github.com/vango-dev/morph/internal/errors"
)

var (
	encoder, _ = zstd.NewWriter(nil)
	decoder, _ = zstd.NewReader(nil)
)

// CompressedStore stores zstd-compressed snapshots in an inner Store.
type CompressedStore struct {
	inner Store
}

// Compressed wraps inner so that snapshots are compressed at rest.
func Compressed(inner Store) *CompressedStore {
	return &CompressedStore{inner: inner}
}

// Put implements Store.
func (s *CompressedStore) Put(ctx context.Context, id string, data []byte) error {
	return s.inner.Put(ctx, id, encoder.EncodeAll(data, nil))
}

// Get implements Store.
func (s *CompressedStore) Get(ctx context.Context, id string) ([]byte, error) {
	raw, err := s.inner.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	data, err := decoder.DecodeAll(raw, nil)
	if err != nil {
		return nil, errors.New("S002").WithDetailf("decompress %q", id).Wrap(err)
	}
	return data, nil
}

// Delete implements Store.
func (s *CompressedStore) Delete(ctx context.Context, id string) error {
	return s.inner.Delete(ctx, id)
}

// List implements Store.
func (s *CompressedStore) List(ctx context.Context) ([]string, error) {
	return s.inner.List(ctx)
}
