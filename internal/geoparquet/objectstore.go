package geoparquet

import (
	"context"
	"fmt"
	"io"
	"time"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/azureblob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"
	"gocloud.dev/gcerrors"
)

// ObjectMeta is what Head reports about a remote object (spec §6.3).
type ObjectMeta struct {
	Size         int64
	ETag         string
	LastModified time.Time
}

// ObjectStore is the object-store interface the reader's byte-range
// fetches are expressed against (spec §6.3). The reader never assumes
// a file system: a local-file reader is a thin adaptor over the same
// two methods, generalizing the teacher's BlobReader (internal/storage)
// into an explicit interface instead of one fixed concrete type.
type ObjectStore interface {
	Head(ctx context.Context, path string) (*ObjectMeta, error)
	GetRange(ctx context.Context, path string, offset, length int64) ([]byte, error)
}

// BlobObjectStore implements ObjectStore over a gocloud.dev/blob
// bucket, the way the teacher's BlobReader opens one bucket per
// reader (internal/storage/blob.go).
type BlobObjectStore struct {
	bucket *blob.Bucket
}

func OpenBlobObjectStore(ctx context.Context, bucketURL string) (*BlobObjectStore, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open bucket %s: %w", bucketURL, err)
	}
	return &BlobObjectStore{bucket: bucket}, nil
}

func (s *BlobObjectStore) Head(ctx context.Context, path string) (*ObjectMeta, error) {
	attrs, err := s.bucket.Attributes(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to get attributes for %s: %w", path, err)
	}
	return &ObjectMeta{Size: attrs.Size, ETag: attrs.ETag, LastModified: attrs.ModTime}, nil
}

func (s *BlobObjectStore) GetRange(ctx context.Context, path string, offset, length int64) ([]byte, error) {
	reader, err := s.bucket.NewRangeReader(ctx, path, offset, length, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open range reader for %s: %w", path, err)
	}
	defer reader.Close()
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read range for %s: %w", path, err)
	}
	return data, nil
}

func (s *BlobObjectStore) Close() error {
	if err := s.bucket.Close(); err != nil {
		if gcerrors.Code(err) == gcerrors.FailedPrecondition {
			return nil
		}
		return err
	}
	return nil
}

// ObjectStoreReader is the sync wrapper spec §5 requires: it drives
// ObjectStore.GetRange calls under io.ReaderAt/io.Seeker so the
// blocking parquet reader can read from any ObjectStore without
// knowing it isn't a local file.
type ObjectStoreReader struct {
	ctx    context.Context
	store  ObjectStore
	path   string
	size   int64
	offset int64
}

func NewObjectStoreReader(ctx context.Context, store ObjectStore, path string) (*ObjectStoreReader, error) {
	meta, err := store.Head(ctx, path)
	if err != nil {
		return nil, err
	}
	return &ObjectStoreReader{ctx: ctx, store: store, path: path, size: meta.Size}, nil
}

func (r *ObjectStoreReader) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekCurrent:
		offset = r.offset + offset
	case io.SeekEnd:
		offset = r.size + offset
	}
	if offset < 0 {
		return 0, fmt.Errorf("attempt to seek to a negative offset: %d", offset)
	}
	r.offset = offset
	return offset, nil
}

func (r *ObjectStoreReader) ReadAt(data []byte, offset int64) (int, error) {
	chunk, err := r.store.GetRange(r.ctx, r.path, offset, int64(len(data)))
	if err != nil {
		return 0, err
	}
	n := copy(data, chunk)
	if n < len(data) {
		return n, io.EOF
	}
	return n, nil
}

func (r *ObjectStoreReader) Read(data []byte) (int, error) {
	n, err := r.ReadAt(data, r.offset)
	r.offset += int64(n)
	return n, err
}
