package geoparquet_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/planetlabs/gpq/internal/geoparquet"
	"github.com/stretchr/testify/require"
)

func TestBlobObjectStoreHeadAndGetRange(t *testing.T) {
	dir := t.TempDir()
	content := []byte("0123456789")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.bin"), content, 0o644))

	ctx := context.Background()
	store, err := geoparquet.OpenBlobObjectStore(ctx, "file://"+filepath.ToSlash(dir))
	require.NoError(t, err)
	defer store.Close()

	meta, err := store.Head(ctx, "data.bin")
	require.NoError(t, err)
	require.Equal(t, int64(len(content)), meta.Size)

	chunk, err := store.GetRange(ctx, "data.bin", 2, 4)
	require.NoError(t, err)
	require.Equal(t, []byte("2345"), chunk)
}

func TestObjectStoreReaderSeekAndRead(t *testing.T) {
	dir := t.TempDir()
	content := []byte("abcdefghij")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.bin"), content, 0o644))

	ctx := context.Background()
	store, err := geoparquet.OpenBlobObjectStore(ctx, "file://"+filepath.ToSlash(dir))
	require.NoError(t, err)
	defer store.Close()

	reader, err := geoparquet.NewObjectStoreReader(ctx, store, "data.bin")
	require.NoError(t, err)

	buf := make([]byte, 4)
	n, err := reader.ReadAt(buf, 3)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Equal(t, []byte("defg"), buf)

	offset, err := reader.Seek(2, 0)
	require.NoError(t, err)
	require.Equal(t, int64(2), offset)

	out := make([]byte, 3)
	n, err = reader.Read(out)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, []byte("cde"), out)
}
