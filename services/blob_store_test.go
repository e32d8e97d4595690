package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormBlobStore(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormBlobStore(db, "blog-images", "https://api.example.com/")
	ctx := context.Background()

	path, err := store.Upload(ctx, "posts/1-abc", imageUpload())
	require.NoError(t, err)
	assert.Equal(t, "posts/1-abc", path)
	assert.Equal(t, "https://api.example.com/storage/blog-images/posts/1-abc", store.PublicURL(path))

	blob, err := store.Get(ctx, "blog-images", path)
	require.NoError(t, err)
	assert.Equal(t, "image/png", blob.ContentType)
	assert.Equal(t, int64(len(imageUpload().Data)), blob.Size)
	assert.Equal(t, Checksum(imageUpload().Data), blob.Checksum)
	assert.Equal(t, imageUpload().Data, blob.Data)

	_, err = store.Upload(ctx, "posts/1-abc", imageUpload())
	assert.True(t, errors.Is(err, ErrUpstream), "uploads never overwrite")

	_, err = store.Get(ctx, "other-bucket", path)
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, store.Remove(ctx, path))
	_, err = store.Get(ctx, "blog-images", path)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestChecksum(t *testing.T) {
	a := Checksum([]byte("hello"))
	assert.Len(t, a, 16)
	assert.Equal(t, a, Checksum([]byte("hello")))
	assert.NotEqual(t, a, Checksum([]byte("hello!")))
}

func TestMockBlobStore(t *testing.T) {
	var store BlobStore = MockBlobStore{}

	path, err := store.Upload(context.Background(), "posts/anything", imageUpload())
	require.NoError(t, err)
	assert.Equal(t, MockBlobPath, path)
	assert.Equal(t, MockBlobURL, store.PublicURL(path))
	assert.NoError(t, store.Remove(context.Background(), path))

	_, ok := store.(BlobReader)
	assert.False(t, ok, "mock blobs are not served")
}
