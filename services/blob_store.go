package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"

	"inkwell/models"

	"github.com/cespare/xxhash/v2"
	"gorm.io/gorm"
)

// Upload is an uploaded file as received from the client.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// BlobStore keeps uploaded images and hands out their public URLs.
type BlobStore interface {
	Upload(ctx context.Context, path string, upload *Upload) (string, error)
	PublicURL(path string) string
	Remove(ctx context.Context, path string) error
}

type GormBlobStore struct {
	db      *gorm.DB
	bucket  string
	baseURL string
}

func NewGormBlobStore(db *gorm.DB, bucket, baseURL string) *GormBlobStore {
	return &GormBlobStore{db: db, bucket: bucket, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *GormBlobStore) Bucket() string {
	return s.bucket
}

// Upload never overwrites: a second upload to the same path fails.
func (s *GormBlobStore) Upload(ctx context.Context, path string, upload *Upload) (string, error) {
	blob := models.Blob{
		Bucket:      s.bucket,
		Path:        path,
		ContentType: upload.ContentType,
		Size:        int64(len(upload.Data)),
		Checksum:    Checksum(upload.Data),
		Data:        upload.Data,
	}
	if err := s.db.WithContext(ctx).Create(&blob).Error; err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("%w: blob %s already exists", ErrUpstream, path)
		}
		return "", fmt.Errorf("%w: upload %s: %v", ErrUpstream, path, err)
	}
	return blob.Path, nil
}

func (s *GormBlobStore) PublicURL(path string) string {
	return fmt.Sprintf("%s/storage/%s/%s", s.baseURL, url.PathEscape(s.bucket), path)
}

func (s *GormBlobStore) Remove(ctx context.Context, path string) error {
	err := s.db.WithContext(ctx).
		Where("bucket = ? AND path = ?", s.bucket, path).
		Delete(&models.Blob{}).Error
	if err != nil {
		return fmt.Errorf("%w: remove %s: %v", ErrUpstream, path, err)
	}
	return nil
}

func (s *GormBlobStore) Get(ctx context.Context, bucket, path string) (*models.Blob, error) {
	var blob models.Blob
	err := s.db.WithContext(ctx).
		Where("bucket = ? AND path = ?", bucket, path).
		Take(&blob).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: blob %s/%s", ErrNotFound, bucket, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get blob: %v", ErrUpstream, err)
	}
	return &blob, nil
}

// discardBlob removes a blob whose row write failed. A failed removal leaves
// an orphan, which is logged with its path for later cleanup.
func discardBlob(ctx context.Context, blobs BlobStore, path string, cause error) {
	log.Printf("Row write failed after uploading %s: %v", path, cause)
	if err := blobs.Remove(context.WithoutCancel(ctx), path); err != nil {
		log.Printf("ORPHANED BLOB %s: cleanup failed: %v", path, err)
	}
}

// Checksum is the hex xxhash of data, used as the blob's ETag.
func Checksum(data []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}

const (
	MockBlobPath = "mock-path"
	MockBlobURL  = "https://example.com/mock-image.jpg"
)

// MockBlobStore accepts every upload without storing anything.
type MockBlobStore struct{}

func (MockBlobStore) Upload(context.Context, string, *Upload) (string, error) {
	return MockBlobPath, nil
}

func (MockBlobStore) PublicURL(string) string {
	return MockBlobURL
}

func (MockBlobStore) Remove(context.Context, string) error {
	return nil
}

// BlobReader is implemented by blob stores that can serve their content.
type BlobReader interface {
	Get(ctx context.Context, bucket, path string) (*models.Blob, error)
}
