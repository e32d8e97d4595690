package models

import "time"

// Blob is an uploaded file kept in the store, addressed by bucket and path.
type Blob struct {
	ID          uint   `gorm:"primaryKey"`
	Bucket      string `gorm:"not null;uniqueIndex:idx_blob_location"`
	Path        string `gorm:"not null;uniqueIndex:idx_blob_location"`
	ContentType string
	Size        int64
	Checksum    string
	Data        []byte
	CreatedAt   time.Time
}
