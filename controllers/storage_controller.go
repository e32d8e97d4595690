package controllers

import (
	"net/http"
	"strings"

	"inkwell/services"

	"github.com/gin-gonic/gin"
)

// StorageController serves uploaded images by their public URL.
type StorageController struct {
	blobs services.BlobReader
}

func NewStorageController(blobs services.BlobReader) *StorageController {
	return &StorageController{
		blobs: blobs,
	}
}

func (sc *StorageController) GetObject(c *gin.Context) {
	bucket := c.Param("bucket")
	path := strings.TrimPrefix(c.Param("path"), "/")
	if path == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Object not found"})
		return
	}

	blob, err := sc.blobs.Get(c.Request.Context(), bucket, path)
	if err != nil {
		respondError(c, err, "Object not found", "Failed to fetch object")
		return
	}

	etag := `"` + blob.Checksum + `"`
	c.Header("ETag", etag)
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.Header("X-Content-Type-Options", "nosniff")
	if c.GetHeader("If-None-Match") == etag {
		c.Status(http.StatusNotModified)
		return
	}

	contentType := blob.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(blob.Data)
	}
	c.Data(http.StatusOK, contentType, blob.Data)
}
