package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"inkwell/database"
	"inkwell/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// Every pooled connection would otherwise open its own empty database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func createCategory(t *testing.T, db *gorm.DB, name string) models.Category {
	t.Helper()
	category := models.Category{Name: name}
	require.NoError(t, db.Create(&category).Error)
	return category
}

func createPost(t *testing.T, db *gorm.DB, title string, categoryID uint, statusID int, date time.Time) models.Post {
	t.Helper()
	post := models.Post{
		Title:       title,
		Image:       "https://cdn.example.com/" + title + ".jpg",
		CategoryID:  int(categoryID),
		Description: "About " + title,
		Content:     "Body of " + title,
		StatusID:    statusID,
		Date:        date,
	}
	require.NoError(t, db.Create(&post).Error)
	return post
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) Broadcast(messageType string, _ interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, messageType)
}

func (n *recordingNotifier) Events() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.events...)
}

// recordingBlobStore keeps uploads in memory and can be told to fail removals.
type recordingBlobStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	removed   []string
	removeErr error
}

func newRecordingBlobStore() *recordingBlobStore {
	return &recordingBlobStore{objects: map[string][]byte{}}
}

func (s *recordingBlobStore) Upload(_ context.Context, path string, upload *Upload) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.objects[path]; exists {
		return "", fmt.Errorf("%w: blob %s already exists", ErrUpstream, path)
	}
	s.objects[path] = upload.Data
	return path, nil
}

func (s *recordingBlobStore) PublicURL(path string) string {
	return "https://cdn.example.com/" + path
}

func (s *recordingBlobStore) Remove(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = append(s.removed, path)
	if s.removeErr != nil {
		return s.removeErr
	}
	delete(s.objects, path)
	return nil
}

func (s *recordingBlobStore) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	paths := make([]string, 0, len(s.objects))
	for path := range s.objects {
		paths = append(paths, path)
	}
	return paths
}

// failingPostStore wraps a real store and fails every write.
type failingPostStore struct {
	PostStore
}

func (failingPostStore) Create(context.Context, *models.Post) error {
	return fmt.Errorf("%w: insert rejected", ErrUpstream)
}

func (failingPostStore) Update(context.Context, *models.Post, []string) error {
	return fmt.Errorf("%w: update rejected", ErrUpstream)
}

func imageUpload() *Upload {
	return &Upload{Filename: "cover.png", ContentType: "image/png", Data: []byte("\x89PNG fake image")}
}
