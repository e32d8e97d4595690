package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"inkwell/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserStore persists profile rows.
type UserStore interface {
	Get(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
}

// UserService lets signed-in users edit their own profile.
type UserService struct {
	store UserStore
	blobs BlobStore
	now   func() time.Time
}

func NewUserService(store UserStore, blobs BlobStore) *UserService {
	return &UserService{store: store, blobs: blobs, now: time.Now}
}

// UpdateProfile changes only the fields that were sent non-empty.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.User, error) {
	fields := map[string]interface{}{}
	if req != nil {
		if name := strings.TrimSpace(req.Name); name != "" {
			fields["name"] = name
		}
		if username := strings.TrimSpace(req.Username); username != "" {
			fields["username"] = username
		}
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: name or username is required", ErrValidation)
	}

	if err := s.store.Update(ctx, userID, fields); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, userID)
}

// UploadAvatar stores the image and points the profile at it. The blob is
// removed again when the profile cannot be updated.
func (s *UserService) UploadAvatar(ctx context.Context, userID string, upload *Upload) (*models.User, error) {
	if upload == nil || len(upload.Data) == 0 {
		return nil, fmt.Errorf("%w: avatar file is required", ErrValidation)
	}

	path := fmt.Sprintf("avatars/%s-%d-%s", userID, s.now().UnixMilli(), uuid.NewString())
	stored, err := s.blobs.Upload(ctx, path, upload)
	if err != nil {
		return nil, err
	}

	if err := s.store.Update(ctx, userID, map[string]interface{}{"profile_pic": s.blobs.PublicURL(stored)}); err != nil {
		discardBlob(ctx, s.blobs, stored, err)
		return nil, err
	}
	return s.store.Get(ctx, userID)
}

type GormUserStore struct {
	db *gorm.DB
}

func NewGormUserStore(db *gorm.DB) *GormUserStore {
	return &GormUserStore{db: db}
}

func (s *GormUserStore) Get(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get user %s: %v", ErrUpstream, id, err)
	}
	return &user, nil
}

func (s *GormUserStore) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	result := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("%w: update user %s: %v", ErrUpstream, id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: user %s", ErrNotFound, id)
	}
	return nil
}

// MockUserStore backs mock mode, where profiles are fixed.
type MockUserStore struct{}

func (MockUserStore) Get(context.Context, string) (*models.User, error) {
	return nil, ErrBackendUnavailable
}

func (MockUserStore) Update(context.Context, string, map[string]interface{}) error {
	return ErrBackendUnavailable
}
