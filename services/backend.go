package services

import (
	"inkwell/config"
	"inkwell/utils"

	"gorm.io/gorm"
)

// Backend is the set of capabilities chosen once at startup. Live and mock
// sets are never mixed.
type Backend struct {
	Live       bool
	Posts      PostStore
	Categories CategoryStore
	Blobs      BlobStore
	Identity   IdentityProvider
	Users      UserStore
}

func NewLiveBackend(db *gorm.DB, cfg *config.Config) *Backend {
	return &Backend{
		Live:       true,
		Posts:      NewGormPostStore(db),
		Categories: NewGormCategoryStore(db),
		Blobs:      NewGormBlobStore(db, cfg.StorageBucket, cfg.PublicURL),
		Identity:   NewGormIdentityProvider(db, utils.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)),
		Users:      NewGormUserStore(db),
	}
}

func NewMockBackend() *Backend {
	return &Backend{
		Live:       false,
		Posts:      MockPostStore{},
		Categories: MockCategoryStore{},
		Blobs:      MockBlobStore{},
		Identity:   NewMockIdentityProvider(),
		Users:      MockUserStore{},
	}
}

// Mode names the backend for logs and the service banner.
func (b *Backend) Mode() string {
	if b.Live {
		return "live"
	}
	return "mock"
}
