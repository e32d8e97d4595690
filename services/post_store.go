package services

import (
	"context"
	"errors"
	"fmt"

	"inkwell/models"
	"inkwell/query"

	"gorm.io/gorm"
)

// PostCriteria selects posts. Find and Count receive the same criteria so the
// page and the total are computed over identical predicates.
type PostCriteria struct {
	PublishedOnly bool
	Filter        query.Filter
	Page          *query.PageRequest
}

// PostStore is the row-level capability behind PostService.
type PostStore interface {
	Find(ctx context.Context, criteria PostCriteria) ([]models.PostView, error)
	Count(ctx context.Context, criteria PostCriteria) (int64, error)
	Get(ctx context.Context, id uint, publishedOnly bool) (*models.PostView, error)
	Create(ctx context.Context, post *models.Post) error
	Update(ctx context.Context, post *models.Post, fields []string) error
	Delete(ctx context.Context, id uint) error
}

type GormPostStore struct {
	db     *gorm.DB
	likeOp string
}

func NewGormPostStore(db *gorm.DB) *GormPostStore {
	return &GormPostStore{db: db, likeOp: likeOperator(db)}
}

// likeOperator picks the case-insensitive match for the dialect. SQLite's
// LIKE is already case-insensitive for ASCII.
func likeOperator(db *gorm.DB) string {
	if db.Dialector.Name() == "postgres" {
		return "ILIKE"
	}
	return "LIKE"
}

func (s *GormPostStore) joined(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("posts").
		Joins("INNER JOIN categories ON posts.category_id = categories.id").
		Joins("INNER JOIN statuses ON posts.status_id = statuses.id")
}

func (s *GormPostStore) scope(criteria PostCriteria) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if criteria.PublishedOnly {
			tx = tx.Where("statuses.id = ?", models.PublishedStatusID)
		}
		if !criteria.Filter.Empty() {
			where, args := criteria.Filter.Named(s.likeOp)
			tx = tx.Where(where, args...)
		}
		return tx
	}
}

func (s *GormPostStore) Find(ctx context.Context, criteria PostCriteria) ([]models.PostView, error) {
	tx := s.joined(ctx).
		Select("posts.*, categories.name AS category, statuses.status AS status").
		Scopes(s.scope(criteria)).
		Order("posts.date DESC").
		Order("posts.id DESC")

	if criteria.Page != nil {
		tx = tx.Limit(criteria.Page.Limit).Offset(criteria.Page.Offset)
	}

	posts := []models.PostView{}
	if err := tx.Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("%w: find posts: %v", ErrUpstream, err)
	}
	return posts, nil
}

func (s *GormPostStore) Count(ctx context.Context, criteria PostCriteria) (int64, error) {
	var total int64
	if err := s.joined(ctx).Scopes(s.scope(criteria)).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("%w: count posts: %v", ErrUpstream, err)
	}
	return total, nil
}

func (s *GormPostStore) Get(ctx context.Context, id uint, publishedOnly bool) (*models.PostView, error) {
	var post models.PostView
	err := s.joined(ctx).
		Select("posts.*, categories.name AS category, statuses.status AS status").
		Scopes(s.scope(PostCriteria{PublishedOnly: publishedOnly})).
		Where("posts.id = ?", id).
		Take(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: post %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get post %d: %v", ErrUpstream, id, err)
	}
	return &post, nil
}

func (s *GormPostStore) Create(ctx context.Context, post *models.Post) error {
	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: unknown category or status", ErrValidation)
		}
		return fmt.Errorf("%w: create post: %v", ErrUpstream, err)
	}
	return nil
}

// Update writes only the named columns of post, matched by post.ID.
func (s *GormPostStore) Update(ctx context.Context, post *models.Post, fields []string) error {
	result := s.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", post.ID).
		Select(fields).
		Updates(post)
	if result.Error != nil {
		if isForeignKeyViolation(result.Error) {
			return fmt.Errorf("%w: unknown category or status", ErrValidation)
		}
		return fmt.Errorf("%w: update post %d: %v", ErrUpstream, post.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: post %d", ErrNotFound, post.ID)
	}
	return nil
}

func (s *GormPostStore) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Post{}, id)
	if result.Error != nil {
		return fmt.Errorf("%w: delete post %d: %v", ErrUpstream, id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: post %d", ErrNotFound, id)
	}
	return nil
}

// MockPostStore backs mock mode. Content rows need a real store, so every
// operation reports the backend as unavailable.
type MockPostStore struct{}

func (MockPostStore) Find(context.Context, PostCriteria) ([]models.PostView, error) {
	return nil, ErrBackendUnavailable
}

func (MockPostStore) Count(context.Context, PostCriteria) (int64, error) {
	return 0, ErrBackendUnavailable
}

func (MockPostStore) Get(context.Context, uint, bool) (*models.PostView, error) {
	return nil, ErrBackendUnavailable
}

func (MockPostStore) Create(context.Context, *models.Post) error {
	return ErrBackendUnavailable
}

func (MockPostStore) Update(context.Context, *models.Post, []string) error {
	return ErrBackendUnavailable
}

func (MockPostStore) Delete(context.Context, uint) error {
	return ErrBackendUnavailable
}
