package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"inkwell/models"

	"gorm.io/gorm"
)

type CategoryStore interface {
	List(ctx context.Context) ([]models.Category, error)
	Get(ctx context.Context, id uint) (*models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id uint) error
}

type CategoryService struct {
	store CategoryStore
}

func NewCategoryService(store CategoryStore) *CategoryService {
	return &CategoryService{store: store}
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	return s.store.List(ctx)
}

func (s *CategoryService) Get(ctx context.Context, id uint) (*models.Category, error) {
	return s.store.Get(ctx, id)
}

func (s *CategoryService) Create(ctx context.Context, req *models.CategoryRequest) (*models.Category, error) {
	name, err := categoryName(req)
	if err != nil {
		return nil, err
	}
	category := &models.Category{Name: name}
	if err := s.store.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) Update(ctx context.Context, id uint, req *models.CategoryRequest) (*models.Category, error) {
	name, err := categoryName(req)
	if err != nil {
		return nil, err
	}
	category := &models.Category{ID: id, Name: name}
	if err := s.store.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// Delete refuses to remove a category that posts still reference.
func (s *CategoryService) Delete(ctx context.Context, id uint) error {
	return s.store.Delete(ctx, id)
}

func categoryName(req *models.CategoryRequest) (string, error) {
	if req == nil || strings.TrimSpace(req.Name) == "" {
		return "", fmt.Errorf("%w: name is required", ErrValidation)
	}
	return strings.TrimSpace(req.Name), nil
}

type GormCategoryStore struct {
	db *gorm.DB
}

func NewGormCategoryStore(db *gorm.DB) *GormCategoryStore {
	return &GormCategoryStore{db: db}
}

func (s *GormCategoryStore) List(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("%w: list categories: %v", ErrUpstream, err)
	}
	return categories, nil
}

func (s *GormCategoryStore) Get(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	err := s.db.WithContext(ctx).Take(&category, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: category %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get category %d: %v", ErrUpstream, id, err)
	}
	return &category, nil
}

func (s *GormCategoryStore) Create(ctx context.Context, category *models.Category) error {
	if err := s.db.WithContext(ctx).Create(category).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: category %q already exists", ErrValidation, category.Name)
		}
		return fmt.Errorf("%w: create category: %v", ErrUpstream, err)
	}
	return nil
}

func (s *GormCategoryStore) Update(ctx context.Context, category *models.Category) error {
	result := s.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("id = ?", category.ID).
		Update("name", category.Name)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return fmt.Errorf("%w: category %q already exists", ErrValidation, category.Name)
		}
		return fmt.Errorf("%w: update category %d: %v", ErrUpstream, category.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: category %d", ErrNotFound, category.ID)
	}
	return nil
}

func (s *GormCategoryStore) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inUse int64
		if err := tx.Model(&models.Post{}).Where("category_id = ?", id).Count(&inUse).Error; err != nil {
			return fmt.Errorf("%w: count posts of category %d: %v", ErrUpstream, id, err)
		}
		if inUse > 0 {
			return fmt.Errorf("%w: category %d is used by %d posts", ErrValidation, id, inUse)
		}

		result := tx.Delete(&models.Category{}, id)
		if result.Error != nil {
			if isForeignKeyViolation(result.Error) {
				return fmt.Errorf("%w: category %d is used by posts", ErrValidation, id)
			}
			return fmt.Errorf("%w: delete category %d: %v", ErrUpstream, id, result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: category %d", ErrNotFound, id)
		}
		return nil
	})
}

// MockCategoryStore backs mock mode; categories need a real store.
type MockCategoryStore struct{}

func (MockCategoryStore) List(context.Context) ([]models.Category, error) {
	return nil, ErrBackendUnavailable
}

func (MockCategoryStore) Get(context.Context, uint) (*models.Category, error) {
	return nil, ErrBackendUnavailable
}

func (MockCategoryStore) Create(context.Context, *models.Category) error {
	return ErrBackendUnavailable
}

func (MockCategoryStore) Update(context.Context, *models.Category) error {
	return ErrBackendUnavailable
}

func (MockCategoryStore) Delete(context.Context, uint) error {
	return ErrBackendUnavailable
}
