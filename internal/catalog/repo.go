package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/calderacafe/brewstock-backend/pkg/db/models"
)

// Repository covers the shared ingredient catalog and its categories.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateIngredient(ctx context.Context, ingredient *models.Ingredient) error
	FindIngredient(ctx context.Context, ingredientID uuid.UUID) (*models.Ingredient, error)
	ListIngredients(ctx context.Context, includeArchived bool) ([]models.Ingredient, error)
	UpdateIngredient(ctx context.Context, ingredientID uuid.UUID, updates map[string]any) error
	FindCategoryByName(ctx context.Context, name string) (*models.Category, error)
	CreateCategory(ctx context.Context, category *models.Category) error
	ListCategories(ctx context.Context) ([]models.Category, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) CreateIngredient(ctx context.Context, ingredient *models.Ingredient) error {
	return r.db.WithContext(ctx).Create(ingredient).Error
}

func (r *repositoryImpl) FindIngredient(ctx context.Context, ingredientID uuid.UUID) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("id = ?", ingredientID).
		First(&ingredient).Error
	if err != nil {
		return nil, err
	}
	return &ingredient, nil
}

func (r *repositoryImpl) ListIngredients(ctx context.Context, includeArchived bool) ([]models.Ingredient, error) {
	query := r.db.WithContext(ctx).Preload("Category")
	if !includeArchived {
		query = query.Where("archived = false")
	}
	var ingredients []models.Ingredient
	if err := query.Order("name ASC").Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

func (r *repositoryImpl) UpdateIngredient(ctx context.Context, ingredientID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Ingredient{}).
		Where("id = ?", ingredientID).
		Updates(updates).Error
}

func (r *repositoryImpl) FindCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

func (r *repositoryImpl) CreateCategory(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *repositoryImpl) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}
