package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/calderacafe/brewstock-backend/pkg/db/models"
	pkgerrors "github.com/calderacafe/brewstock-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages the shared ingredient catalog. Archiving is a flag flip so
// historical stock checks and requests keep their references.
type Service interface {
	CreateIngredient(ctx context.Context, input CreateIngredientInput) (*models.Ingredient, error)
	ListIngredients(ctx context.Context, includeArchived bool) ([]models.Ingredient, error)
	UpdateIngredient(ctx context.Context, input UpdateIngredientInput) (*models.Ingredient, error)
	ArchiveIngredient(ctx context.Context, ingredientID uuid.UUID) error
	CreateCategory(ctx context.Context, name string) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
}

type service struct {
	repo Repository
	tx   txRunner
}

// CreateIngredientInput captures a new catalog item. CategoryName creates
// the category on the fly when it doesn't exist yet.
type CreateIngredientInput struct {
	Name         string
	Unit         string
	CategoryName *string
	CostPerUnit  *decimal.Decimal
}

// UpdateIngredientInput carries editable ingredient fields. Nil means
// unchanged.
type UpdateIngredientInput struct {
	IngredientID uuid.UUID
	Name         *string
	Unit         *string
	CategoryName *string
	CostPerUnit  *decimal.Decimal
}

func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "catalog repository required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) CreateIngredient(ctx context.Context, input CreateIngredientInput) (*models.Ingredient, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ingredient name required")
	}
	unit := strings.TrimSpace(input.Unit)
	if unit == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit required")
	}
	if input.CostPerUnit != nil && input.CostPerUnit.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cost per unit cannot be negative")
	}

	ingredient := &models.Ingredient{
		Name:        name,
		Unit:        unit,
		CostPerUnit: input.CostPerUnit,
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if input.CategoryName != nil {
			category, err := s.ensureCategory(ctx, repo, *input.CategoryName)
			if err != nil {
				return err
			}
			if category != nil {
				ingredient.CategoryID = &category.ID
			}
		}
		if err := repo.CreateIngredient(ctx, ingredient); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create ingredient")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ingredient, nil
}

func (s *service) ListIngredients(ctx context.Context, includeArchived bool) ([]models.Ingredient, error) {
	ingredients, err := s.repo.ListIngredients(ctx, includeArchived)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ingredients")
	}
	return ingredients, nil
}

func (s *service) UpdateIngredient(ctx context.Context, input UpdateIngredientInput) (*models.Ingredient, error) {
	if input.IngredientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ingredient id required")
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "ingredient name cannot be empty")
		}
		updates["name"] = name
	}
	if input.Unit != nil {
		unit := strings.TrimSpace(*input.Unit)
		if unit == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit cannot be empty")
		}
		updates["unit"] = unit
	}
	if input.CostPerUnit != nil {
		if input.CostPerUnit.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cost per unit cannot be negative")
		}
		updates["cost_per_unit"] = *input.CostPerUnit
	}

	var ingredient *models.Ingredient
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := s.mustFind(ctx, repo, input.IngredientID); err != nil {
			return err
		}
		if input.CategoryName != nil {
			category, err := s.ensureCategory(ctx, repo, *input.CategoryName)
			if err != nil {
				return err
			}
			if category != nil {
				updates["category_id"] = category.ID
			}
		}
		if len(updates) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "no changes to save")
		}
		if err := repo.UpdateIngredient(ctx, input.IngredientID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update ingredient")
		}
		updated, err := repo.FindIngredient(ctx, input.IngredientID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload ingredient")
		}
		ingredient = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ingredient, nil
}

func (s *service) ArchiveIngredient(ctx context.Context, ingredientID uuid.UUID) error {
	if ingredientID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "ingredient id required")
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ingredient, err := s.mustFind(ctx, repo, ingredientID)
		if err != nil {
			return err
		}
		if ingredient.Archived {
			return nil
		}
		if err := repo.UpdateIngredient(ctx, ingredientID, map[string]any{"archived": true}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "archive ingredient")
		}
		return nil
	})
}

func (s *service) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name required")
	}

	var category *models.Category
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		found, err := s.ensureCategory(ctx, repo, trimmed)
		if err != nil {
			return err
		}
		category = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (s *service) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	return categories, nil
}

// ensureCategory returns the named category, creating it when missing. Blank
// names resolve to no category at all.
func (s *service) ensureCategory(ctx context.Context, repo Repository, name string) (*models.Category, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, nil
	}
	category, err := repo.FindCategoryByName(ctx, trimmed)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find category")
	}
	if category != nil {
		return category, nil
	}
	category = &models.Category{Name: trimmed}
	if err := repo.CreateCategory(ctx, category); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
	}
	return category, nil
}

func (s *service) mustFind(ctx context.Context, repo Repository, ingredientID uuid.UUID) (*models.Ingredient, error) {
	ingredient, err := repo.FindIngredient(ctx, ingredientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ingredient not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ingredient")
	}
	return ingredient, nil
}
