package catalog

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/calderacafe/brewstock-backend/pkg/db/models"
	pkgerrors "github.com/calderacafe/brewstock-backend/pkg/errors"
)

type stubRepo struct {
	ingredient        *models.Ingredient
	categories        map[string]*models.Category
	createdCategories []*models.Category
	updates           []map[string]any
}

func newStubRepo() *stubRepo {
	return &stubRepo{categories: map[string]*models.Category{}}
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) CreateIngredient(ctx context.Context, ingredient *models.Ingredient) error {
	ingredient.ID = uuid.New()
	s.ingredient = ingredient
	return nil
}

func (s *stubRepo) FindIngredient(ctx context.Context, ingredientID uuid.UUID) (*models.Ingredient, error) {
	if s.ingredient == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.ingredient, nil
}

func (s *stubRepo) ListIngredients(ctx context.Context, includeArchived bool) ([]models.Ingredient, error) {
	if s.ingredient == nil {
		return nil, nil
	}
	if s.ingredient.Archived && !includeArchived {
		return nil, nil
	}
	return []models.Ingredient{*s.ingredient}, nil
}

func (s *stubRepo) UpdateIngredient(ctx context.Context, ingredientID uuid.UUID, updates map[string]any) error {
	s.updates = append(s.updates, updates)
	if archived, ok := updates["archived"].(bool); ok && s.ingredient != nil {
		s.ingredient.Archived = archived
	}
	return nil
}

func (s *stubRepo) FindCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	return s.categories[name], nil
}

func (s *stubRepo) CreateCategory(ctx context.Context, category *models.Category) error {
	category.ID = uuid.New()
	s.categories[category.Name] = category
	s.createdCategories = append(s.createdCategories, category)
	return nil
}

func (s *stubRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	result := make([]models.Category, 0, len(s.categories))
	for _, category := range s.categories {
		result = append(result, *category)
	}
	return result, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newCatalogService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo, stubTxRunner{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func strPtr(v string) *string { return &v }

func TestCreateIngredientCreatesCategoryAdHoc(t *testing.T) {
	repo := newStubRepo()
	svc := newCatalogService(t, repo)

	cost := decimal.NewFromFloat(4.25)
	ingredient, err := svc.CreateIngredient(context.Background(), CreateIngredientInput{
		Name:         "Espresso Beans",
		Unit:         "kg",
		CategoryName: strPtr("Coffee"),
		CostPerUnit:  &cost,
	})
	if err != nil {
		t.Fatalf("CreateIngredient: %v", err)
	}
	if len(repo.createdCategories) != 1 || repo.createdCategories[0].Name != "Coffee" {
		t.Fatalf("expected ad hoc category, got %+v", repo.createdCategories)
	}
	if ingredient.CategoryID == nil || *ingredient.CategoryID != repo.createdCategories[0].ID {
		t.Fatal("ingredient must reference the new category")
	}
	if ingredient.CostPerUnit == nil || !ingredient.CostPerUnit.Equal(cost) {
		t.Fatalf("expected cost 4.25, got %v", ingredient.CostPerUnit)
	}
}

func TestCreateIngredientReusesExistingCategory(t *testing.T) {
	repo := newStubRepo()
	existing := &models.Category{ID: uuid.New(), Name: "Dairy"}
	repo.categories["Dairy"] = existing
	svc := newCatalogService(t, repo)

	ingredient, err := svc.CreateIngredient(context.Background(), CreateIngredientInput{
		Name:         "Oat Milk",
		Unit:         "l",
		CategoryName: strPtr("Dairy"),
	})
	if err != nil {
		t.Fatalf("CreateIngredient: %v", err)
	}
	if len(repo.createdCategories) != 0 {
		t.Fatal("existing category must be reused, not duplicated")
	}
	if ingredient.CategoryID == nil || *ingredient.CategoryID != existing.ID {
		t.Fatal("ingredient must reference the existing category")
	}
}

func TestCreateIngredientValidation(t *testing.T) {
	svc := newCatalogService(t, newStubRepo())

	_, err := svc.CreateIngredient(context.Background(), CreateIngredientInput{Unit: "kg"})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for missing name, got %v", err)
	}

	negative := decimal.NewFromInt(-1)
	_, err = svc.CreateIngredient(context.Background(), CreateIngredientInput{
		Name:        "Sugar",
		Unit:        "kg",
		CostPerUnit: &negative,
	})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for negative cost, got %v", err)
	}
}

func TestArchiveIngredientFlipsFlagOnly(t *testing.T) {
	repo := newStubRepo()
	repo.ingredient = &models.Ingredient{ID: uuid.New(), Name: "Syrup", Unit: "ml"}
	svc := newCatalogService(t, repo)

	if err := svc.ArchiveIngredient(context.Background(), repo.ingredient.ID); err != nil {
		t.Fatalf("ArchiveIngredient: %v", err)
	}
	if len(repo.updates) != 1 {
		t.Fatalf("expected a single update, got %d", len(repo.updates))
	}
	if archived, ok := repo.updates[0]["archived"].(bool); !ok || !archived {
		t.Fatalf("expected archive flag flip, got %v", repo.updates[0])
	}

	// second archive is a no-op
	if err := svc.ArchiveIngredient(context.Background(), repo.ingredient.ID); err != nil {
		t.Fatalf("ArchiveIngredient repeat: %v", err)
	}
	if len(repo.updates) != 1 {
		t.Fatal("archiving an archived ingredient must not write")
	}
}

func TestListIngredientsExcludesArchivedByDefault(t *testing.T) {
	repo := newStubRepo()
	repo.ingredient = &models.Ingredient{ID: uuid.New(), Name: "Syrup", Unit: "ml", Archived: true}
	svc := newCatalogService(t, repo)

	visible, err := svc.ListIngredients(context.Background(), false)
	if err != nil {
		t.Fatalf("ListIngredients: %v", err)
	}
	if len(visible) != 0 {
		t.Fatal("archived ingredients must be hidden by default")
	}

	all, err := svc.ListIngredients(context.Background(), true)
	if err != nil {
		t.Fatalf("ListIngredients: %v", err)
	}
	if len(all) != 1 {
		t.Fatal("archived ingredients must appear when requested")
	}
}

func TestCreateCategoryTrimsAndDedupes(t *testing.T) {
	repo := newStubRepo()
	svc := newCatalogService(t, repo)

	first, err := svc.CreateCategory(context.Background(), "  Bakery  ")
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if first.Name != "Bakery" {
		t.Fatalf("expected trimmed name, got %q", first.Name)
	}

	second, err := svc.CreateCategory(context.Background(), "Bakery")
	if err != nil {
		t.Fatalf("CreateCategory repeat: %v", err)
	}
	if second.ID != first.ID {
		t.Fatal("repeat creation must return the existing category")
	}

	_, err = svc.CreateCategory(context.Background(), strings.Repeat(" ", 3))
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for blank name, got %v", err)
	}
}
