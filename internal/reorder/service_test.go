package reorder

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/calderacafe/brewstock-backend/pkg/db/models"
	pkgerrors "github.com/calderacafe/brewstock-backend/pkg/errors"
	"github.com/calderacafe/brewstock-backend/pkg/logger"
)

var errDatabaseDown = errors.New("database down")

type stubRepo struct {
	inventory     *models.BranchInventory
	draft         *models.PurchaseOrder
	item          *models.PurchaseOrderItem
	created       []*models.PurchaseOrder
	createdItems  []*models.PurchaseOrderItem
	raisedQty     map[uuid.UUID]int
	notifications []*models.Notification
	findInvErr    error
}

func newStubRepo() *stubRepo {
	return &stubRepo{raisedQty: map[uuid.UUID]int{}}
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) FindInventory(ctx context.Context, branchID, ingredientID uuid.UUID) (*models.BranchInventory, error) {
	if s.findInvErr != nil {
		return nil, s.findInvErr
	}
	return s.inventory, nil
}

func (s *stubRepo) FindDraftForUpdate(ctx context.Context, branchID uuid.UUID) (*models.PurchaseOrder, error) {
	return s.draft, nil
}

func (s *stubRepo) CreateDraft(ctx context.Context, order *models.PurchaseOrder) error {
	order.ID = uuid.New()
	s.created = append(s.created, order)
	return nil
}

func (s *stubRepo) FindItem(ctx context.Context, orderID, ingredientID uuid.UUID) (*models.PurchaseOrderItem, error) {
	return s.item, nil
}

func (s *stubRepo) CreateItem(ctx context.Context, item *models.PurchaseOrderItem) error {
	item.ID = uuid.New()
	s.createdItems = append(s.createdItems, item)
	return nil
}

func (s *stubRepo) RaiseItemQty(ctx context.Context, itemID uuid.UUID, suggestedQty int) error {
	s.raisedQty[itemID] = suggestedQty
	return nil
}

func (s *stubRepo) FindIngredient(ctx context.Context, ingredientID uuid.UUID) (*models.Ingredient, error) {
	return &models.Ingredient{ID: ingredientID, Name: "Oat Milk", Unit: "l"}, nil
}

func (s *stubRepo) FindBranch(ctx context.Context, branchID uuid.UUID) (*models.Branch, error) {
	return &models.Branch{ID: branchID, Name: "Riverside"}, nil
}

func (s *stubRepo) InsertNotification(ctx context.Context, notification *models.Notification) error {
	s.notifications = append(s.notifications, notification)
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func newEvaluateService(t *testing.T, repo Repository, buffer int) Service {
	t.Helper()
	svc, err := NewService(repo, stubTxRunner{}, testLogger(), buffer)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func inventoryRow(branchID, ingredientID uuid.UUID, qty, reorderPt int) *models.BranchInventory {
	return &models.BranchInventory{
		ID:           uuid.New(),
		BranchID:     branchID,
		IngredientID: ingredientID,
		OnHandQty:    qty,
		ReorderPt:    reorderPt,
	}
}

func TestEvaluateAtThresholdDoesNotTrigger(t *testing.T) {
	branchID, ingredientID := uuid.New(), uuid.New()
	repo := newStubRepo()
	repo.inventory = inventoryRow(branchID, ingredientID, 10, 10)
	svc := newEvaluateService(t, repo, 5)

	result, err := svc.Evaluate(context.Background(), EvaluateInput{
		BranchID:     branchID,
		IngredientID: ingredientID,
		NewQty:       10,
	})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if result.Triggered {
		t.Fatal("quantity equal to threshold must not trigger")
	}
	if len(repo.created) != 0 || len(repo.createdItems) != 0 || len(repo.notifications) != 0 {
		t.Fatal("no writes expected when not triggered")
	}
}

func TestEvaluateAboveThresholdDoesNotTrigger(t *testing.T) {
	branchID, ingredientID := uuid.New(), uuid.New()
	repo := newStubRepo()
	repo.inventory = inventoryRow(branchID, ingredientID, 11, 10)
	svc := newEvaluateService(t, repo, 5)

	result, err := svc.Evaluate(context.Background(), EvaluateInput{
		BranchID:     branchID,
		IngredientID: ingredientID,
		NewQty:       11,
	})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if result.Triggered {
		t.Fatal("quantity above threshold must not trigger")
	}
	if len(repo.created) != 0 {
		t.Fatal("no draft expected when not triggered")
	}
}

func TestEvaluateCountedDropCreatesDraftLine(t *testing.T) {
	branchID, ingredientID := uuid.New(), uuid.New()
	repo := newStubRepo()
	repo.inventory = inventoryRow(branchID, ingredientID, 7, 10)
	svc := newEvaluateService(t, repo, 5)

	result, err := svc.Evaluate(context.Background(), EvaluateInput{
		BranchID:     branchID,
		IngredientID: ingredientID,
		NewQty:       7,
	})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !result.Triggered {
		t.Fatal("expected trigger for count below threshold")
	}
	// 10 - 7 + 5
	if result.SuggestedQty != 8 {
		t.Fatalf("expected suggested qty 8, got %d", result.SuggestedQty)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one draft order, got %d", len(repo.created))
	}
	if len(repo.createdItems) != 1 || repo.createdItems[0].SuggestedQty != 8 {
		t.Fatalf("expected one line with qty 8, got %+v", repo.createdItems)
	}
}

func TestEvaluateBelowThresholdSuggestsShortfallPlusBuffer(t *testing.T) {
	branchID, ingredientID := uuid.New(), uuid.New()
	repo := newStubRepo()
	repo.inventory = inventoryRow(branchID, ingredientID, 3, 10)
	svc := newEvaluateService(t, repo, 5)

	result, err := svc.Evaluate(context.Background(), EvaluateInput{
		BranchID:     branchID,
		IngredientID: ingredientID,
		NewQty:       3,
	})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !result.Triggered {
		t.Fatal("expected trigger below threshold")
	}
	// 10 - 3 + 5
	if result.SuggestedQty != 12 {
		t.Fatalf("expected suggested qty 12, got %d", result.SuggestedQty)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one draft order created, got %d", len(repo.created))
	}
	if len(repo.createdItems) != 1 || repo.createdItems[0].SuggestedQty != 12 {
		t.Fatalf("expected one line with qty 12, got %+v", repo.createdItems)
	}
	if len(repo.notifications) != 1 {
		t.Fatalf("expected one notification, got %d", len(repo.notifications))
	}
}

func TestEvaluateSuggestionFloorsAtOne(t *testing.T) {
	branchID, ingredientID := uuid.New(), uuid.New()
	repo := newStubRepo()
	repo.inventory = inventoryRow(branchID, ingredientID, 0, 1)
	svc := newEvaluateService(t, repo, 5)

	result, err := svc.Evaluate(context.Background(), EvaluateInput{
		BranchID:     branchID,
		IngredientID: ingredientID,
		NewQty:       0,
	})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if result.SuggestedQty < 1 {
		t.Fatalf("suggested qty must be at least 1, got %d", result.SuggestedQty)
	}
}

func TestEvaluateReusesExistingDraft(t *testing.T) {
	branchID, ingredientID := uuid.New(), uuid.New()
	repo := newStubRepo()
	repo.inventory = inventoryRow(branchID, ingredientID, 2, 10)
	repo.draft = &models.PurchaseOrder{ID: uuid.New(), BranchID: branchID}
	svc := newEvaluateService(t, repo, 5)

	result, err := svc.Evaluate(context.Background(), EvaluateInput{
		BranchID:     branchID,
		IngredientID: ingredientID,
		NewQty:       2,
	})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(repo.created) != 0 {
		t.Fatal("must reuse the existing draft order")
	}
	if result.PurchaseOrderID != repo.draft.ID {
		t.Fatalf("expected existing draft id, got %s", result.PurchaseOrderID)
	}
}

func TestEvaluateRaisesLineOnlyUpward(t *testing.T) {
	branchID, ingredientID := uuid.New(), uuid.New()
	repo := newStubRepo()
	repo.inventory = inventoryRow(branchID, ingredientID, 1, 10)
	repo.draft = &models.PurchaseOrder{ID: uuid.New(), BranchID: branchID}
	repo.item = &models.PurchaseOrderItem{
		ID:              uuid.New(),
		PurchaseOrderID: repo.draft.ID,
		IngredientID:    ingredientID,
		SuggestedQty:    8,
	}
	svc := newEvaluateService(t, repo, 5)

	// 10 - 1 + 5 = 14 > 8, line rises
	result, err := svc.Evaluate(context.Background(), EvaluateInput{
		BranchID:     branchID,
		IngredientID: ingredientID,
		NewQty:       1,
	})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if result.SuggestedQty != 14 {
		t.Fatalf("expected raised qty 14, got %d", result.SuggestedQty)
	}
	if repo.raisedQty[repo.item.ID] != 14 {
		t.Fatalf("expected raise to 14, got %v", repo.raisedQty)
	}

	// 10 - 8 + 5 = 7 < 14, line keeps its higher value
	repo.item.SuggestedQty = 14
	repo.raisedQty = map[uuid.UUID]int{}
	result, err = svc.Evaluate(context.Background(), EvaluateInput{
		BranchID:     branchID,
		IngredientID: ingredientID,
		NewQty:       8,
	})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if result.SuggestedQty != 14 {
		t.Fatalf("expected line to keep qty 14, got %d", result.SuggestedQty)
	}
	if len(repo.raisedQty) != 0 {
		t.Fatal("line must never be lowered")
	}
	if len(repo.createdItems) != 0 {
		t.Fatal("no duplicate line expected for the same ingredient")
	}
}

func TestEvaluateMissingInventoryUsesZeroThreshold(t *testing.T) {
	repo := newStubRepo()
	svc := newEvaluateService(t, repo, 5)

	result, err := svc.Evaluate(context.Background(), EvaluateInput{
		BranchID:     uuid.New(),
		IngredientID: uuid.New(),
		NewQty:       0,
	})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if result.Triggered {
		t.Fatal("zero threshold means qty 0 is acceptable")
	}
}

func TestEvaluateWrapsRepositoryFailure(t *testing.T) {
	repo := newStubRepo()
	repo.findInvErr = errDatabaseDown
	svc := newEvaluateService(t, repo, 5)

	_, err := svc.Evaluate(context.Background(), EvaluateInput{
		BranchID:     uuid.New(),
		IngredientID: uuid.New(),
		NewQty:       1,
	})
	if pkgerrors.As(err).Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestEvaluateValidation(t *testing.T) {
	svc := newEvaluateService(t, newStubRepo(), 5)

	_, err := svc.Evaluate(context.Background(), EvaluateInput{IngredientID: uuid.New(), NewQty: 1})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	_, err = svc.Evaluate(context.Background(), EvaluateInput{BranchID: uuid.New(), IngredientID: uuid.New(), NewQty: -1})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for negative qty, got %v", err)
	}
}
