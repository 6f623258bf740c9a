package stockchecks

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/calderacafe/brewstock-backend/internal/inventory"
	"github.com/calderacafe/brewstock-backend/pkg/db/models"
	"github.com/calderacafe/brewstock-backend/pkg/enums"
	pkgerrors "github.com/calderacafe/brewstock-backend/pkg/errors"
	"github.com/calderacafe/brewstock-backend/pkg/outbox"
	"github.com/calderacafe/brewstock-backend/pkg/outbox/payloads"
)

type stubRepo struct {
	branchExistsFn func(ctx context.Context, branchID uuid.UUID) (bool, error)
	createFn       func(ctx context.Context, check *models.StockCheck) error
	listFn         func(ctx context.Context, branchID uuid.UUID, limit int) ([]models.StockCheck, error)
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubRepo) BranchExists(ctx context.Context, branchID uuid.UUID) (bool, error) {
	if s.branchExistsFn != nil {
		return s.branchExistsFn(ctx, branchID)
	}
	return true, nil
}

func (s *stubRepo) Create(ctx context.Context, check *models.StockCheck) error {
	if s.createFn != nil {
		return s.createFn(ctx, check)
	}
	check.ID = uuid.New()
	return nil
}

func (s *stubRepo) BranchIDForCheck(ctx context.Context, checkID uuid.UUID) (uuid.UUID, error) {
	return uuid.Nil, nil
}

func (s *stubRepo) ListByBranch(ctx context.Context, branchID uuid.UUID, limit int) ([]models.StockCheck, error) {
	if s.listFn != nil {
		return s.listFn(ctx, branchID, limit)
	}
	return nil, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubApplier struct {
	applyFn func(ctx context.Context, tx *gorm.DB, input inventory.ApplyCountInput) (*inventory.ApplyResult, error)
	calls   []inventory.ApplyCountInput
}

func (s *stubApplier) ApplyCount(ctx context.Context, tx *gorm.DB, input inventory.ApplyCountInput) (*inventory.ApplyResult, error) {
	s.calls = append(s.calls, input)
	if s.applyFn != nil {
		return s.applyFn(ctx, tx, input)
	}
	return &inventory.ApplyResult{
		Row: &models.BranchInventory{
			ID:           uuid.New(),
			BranchID:     input.BranchID,
			IngredientID: input.IngredientID,
			OnHandQty:    input.Qty,
		},
	}, nil
}

type stubOutbox struct {
	events []outbox.DomainEvent
	err    error
}

func (s *stubOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

func newRecordService(t *testing.T, repo Repository, applier stockApplier, ob outboxPublisher) Service {
	t.Helper()
	svc, err := NewService(repo, stubTxRunner{}, applier, ob)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestRecordEmitsEventPerItem(t *testing.T) {
	branchID := uuid.New()
	userID := uuid.New()
	first := uuid.New()
	second := uuid.New()

	applier := &stubApplier{
		applyFn: func(ctx context.Context, tx *gorm.DB, input inventory.ApplyCountInput) (*inventory.ApplyResult, error) {
			return &inventory.ApplyResult{
				Row: &models.BranchInventory{
					ID:           uuid.New(),
					BranchID:     input.BranchID,
					IngredientID: input.IngredientID,
					OnHandQty:    input.Qty,
					ReorderPt:    10,
				},
				PreviousQty: 12,
			}, nil
		},
	}
	ob := &stubOutbox{}
	svc := newRecordService(t, &stubRepo{}, applier, ob)

	check, err := svc.Record(context.Background(), RecordInput{
		BranchID: branchID,
		UserID:   userID,
		Items: []RecordItemInput{
			{IngredientID: first, Qty: 7},
			{IngredientID: second, Qty: 3},
		},
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if len(check.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(check.Items))
	}
	if len(applier.calls) != 2 {
		t.Fatalf("expected 2 inventory writes, got %d", len(applier.calls))
	}
	if len(ob.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(ob.events))
	}

	event := ob.events[0]
	if event.EventType != enums.EventStockLevelChanged {
		t.Fatalf("unexpected event type %s", event.EventType)
	}
	payload, ok := event.Data.(payloads.StockLevelChangedEvent)
	if !ok {
		t.Fatalf("unexpected payload type %T", event.Data)
	}
	if payload.NewQty != 7 || payload.PreviousQty != 12 {
		t.Fatalf("unexpected quantities %+v", payload)
	}
	if payload.ReorderPt != 10 {
		t.Fatalf("expected reorder point in payload, got %d", payload.ReorderPt)
	}
	if event.Actor == nil || event.Actor.UserID != userID {
		t.Fatal("expected actor on event")
	}
}

func TestRecordRejectsEmptyItems(t *testing.T) {
	svc := newRecordService(t, &stubRepo{}, &stubApplier{}, &stubOutbox{})
	_, err := svc.Record(context.Background(), RecordInput{
		BranchID: uuid.New(),
		UserID:   uuid.New(),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if typed.Message() != "no changes to save" {
		t.Fatalf("unexpected message %q", typed.Message())
	}
}

func TestRecordRejectsNegativeQty(t *testing.T) {
	svc := newRecordService(t, &stubRepo{}, &stubApplier{}, &stubOutbox{})
	_, err := svc.Record(context.Background(), RecordInput{
		BranchID: uuid.New(),
		UserID:   uuid.New(),
		Items:    []RecordItemInput{{IngredientID: uuid.New(), Qty: -1}},
	})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRecordRejectsDuplicateIngredient(t *testing.T) {
	ingredientID := uuid.New()
	svc := newRecordService(t, &stubRepo{}, &stubApplier{}, &stubOutbox{})
	_, err := svc.Record(context.Background(), RecordInput{
		BranchID: uuid.New(),
		UserID:   uuid.New(),
		Items: []RecordItemInput{
			{IngredientID: ingredientID, Qty: 1},
			{IngredientID: ingredientID, Qty: 2},
		},
	})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRecordUnknownBranch(t *testing.T) {
	repo := &stubRepo{
		branchExistsFn: func(ctx context.Context, branchID uuid.UUID) (bool, error) {
			return false, nil
		},
	}
	svc := newRecordService(t, repo, &stubApplier{}, &stubOutbox{})
	_, err := svc.Record(context.Background(), RecordInput{
		BranchID: uuid.New(),
		UserID:   uuid.New(),
		Items:    []RecordItemInput{{IngredientID: uuid.New(), Qty: 1}},
	})
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRecordRollsUpOutboxFailure(t *testing.T) {
	ob := &stubOutbox{err: pkgerrors.New(pkgerrors.CodeDependency, "insert failed")}
	svc := newRecordService(t, &stubRepo{}, &stubApplier{}, ob)
	_, err := svc.Record(context.Background(), RecordInput{
		BranchID: uuid.New(),
		UserID:   uuid.New(),
		Items:    []RecordItemInput{{IngredientID: uuid.New(), Qty: 1}},
	})
	if pkgerrors.As(err).Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestListCapsLimit(t *testing.T) {
	var gotLimit int
	repo := &stubRepo{
		listFn: func(ctx context.Context, branchID uuid.UUID, limit int) ([]models.StockCheck, error) {
			gotLimit = limit
			return nil, nil
		},
	}
	svc := newRecordService(t, repo, &stubApplier{}, &stubOutbox{})
	if _, err := svc.List(context.Background(), uuid.New(), 500); err != nil {
		t.Fatalf("List: %v", err)
	}
	if gotLimit != defaultListLimit {
		t.Fatalf("expected limit %d, got %d", defaultListLimit, gotLimit)
	}
}
