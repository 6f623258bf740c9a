package stockchecks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/calderacafe/brewstock-backend/internal/inventory"
	"github.com/calderacafe/brewstock-backend/pkg/db/models"
	"github.com/calderacafe/brewstock-backend/pkg/enums"
	pkgerrors "github.com/calderacafe/brewstock-backend/pkg/errors"
	"github.com/calderacafe/brewstock-backend/pkg/outbox"
	"github.com/calderacafe/brewstock-backend/pkg/outbox/payloads"
)

const defaultListLimit = 100

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type stockApplier interface {
	ApplyCount(ctx context.Context, tx *gorm.DB, input inventory.ApplyCountInput) (*inventory.ApplyResult, error)
}

// Service records counting sessions and lists branch history.
type Service interface {
	Record(ctx context.Context, input RecordInput) (*models.StockCheck, error)
	List(ctx context.Context, branchID uuid.UUID, limit int) ([]models.StockCheck, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	inventory stockApplier
	outbox    outboxPublisher
}

// RecordItemInput is one counted ingredient line.
type RecordItemInput struct {
	IngredientID uuid.UUID
	Qty          int
}

// RecordInput captures a full counting session.
type RecordInput struct {
	BranchID  uuid.UUID
	UserID    uuid.UUID
	StaffName *string
	ActorRole string
	CheckedAt time.Time
	Items     []RecordItemInput
}

// NewService builds a stock check service with the required dependencies.
func NewService(repo Repository, tx txRunner, inv stockApplier, ob outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "stock check repository required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if inv == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "inventory service required")
	}
	if ob == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "outbox publisher required")
	}
	return &service{repo: repo, tx: tx, inventory: inv, outbox: ob}, nil
}

// Record validates the session and persists the check, the per-item history
// rows, the inventory upserts, and one stock_level_changed event per item in
// a single transaction.
func (s *service) Record(ctx context.Context, input RecordInput) (*models.StockCheck, error) {
	if input.BranchID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "branch id required")
	}
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no changes to save")
	}
	seen := make(map[uuid.UUID]struct{}, len(input.Items))
	for _, item := range input.Items {
		if item.IngredientID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "ingredient id required")
		}
		if item.Qty < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
		}
		if _, dup := seen[item.IngredientID]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate ingredient in check")
		}
		seen[item.IngredientID] = struct{}{}
	}

	checkedAt := input.CheckedAt
	if checkedAt.IsZero() {
		checkedAt = time.Now().UTC()
	}

	check := &models.StockCheck{
		BranchID:  input.BranchID,
		UserID:    input.UserID,
		StaffName: input.StaffName,
		CheckedAt: checkedAt,
	}
	for _, item := range input.Items {
		check.Items = append(check.Items, models.StockCheckItem{
			IngredientID: item.IngredientID,
			OnHandQty:    item.Qty,
		})
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		exists, err := repo.BranchExists(ctx, input.BranchID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check branch")
		}
		if !exists {
			return pkgerrors.New(pkgerrors.CodeNotFound, "branch not found")
		}

		if err := repo.Create(ctx, check); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create stock check")
		}

		for _, item := range input.Items {
			result, err := s.inventory.ApplyCount(ctx, tx, inventory.ApplyCountInput{
				BranchID:     input.BranchID,
				IngredientID: item.IngredientID,
				Qty:          item.Qty,
				CheckedAt:    checkedAt,
			})
			if err != nil {
				return err
			}

			event := outbox.DomainEvent{
				EventType:     enums.EventStockLevelChanged,
				AggregateType: enums.AggregateBranchInventory,
				AggregateID:   result.Row.ID,
				Version:       1,
				Actor:         buildActor(input.UserID, input.BranchID, input.ActorRole),
				Data: payloads.StockLevelChangedEvent{
					BranchID:     input.BranchID,
					IngredientID: item.IngredientID,
					StockCheckID: check.ID,
					PreviousQty:  result.PreviousQty,
					NewQty:       item.Qty,
					ReorderPt:    result.Row.ReorderPt,
					CheckedAt:    checkedAt,
				},
			}
			if err := s.outbox.Emit(ctx, tx, event); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue stock event")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return check, nil
}

func (s *service) List(ctx context.Context, branchID uuid.UUID, limit int) ([]models.StockCheck, error) {
	if branchID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "branch id required")
	}
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	checks, err := s.repo.ListByBranch(ctx, branchID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock checks")
	}
	return checks, nil
}

func buildActor(userID, branchID uuid.UUID, role string) *outbox.ActorRef {
	branch := branchID
	return &outbox.ActorRef{
		UserID:   userID,
		BranchID: &branch,
		Role:     role,
	}
}
