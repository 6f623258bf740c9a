package reorder

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/calderacafe/brewstock-backend/pkg/db/models"
	"github.com/calderacafe/brewstock-backend/pkg/enums"
	pkgerrors "github.com/calderacafe/brewstock-backend/pkg/errors"
	"github.com/calderacafe/brewstock-backend/pkg/logger"
)

const defaultBuffer = 5

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service evaluates stock levels against reorder thresholds and maintains
// the per-branch draft purchase order.
type Service interface {
	Evaluate(ctx context.Context, input EvaluateInput) (*EvaluateResult, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	logg   *logger.Logger
	buffer int
}

// EvaluateInput identifies the stock level to test. The reorder threshold is
// always resolved from branch inventory so the webhook and pubsub paths agree.
type EvaluateInput struct {
	BranchID     uuid.UUID
	IngredientID uuid.UUID
	NewQty       int
}

// EvaluateResult reports what the trigger did. Triggered is false when the
// level sits at or above the threshold.
type EvaluateResult struct {
	Triggered       bool
	PurchaseOrderID uuid.UUID
	IngredientID    uuid.UUID
	SuggestedQty    int
}

// NewService builds the low-stock trigger. A non-positive buffer falls back
// to the default.
func NewService(repo Repository, tx txRunner, logg *logger.Logger, buffer int) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "reorder repository required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &service{repo: repo, tx: tx, logg: logg, buffer: buffer}, nil
}

// Evaluate checks the new level against the ingredient's reorder point and,
// on a breach, tops up the branch's draft purchase order. Line quantities are
// only ever raised, so replays and out-of-order deliveries cannot shrink a
// suggestion.
func (s *service) Evaluate(ctx context.Context, input EvaluateInput) (*EvaluateResult, error) {
	if input.BranchID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "branch id required")
	}
	if input.IngredientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ingredient id required")
	}
	if input.NewQty < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"branch_id":     input.BranchID,
		"ingredient_id": input.IngredientID,
		"new_qty":       input.NewQty,
	})

	result := &EvaluateResult{IngredientID: input.IngredientID}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		inventory, err := repo.FindInventory(ctx, input.BranchID, input.IngredientID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load branch inventory")
		}
		reorderPt := 0
		if inventory != nil {
			reorderPt = inventory.ReorderPt
		}
		if input.NewQty >= reorderPt {
			return nil
		}

		suggested := reorderPt - input.NewQty + s.buffer
		if suggested < 1 {
			suggested = 1
		}

		order, err := repo.FindDraftForUpdate(ctx, input.BranchID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find draft purchase order")
		}
		if order == nil {
			order = &models.PurchaseOrder{
				BranchID: input.BranchID,
				Status:   enums.PurchaseOrderStatusDraft,
			}
			if err := repo.CreateDraft(ctx, order); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create draft purchase order")
			}
		}

		item, err := repo.FindItem(ctx, order.ID, input.IngredientID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find purchase order item")
		}
		finalQty := suggested
		switch {
		case item == nil:
			note := fmt.Sprintf("on hand %d, reorder at %d", input.NewQty, reorderPt)
			item = &models.PurchaseOrderItem{
				PurchaseOrderID: order.ID,
				IngredientID:    input.IngredientID,
				SuggestedQty:    suggested,
				Note:            &note,
			}
			if err := repo.CreateItem(ctx, item); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create purchase order item")
			}
		case suggested > item.SuggestedQty:
			if err := repo.RaiseItemQty(ctx, item.ID, suggested); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "raise purchase order item")
			}
		default:
			finalQty = item.SuggestedQty
		}

		if err := s.notify(ctx, repo, input, reorderPt); err != nil {
			return err
		}

		result.Triggered = true
		result.PurchaseOrderID = order.ID
		result.SuggestedQty = finalQty
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Triggered {
		s.logg.Info(s.logg.WithFields(logCtx, map[string]any{
			"purchase_order_id": result.PurchaseOrderID,
			"suggested_qty":     result.SuggestedQty,
		}), "low stock trigger fired")
	}
	return result, nil
}

func (s *service) notify(ctx context.Context, repo Repository, input EvaluateInput, reorderPt int) error {
	ingredient, err := repo.FindIngredient(ctx, input.IngredientID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ingredient")
	}
	branch, err := repo.FindBranch(ctx, input.BranchID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load branch")
	}

	ingredientID := input.IngredientID
	notification := &models.Notification{
		BranchID:     input.BranchID,
		IngredientID: &ingredientID,
		Type:         enums.NotificationTypeLowStock,
		Title:        fmt.Sprintf("Low stock: %s", ingredient.Name),
		Message: fmt.Sprintf("%s is low at %s: %d %s on hand, reorder point is %d",
			ingredient.Name, branch.Name, input.NewQty, ingredient.Unit, reorderPt),
	}
	if err := repo.InsertNotification(ctx, notification); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert notification")
	}
	return nil
}
