package requests

import (
	"context"
	"errors"
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

const defaultListLimit = 50

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type stockMerger interface {
	ApplyDelta(ctx context.Context, tx *gorm.DB, input inventory.ApplyDeltaInput) (*inventory.ApplyResult, error)
}

// Service manages the request lifecycle including fulfillment reconciliation.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Request, error)
	List(ctx context.Context, branchID uuid.UUID, limit int) ([]models.Request, error)
	Get(ctx context.Context, requestID uuid.UUID) (*models.Request, error)
	UpdateFulfillment(ctx context.Context, input UpdateFulfillmentInput) (*models.Request, error)
	Reopen(ctx context.Context, input ReopenInput) error
}

type service struct {
	repo      Repository
	tx        txRunner
	inventory stockMerger
	outbox    outboxPublisher
}

// CreateItemInput is one requested ingredient line.
type CreateItemInput struct {
	IngredientID   uuid.UUID
	Qty            int
	CurrentQty     *int
	RecommendedQty *int
	Note           *string
}

// CreateInput captures a new staff request.
type CreateInput struct {
	BranchID uuid.UUID
	UserID   uuid.UUID
	Comment  *string
	Items    []CreateItemInput
}

// FulfillmentEdit adjusts one request item during the fulfillment workflow.
type FulfillmentEdit struct {
	ItemID    uuid.UUID
	Qty       *int
	Fulfilled *bool
}

// UpdateFulfillmentInput carries per-item edits plus actor metadata.
type UpdateFulfillmentInput struct {
	RequestID   uuid.UUID
	ActorUserID uuid.UUID
	ActorRole   string
	Edits       []FulfillmentEdit
}

// ReopenInput reverses a fulfilled request back to pending.
type ReopenInput struct {
	RequestID   uuid.UUID
	ActorUserID uuid.UUID
	ActorRole   string
}

// NewService builds a request service with the required dependencies.
func NewService(repo Repository, tx txRunner, inv stockMerger, ob outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "request repository required")
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

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Request, error) {
	if input.BranchID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "branch id required")
	}
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item required")
	}
	for _, item := range input.Items {
		if item.IngredientID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "ingredient id required")
		}
		if item.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		}
	}

	request := &models.Request{
		BranchID:    input.BranchID,
		UserID:      input.UserID,
		Status:      enums.RequestStatusPending,
		Comment:     input.Comment,
		RequestedAt: time.Now().UTC(),
	}
	for _, item := range input.Items {
		request.Items = append(request.Items, models.RequestItem{
			IngredientID:   item.IngredientID,
			Quantity:       item.Qty,
			CurrentQty:     item.CurrentQty,
			RecommendedQty: item.RecommendedQty,
			Note:           item.Note,
		})
	}
	if err := s.repo.Create(ctx, request); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create request")
	}
	return request, nil
}

func (s *service) List(ctx context.Context, branchID uuid.UUID, limit int) ([]models.Request, error) {
	if branchID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "branch id required")
	}
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	rows, err := s.repo.ListByBranch(ctx, branchID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list requests")
	}
	return rows, nil
}

func (s *service) Get(ctx context.Context, requestID uuid.UUID) (*models.Request, error) {
	if requestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	request, err := s.repo.FindWithItems(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load request")
	}
	return request, nil
}

// UpdateFulfillment persists per-item edits. When every item ends up
// fulfilled the request flips to fulfilled and the quantities merge into
// branch inventory. Reopening later does not unwind the merge, so the flip
// only fires on the pending -> fulfilled transition.
func (s *service) UpdateFulfillment(ctx context.Context, input UpdateFulfillmentInput) (*models.Request, error) {
	if input.RequestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if len(input.Edits) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no edits provided")
	}
	for _, edit := range input.Edits {
		if edit.ItemID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
		}
		if edit.Qty != nil && *edit.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		}
	}

	var updated *models.Request
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		request, err := repo.FindWithItems(ctx, input.RequestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load request")
		}
		if request.Status == enums.RequestStatusFulfilled {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "request already fulfilled")
		}

		itemsByID := make(map[uuid.UUID]*models.RequestItem, len(request.Items))
		for i := range request.Items {
			itemsByID[request.Items[i].ID] = &request.Items[i]
		}

		for _, edit := range input.Edits {
			item, ok := itemsByID[edit.ItemID]
			if !ok {
				return pkgerrors.New(pkgerrors.CodeNotFound, "request item not found")
			}
			updates := map[string]any{}
			if edit.Qty != nil {
				item.Quantity = *edit.Qty
				updates["quantity"] = *edit.Qty
			}
			if edit.Fulfilled != nil {
				item.Fulfilled = *edit.Fulfilled
				updates["fulfilled"] = *edit.Fulfilled
			}
			if len(updates) == 0 {
				continue
			}
			if err := repo.UpdateItem(ctx, item.ID, updates); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update request item")
			}
		}

		allFulfilled := len(request.Items) > 0
		for i := range request.Items {
			if !request.Items[i].Fulfilled {
				allFulfilled = false
				break
			}
		}
		if !allFulfilled {
			updated = request
			return nil
		}

		now := time.Now().UTC()
		if err := repo.UpdateStatus(ctx, request.ID, enums.RequestStatusFulfilled, &now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update request status")
		}
		request.Status = enums.RequestStatusFulfilled
		request.FulfilledAt = &now

		for i := range request.Items {
			item := request.Items[i]
			result, err := s.inventory.ApplyDelta(ctx, tx, inventory.ApplyDeltaInput{
				BranchID:     request.BranchID,
				IngredientID: item.IngredientID,
				Delta:        item.Quantity,
				At:           now,
			})
			if err != nil {
				return err
			}

			event := outbox.DomainEvent{
				EventType:     enums.EventStockLevelChanged,
				AggregateType: enums.AggregateBranchInventory,
				AggregateID:   result.Row.ID,
				Version:       1,
				Actor:         buildActor(input.ActorUserID, request.BranchID, input.ActorRole),
				Data: payloads.StockLevelChangedEvent{
					BranchID:     request.BranchID,
					IngredientID: item.IngredientID,
					PreviousQty:  result.PreviousQty,
					NewQty:       result.Row.OnHandQty,
					ReorderPt:    result.Row.ReorderPt,
					CheckedAt:    now,
				},
			}
			if err := s.outbox.Emit(ctx, tx, event); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue stock event")
			}
		}

		fulfilledEvent := outbox.DomainEvent{
			EventType:     enums.EventRequestFulfilled,
			AggregateType: enums.AggregateRequest,
			AggregateID:   request.ID,
			Version:       1,
			Actor:         buildActor(input.ActorUserID, request.BranchID, input.ActorRole),
			Data: payloads.RequestFulfilledEvent{
				RequestID:   request.ID,
				BranchID:    request.BranchID,
				ItemCount:   len(request.Items),
				FulfilledAt: now,
			},
		}
		if err := s.outbox.Emit(ctx, tx, fulfilledEvent); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue request event")
		}

		updated = request
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Reopen flips fulfilled back to pending. The inventory merge performed at
// fulfillment time is intentionally not unwound.
func (s *service) Reopen(ctx context.Context, input ReopenInput) error {
	if input.RequestID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	if input.ActorUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		request, err := repo.FindWithItems(ctx, input.RequestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load request")
		}
		if request.Status == enums.RequestStatusPending {
			return nil
		}
		if err := repo.UpdateStatus(ctx, request.ID, enums.RequestStatusPending, nil); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reopen request")
		}
		return nil
	})
}

func buildActor(userID, branchID uuid.UUID, role string) *outbox.ActorRef {
	branch := branchID
	return &outbox.ActorRef{
		UserID:   userID,
		BranchID: &branch,
		Role:     role,
	}
}
