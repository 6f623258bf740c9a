package purchaseorders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/calderacafe/brewstock-backend/pkg/db/models"
	"github.com/calderacafe/brewstock-backend/pkg/enums"
	pkgerrors "github.com/calderacafe/brewstock-backend/pkg/errors"
)

// Service exposes the purchase order read and transition operations.
type Service interface {
	ListDrafts(ctx context.Context, branchID uuid.UUID) ([]models.PurchaseOrder, error)
	Get(ctx context.Context, orderID uuid.UUID) (*models.PurchaseOrder, error)
	MarkOrdered(ctx context.Context, orderID uuid.UUID) (*models.PurchaseOrder, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "purchase order repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListDrafts(ctx context.Context, branchID uuid.UUID) ([]models.PurchaseOrder, error) {
	if branchID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "branch id required")
	}
	status := enums.PurchaseOrderStatusDraft
	orders, err := s.repo.ListByBranch(ctx, branchID, &status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list purchase orders")
	}
	return orders, nil
}

func (s *service) Get(ctx context.Context, orderID uuid.UUID) (*models.PurchaseOrder, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase order id required")
	}
	order, err := s.repo.FindWithItems(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "purchase order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase order")
	}
	return order, nil
}

// MarkOrdered promotes a draft to ordered. A draft that was promoted by a
// concurrent call surfaces as a state conflict.
func (s *service) MarkOrdered(ctx context.Context, orderID uuid.UUID) (*models.PurchaseOrder, error) {
	order, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != enums.PurchaseOrderStatusDraft {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "purchase order is not a draft")
	}
	moved, err := s.repo.UpdateStatus(ctx, orderID, enums.PurchaseOrderStatusDraft, enums.PurchaseOrderStatusOrdered)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark purchase order ordered")
	}
	if !moved {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "purchase order is not a draft")
	}
	order.Status = enums.PurchaseOrderStatusOrdered
	return order, nil
}
