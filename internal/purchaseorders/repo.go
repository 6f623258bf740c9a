package purchaseorders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/calderacafe/brewstock-backend/pkg/db/models"
	"github.com/calderacafe/brewstock-backend/pkg/enums"
)

// Repository reads and transitions the purchase order documents the low-stock
// trigger produces.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListByBranch(ctx context.Context, branchID uuid.UUID, status *enums.PurchaseOrderStatus) ([]models.PurchaseOrder, error)
	FindWithItems(ctx context.Context, orderID uuid.UUID) (*models.PurchaseOrder, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, from, to enums.PurchaseOrderStatus) (bool, error)
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

func (r *repositoryImpl) ListByBranch(ctx context.Context, branchID uuid.UUID, status *enums.PurchaseOrderStatus) ([]models.PurchaseOrder, error) {
	query := r.db.WithContext(ctx).
		Preload("Items.Ingredient").
		Where("branch_id = ?", branchID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	var orders []models.PurchaseOrder
	if err := query.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repositoryImpl) FindWithItems(ctx context.Context, orderID uuid.UUID) (*models.PurchaseOrder, error) {
	var order models.PurchaseOrder
	err := r.db.WithContext(ctx).
		Preload("Items.Ingredient").
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateStatus moves the order between states only when it is currently in
// the expected one, reporting whether the transition happened.
func (r *repositoryImpl) UpdateStatus(ctx context.Context, orderID uuid.UUID, from, to enums.PurchaseOrderStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.PurchaseOrder{}).
		Where("id = ? AND status = ?", orderID, from).
		Update("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
