package reorder

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/calderacafe/brewstock-backend/pkg/db/models"
	"github.com/calderacafe/brewstock-backend/pkg/enums"
)

// Repository covers the persistence needed by the low-stock trigger: draft
// purchase orders, their line items, and the lookups that feed the
// notification message.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindInventory(ctx context.Context, branchID, ingredientID uuid.UUID) (*models.BranchInventory, error)
	FindDraftForUpdate(ctx context.Context, branchID uuid.UUID) (*models.PurchaseOrder, error)
	CreateDraft(ctx context.Context, order *models.PurchaseOrder) error
	FindItem(ctx context.Context, orderID, ingredientID uuid.UUID) (*models.PurchaseOrderItem, error)
	CreateItem(ctx context.Context, item *models.PurchaseOrderItem) error
	RaiseItemQty(ctx context.Context, itemID uuid.UUID, suggestedQty int) error
	FindIngredient(ctx context.Context, ingredientID uuid.UUID) (*models.Ingredient, error)
	FindBranch(ctx context.Context, branchID uuid.UUID) (*models.Branch, error)
	InsertNotification(ctx context.Context, notification *models.Notification) error
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

func (r *repositoryImpl) FindInventory(ctx context.Context, branchID, ingredientID uuid.UUID) (*models.BranchInventory, error) {
	var row models.BranchInventory
	err := r.db.WithContext(ctx).
		Where("branch_id = ? AND ingredient_id = ?", branchID, ingredientID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// FindDraftForUpdate locks the most recent draft order for the branch so two
// concurrent triggers cannot both create one.
func (r *repositoryImpl) FindDraftForUpdate(ctx context.Context, branchID uuid.UUID) (*models.PurchaseOrder, error) {
	var order models.PurchaseOrder
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("branch_id = ? AND status = ?", branchID, enums.PurchaseOrderStatusDraft).
		Order("created_at DESC").
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *repositoryImpl) CreateDraft(ctx context.Context, order *models.PurchaseOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repositoryImpl) FindItem(ctx context.Context, orderID, ingredientID uuid.UUID) (*models.PurchaseOrderItem, error) {
	var item models.PurchaseOrderItem
	err := r.db.WithContext(ctx).
		Where("purchase_order_id = ? AND ingredient_id = ?", orderID, ingredientID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repositoryImpl) CreateItem(ctx context.Context, item *models.PurchaseOrderItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repositoryImpl) RaiseItemQty(ctx context.Context, itemID uuid.UUID, suggestedQty int) error {
	return r.db.WithContext(ctx).
		Model(&models.PurchaseOrderItem{}).
		Where("id = ?", itemID).
		Update("suggested_qty", suggestedQty).Error
}

func (r *repositoryImpl) FindIngredient(ctx context.Context, ingredientID uuid.UUID) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	err := r.db.WithContext(ctx).
		Where("id = ?", ingredientID).
		First(&ingredient).Error
	if err != nil {
		return nil, err
	}
	return &ingredient, nil
}

func (r *repositoryImpl) FindBranch(ctx context.Context, branchID uuid.UUID) (*models.Branch, error) {
	var branch models.Branch
	err := r.db.WithContext(ctx).
		Where("id = ?", branchID).
		First(&branch).Error
	if err != nil {
		return nil, err
	}
	return &branch, nil
}

func (r *repositoryImpl) InsertNotification(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}
