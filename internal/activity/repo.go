package activity

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/calderacafe/brewstock-backend/pkg/db/models"
	"github.com/calderacafe/brewstock-backend/pkg/enums"
)

// Repository reads the two ledgers behind the activity feed and handles the
// entry delete mappings.
type Repository interface {
	RecentStockChecks(ctx context.Context, branchID uuid.UUID, limit int) ([]models.StockCheck, error)
	RecentFulfilledRequests(ctx context.Context, branchID uuid.UUID, limit int) ([]models.Request, error)
	UsersByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error)
	DeleteStockCheckItem(ctx context.Context, itemID uuid.UUID) (bool, error)
	UnfulfillRequestItem(ctx context.Context, itemID uuid.UUID) (bool, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) RecentStockChecks(ctx context.Context, branchID uuid.UUID, limit int) ([]models.StockCheck, error) {
	var checks []models.StockCheck
	err := r.db.WithContext(ctx).
		Preload("Items.Ingredient").
		Preload("Branch").
		Where("branch_id = ?", branchID).
		Order("checked_at DESC").
		Limit(limit).
		Find(&checks).Error
	if err != nil {
		return nil, err
	}
	return checks, nil
}

func (r *repositoryImpl) RecentFulfilledRequests(ctx context.Context, branchID uuid.UUID, limit int) ([]models.Request, error) {
	var requests []models.Request
	err := r.db.WithContext(ctx).
		Preload("Items.Ingredient").
		Preload("Branch").
		Preload("Requester").
		Where("branch_id = ? AND status = ?", branchID, enums.RequestStatusFulfilled).
		Order("fulfilled_at DESC").
		Limit(limit).
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *repositoryImpl) UsersByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []models.User
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *repositoryImpl) DeleteStockCheckItem(ctx context.Context, itemID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ?", itemID).
		Delete(&models.StockCheckItem{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) UnfulfillRequestItem(ctx context.Context, itemID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.RequestItem{}).
		Where("id = ?", itemID).
		Update("fulfilled", false)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
