package stockchecks

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/calderacafe/brewstock-backend/pkg/db/models"
)

// Repository exposes persistence helpers for stock checks.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	BranchExists(ctx context.Context, branchID uuid.UUID) (bool, error)
	Create(ctx context.Context, check *models.StockCheck) error
	ListByBranch(ctx context.Context, branchID uuid.UUID, limit int) ([]models.StockCheck, error)
	BranchIDForCheck(ctx context.Context, checkID uuid.UUID) (uuid.UUID, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a stock check repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) BranchExists(ctx context.Context, branchID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Branch{}).
		Where("id = ? AND deleted_at IS NULL", branchID).
		Count(&count).Error
	return count > 0, err
}

// Create persists the check together with its items.
func (r *repositoryImpl) Create(ctx context.Context, check *models.StockCheck) error {
	return r.db.WithContext(ctx).Create(check).Error
}

// BranchIDForCheck resolves which branch a counting session belongs to.
func (r *repositoryImpl) BranchIDForCheck(ctx context.Context, checkID uuid.UUID) (uuid.UUID, error) {
	var check models.StockCheck
	err := r.db.WithContext(ctx).
		Select("id", "branch_id").
		First(&check, "id = ?", checkID).Error
	if err != nil {
		return uuid.Nil, err
	}
	return check.BranchID, nil
}

func (r *repositoryImpl) ListByBranch(ctx context.Context, branchID uuid.UUID, limit int) ([]models.StockCheck, error) {
	var checks []models.StockCheck
	err := r.db.WithContext(ctx).
		Preload("Items.Ingredient").
		Where("branch_id = ?", branchID).
		Order("checked_at DESC").
		Limit(limit).
		Find(&checks).Error
	return checks, err
}
