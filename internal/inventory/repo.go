package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/calderacafe/brewstock-backend/pkg/db/models"
)

// Repository exposes persistence helpers for branch inventory rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindPair(ctx context.Context, branchID, ingredientID uuid.UUID) (*models.BranchInventory, error)
	FindPairForUpdate(ctx context.Context, branchID, ingredientID uuid.UUID) (*models.BranchInventory, error)
	Upsert(ctx context.Context, row *models.BranchInventory) error
	ListByBranch(ctx context.Context, branchID uuid.UUID) ([]models.BranchInventory, error)
	SetReorderPoint(ctx context.Context, branchID, ingredientID uuid.UUID, reorderPt int) (bool, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an inventory repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) FindPair(ctx context.Context, branchID, ingredientID uuid.UUID) (*models.BranchInventory, error) {
	var row models.BranchInventory
	err := r.db.WithContext(ctx).
		Where("branch_id = ? AND ingredient_id = ?", branchID, ingredientID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repositoryImpl) FindPairForUpdate(ctx context.Context, branchID, ingredientID uuid.UUID) (*models.BranchInventory, error) {
	var row models.BranchInventory
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("branch_id = ? AND ingredient_id = ?", branchID, ingredientID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Upsert writes the latest-known state keyed on (branch_id, ingredient_id).
// The reorder point is deliberately left out of the conflict assignments so
// count writes never clobber a configured threshold.
func (r *repositoryImpl) Upsert(ctx context.Context, row *models.BranchInventory) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "branch_id"}, {Name: "ingredient_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"on_hand_qty":  row.OnHandQty,
				"last_change":  row.LastChange,
				"last_checked": row.LastChecked,
			}),
		}).
		Create(row).Error
}

func (r *repositoryImpl) ListByBranch(ctx context.Context, branchID uuid.UUID) ([]models.BranchInventory, error) {
	var rows []models.BranchInventory
	err := r.db.WithContext(ctx).
		Preload("Ingredient").
		Where("branch_id = ?", branchID).
		Order("last_checked DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repositoryImpl) SetReorderPoint(ctx context.Context, branchID, ingredientID uuid.UUID, reorderPt int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.BranchInventory{}).
		Where("branch_id = ? AND ingredient_id = ?", branchID, ingredientID).
		UpdateColumn("reorder_pt", reorderPt)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
