package branches

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/calderacafe/brewstock-backend/pkg/db/models"
)

// Repository exposes branch persistence plus the append-only audit trail.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, branch *models.Branch) error
	Find(ctx context.Context, branchID uuid.UUID) (*models.Branch, error)
	List(ctx context.Context) ([]models.Branch, error)
	Update(ctx context.Context, branchID uuid.UUID, updates map[string]any) error
	SoftDelete(ctx context.Context, branchID uuid.UUID, at time.Time) error
	AppendActivity(ctx context.Context, activity *models.BranchActivity) error
	ListActivity(ctx context.Context, branchID uuid.UUID, limit int) ([]models.BranchActivity, error)
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

func (r *repositoryImpl) Create(ctx context.Context, branch *models.Branch) error {
	return r.db.WithContext(ctx).Create(branch).Error
}

func (r *repositoryImpl) Find(ctx context.Context, branchID uuid.UUID) (*models.Branch, error) {
	var branch models.Branch
	err := r.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", branchID).
		First(&branch).Error
	if err != nil {
		return nil, err
	}
	return &branch, nil
}

func (r *repositoryImpl) List(ctx context.Context) ([]models.Branch, error) {
	var branches []models.Branch
	err := r.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		Order("name ASC").
		Find(&branches).Error
	if err != nil {
		return nil, err
	}
	return branches, nil
}

func (r *repositoryImpl) Update(ctx context.Context, branchID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Branch{}).
		Where("id = ? AND deleted_at IS NULL", branchID).
		Updates(updates).Error
}

func (r *repositoryImpl) SoftDelete(ctx context.Context, branchID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Branch{}).
		Where("id = ? AND deleted_at IS NULL", branchID).
		Update("deleted_at", at).Error
}

func (r *repositoryImpl) AppendActivity(ctx context.Context, activity *models.BranchActivity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *repositoryImpl) ListActivity(ctx context.Context, branchID uuid.UUID, limit int) ([]models.BranchActivity, error) {
	var rows []models.BranchActivity
	err := r.db.WithContext(ctx).
		Where("branch_id = ?", branchID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
