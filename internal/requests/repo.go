package requests

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/calderacafe/brewstock-backend/pkg/db/models"
	"github.com/calderacafe/brewstock-backend/pkg/enums"
)

// Repository exposes persistence helpers for ingredient requests.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, request *models.Request) error
	FindWithItems(ctx context.Context, requestID uuid.UUID) (*models.Request, error)
	ListByBranch(ctx context.Context, branchID uuid.UUID, limit int) ([]models.Request, error)
	UpdateItem(ctx context.Context, itemID uuid.UUID, updates map[string]any) error
	UpdateStatus(ctx context.Context, requestID uuid.UUID, status enums.RequestStatus, fulfilledAt *time.Time) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a request repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, request *models.Request) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *repositoryImpl) FindWithItems(ctx context.Context, requestID uuid.UUID) (*models.Request, error) {
	var request models.Request
	err := r.db.WithContext(ctx).
		Preload("Items.Ingredient").
		Where("id = ?", requestID).
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repositoryImpl) ListByBranch(ctx context.Context, branchID uuid.UUID, limit int) ([]models.Request, error) {
	var rows []models.Request
	err := r.db.WithContext(ctx).
		Preload("Items.Ingredient").
		Preload("Requester").
		Where("branch_id = ?", branchID).
		Order("requested_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *repositoryImpl) UpdateItem(ctx context.Context, itemID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.RequestItem{}).
		Where("id = ?", itemID).
		Updates(updates).Error
}

func (r *repositoryImpl) UpdateStatus(ctx context.Context, requestID uuid.UUID, status enums.RequestStatus, fulfilledAt *time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Request{}).
		Where("id = ?", requestID).
		Updates(map[string]any{
			"status":       status,
			"fulfilled_at": fulfilledAt,
		}).Error
}
