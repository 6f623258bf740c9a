package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/calderacafe/brewstock-backend/pkg/enums"
)

// Request is a staff-initiated ask for ingredients. Status moves pending →
// fulfilled when every item is marked fulfilled, and may be reopened without
// unwinding the inventory merge.
type Request struct {
	ID          uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	BranchID    uuid.UUID           `gorm:"column:branch_id;type:uuid;not null;index"`
	UserID      uuid.UUID           `gorm:"column:user_id;type:uuid;not null"`
	Status      enums.RequestStatus `gorm:"column:status;type:request_status;not null;default:'pending'"`
	Comment     *string             `gorm:"column:comment"`
	RequestedAt time.Time           `gorm:"column:requested_at;not null"`
	FulfilledAt *time.Time          `gorm:"column:fulfilled_at"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`

	Items     []RequestItem `gorm:"foreignKey:RequestID"`
	Branch    *Branch       `gorm:"foreignKey:BranchID"`
	Requester *User         `gorm:"foreignKey:UserID"`
}

// RequestItem is one requested ingredient line. Quantity and the fulfilled
// flag are the only mutable fields, and only through the fulfillment edit
// workflow.
type RequestItem struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	RequestID      uuid.UUID `gorm:"column:request_id;type:uuid;not null;index"`
	IngredientID   uuid.UUID `gorm:"column:ingredient_id;type:uuid;not null"`
	Quantity       int       `gorm:"column:quantity;not null"`
	Fulfilled      bool      `gorm:"column:fulfilled;not null;default:false"`
	CurrentQty     *int      `gorm:"column:current_qty"`
	RecommendedQty *int      `gorm:"column:recommended_qty"`
	Note           *string   `gorm:"column:note"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`

	Ingredient *Ingredient `gorm:"foreignKey:IngredientID"`
}
