package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/calderacafe/brewstock-backend/pkg/enums"
)

// PurchaseOrder is the draft reorder document the low-stock trigger appends
// to. At most one draft is kept open per branch via lookup-or-create.
type PurchaseOrder struct {
	ID        uuid.UUID                 `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	BranchID  uuid.UUID                 `gorm:"column:branch_id;type:uuid;not null;index"`
	Status    enums.PurchaseOrderStatus `gorm:"column:status;type:purchase_order_status;not null;default:'draft'"`
	Notes     *string                   `gorm:"column:notes"`
	CreatedAt time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time                 `gorm:"column:updated_at;autoUpdateTime"`

	Items  []PurchaseOrderItem `gorm:"foreignKey:PurchaseOrderID"`
	Branch *Branch             `gorm:"foreignKey:BranchID"`
}

// PurchaseOrderItem is one suggested reorder line, keyed by ingredient within
// its document. Suggested quantities are only ever raised, never lowered.
type PurchaseOrderItem struct {
	ID              uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	PurchaseOrderID uuid.UUID `gorm:"column:purchase_order_id;type:uuid;not null;index"`
	IngredientID    uuid.UUID `gorm:"column:ingredient_id;type:uuid;not null"`
	SuggestedQty    int       `gorm:"column:suggested_qty;not null"`
	Note            *string   `gorm:"column:note"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`

	Ingredient *Ingredient `gorm:"foreignKey:IngredientID"`
}
