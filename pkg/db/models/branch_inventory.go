package models

import (
	"time"

	"github.com/google/uuid"
)

// BranchInventory is the authoritative latest-known quantity per
// (branch, ingredient) pair. At most one row exists per pair; both write
// paths (stock checks and request fulfillment) upsert on that key.
type BranchInventory struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	BranchID     uuid.UUID `gorm:"column:branch_id;type:uuid;not null;uniqueIndex:ux_branch_inventory_pair"`
	IngredientID uuid.UUID `gorm:"column:ingredient_id;type:uuid;not null;uniqueIndex:ux_branch_inventory_pair"`
	OnHandQty    int       `gorm:"column:on_hand_qty;not null;default:0"`
	ReorderPt    int       `gorm:"column:reorder_pt;not null;default:0"`
	LastChange   int       `gorm:"column:last_change;not null;default:0"`
	LastChecked  time.Time `gorm:"column:last_checked;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`

	Ingredient *Ingredient `gorm:"foreignKey:IngredientID"`
}

func (BranchInventory) TableName() string {
	return "branch_inventory"
}
