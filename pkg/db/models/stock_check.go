package models

import (
	"time"

	"github.com/google/uuid"
)

// StockCheck is an immutable record of one counting session at a branch.
type StockCheck struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	BranchID  uuid.UUID `gorm:"column:branch_id;type:uuid;not null;index"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null"`
	StaffName *string   `gorm:"column:staff_name"`
	CheckedAt time.Time `gorm:"column:checked_at;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`

	Items  []StockCheckItem `gorm:"foreignKey:StockCheckID"`
	Branch *Branch          `gorm:"foreignKey:BranchID"`
}

// StockCheckItem holds one counted quantity within a stock check. Rows are
// immutable history; the feed delete flow is the only thing that removes them.
type StockCheckItem struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	StockCheckID uuid.UUID `gorm:"column:stock_check_id;type:uuid;not null;index"`
	IngredientID uuid.UUID `gorm:"column:ingredient_id;type:uuid;not null"`
	OnHandQty    int       `gorm:"column:on_hand_qty;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`

	Ingredient *Ingredient `gorm:"foreignKey:IngredientID"`
}
