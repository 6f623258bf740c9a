package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category labels a group of ingredients. Categories are created ad hoc from
// the ingredient entry flow.
type Category struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// Ingredient is a catalog item shared across branches. Archiving is a soft
// delete that preserves every historical reference.
type Ingredient struct {
	ID          uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string           `gorm:"column:name;not null"`
	Unit        string           `gorm:"column:unit;not null"`
	CategoryID  *uuid.UUID       `gorm:"column:category_id;type:uuid"`
	CostPerUnit *decimal.Decimal `gorm:"column:cost_per_unit;type:numeric(12,4)"`
	Archived    bool             `gorm:"column:archived;not null;default:false"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`

	Category *Category `gorm:"foreignKey:CategoryID"`
}
