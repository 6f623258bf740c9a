package models

import (
	"time"

	"github.com/google/uuid"
)

// Branch is a physical café location. Branches are never hard-deleted while
// inventory or request history references them; the open flag tracks whether
// the location is currently trading.
type Branch struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string     `gorm:"column:name;not null"`
	Address   *string    `gorm:"column:address"`
	Timezone  string     `gorm:"column:timezone;not null;default:'UTC'"`
	Open      bool       `gorm:"column:open;not null;default:true"`
	OwnerID   uuid.UUID  `gorm:"column:owner_id;type:uuid;not null"`
	DeletedAt *time.Time `gorm:"column:deleted_at"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
