package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/calderacafe/brewstock-backend/pkg/enums"
)

// BranchActivity is an append-only audit row; it is never mutated or deleted.
type BranchActivity struct {
	ID        uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	BranchID  uuid.UUID          `gorm:"column:branch_id;type:uuid;not null;index"`
	ActorID   uuid.UUID          `gorm:"column:actor_id;type:uuid;not null"`
	Action    enums.BranchAction `gorm:"column:action;type:branch_action;not null"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime"`
}
