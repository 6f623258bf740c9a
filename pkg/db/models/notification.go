package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/calderacafe/brewstock-backend/pkg/enums"
)

// Notification stores in-app notification payloads scoped to branches.
type Notification struct {
	ID           uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	BranchID     uuid.UUID              `gorm:"column:branch_id;type:uuid;not null"`
	IngredientID *uuid.UUID             `gorm:"column:ingredient_id;type:uuid"`
	Type         enums.NotificationType `gorm:"column:type;type:notification_type;not null"`
	Title        string                 `gorm:"column:title;type:text;not null"`
	Message      string                 `gorm:"column:message;type:text;not null"`
	ReadAt       *time.Time             `gorm:"column:read_at;type:timestamptz"`
	CreatedAt    time.Time              `gorm:"column:created_at;type:timestamptz;default:now()"`
}
