// Package payloads defines the event bodies carried inside the outbox
// envelope. Versioned decoders live in pkg/outbox/registry.
package payloads

import (
	"time"

	"github.com/google/uuid"
)

// StockLevelChangedEvent is emitted whenever a stock check moves an
// on-hand quantity. One event per ingredient line, not per check.
type StockLevelChangedEvent struct {
	BranchID     uuid.UUID `json:"branchId"`
	IngredientID uuid.UUID `json:"ingredientId"`
	StockCheckID uuid.UUID `json:"stockCheckId"`
	PreviousQty  int       `json:"previousQty"`
	NewQty       int       `json:"newQty"`
	ReorderPt    int       `json:"reorderPt"`
	CheckedAt    time.Time `json:"checkedAt"`
}

// RequestFulfilledEvent is emitted when an ingredient request transitions
// to fulfilled, after all of its line items were marked.
type RequestFulfilledEvent struct {
	RequestID   uuid.UUID `json:"requestId"`
	BranchID    uuid.UUID `json:"branchId"`
	ItemCount   int       `json:"itemCount"`
	FulfilledAt time.Time `json:"fulfilledAt"`
}

// BranchStatusChangedEvent is emitted when a branch opens or closes.
type BranchStatusChangedEvent struct {
	BranchID  uuid.UUID `json:"branchId"`
	Open      bool      `json:"open"`
	ChangedAt time.Time `json:"changedAt"`
}
