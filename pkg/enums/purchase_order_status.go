package enums

import "fmt"

// PurchaseOrderStatus maps to the purchase_order_status enum in Postgres.
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusDraft    PurchaseOrderStatus = "draft"
	PurchaseOrderStatusOrdered  PurchaseOrderStatus = "ordered"
	PurchaseOrderStatusReceived PurchaseOrderStatus = "received"
	PurchaseOrderStatusCanceled PurchaseOrderStatus = "canceled"
)

var validPurchaseOrderStatuses = []PurchaseOrderStatus{
	PurchaseOrderStatusDraft,
	PurchaseOrderStatusOrdered,
	PurchaseOrderStatusReceived,
	PurchaseOrderStatusCanceled,
}

// IsValid checks whether the given status matches the canonical enum.
func (s PurchaseOrderStatus) IsValid() bool {
	for _, candidate := range validPurchaseOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParsePurchaseOrderStatus converts raw strings into PurchaseOrderStatus.
func ParsePurchaseOrderStatus(value string) (PurchaseOrderStatus, error) {
	for _, candidate := range validPurchaseOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid purchase order status %q", value)
}
