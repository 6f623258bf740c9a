package enums

import "fmt"

// BranchAction maps to the branch_action enum in Postgres. Each value
// corresponds to one append-only branch_activity row.
type BranchAction string

const (
	BranchActionCreated  BranchAction = "created"
	BranchActionUpdated  BranchAction = "updated"
	BranchActionDeleted  BranchAction = "deleted"
	BranchActionOpened   BranchAction = "opened"
	BranchActionClosed   BranchAction = "closed"
	BranchActionReopened BranchAction = "reopened"
)

var validBranchActions = []BranchAction{
	BranchActionCreated,
	BranchActionUpdated,
	BranchActionDeleted,
	BranchActionOpened,
	BranchActionClosed,
	BranchActionReopened,
}

// IsValid checks whether the given action matches the canonical enum.
func (a BranchAction) IsValid() bool {
	for _, candidate := range validBranchActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseBranchAction converts raw strings into BranchAction.
func ParseBranchAction(value string) (BranchAction, error) {
	for _, candidate := range validBranchActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid branch action %q", value)
}
