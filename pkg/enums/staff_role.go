package enums

import "fmt"

// StaffRole maps to the staff_role enum in Postgres.
type StaffRole string

const (
	StaffRoleOwner   StaffRole = "owner"
	StaffRoleManager StaffRole = "manager"
	StaffRoleStaff   StaffRole = "staff"
)

var validStaffRoles = []StaffRole{
	StaffRoleOwner,
	StaffRoleManager,
	StaffRoleStaff,
}

// IsValid checks whether the given role matches the canonical enum.
func (r StaffRole) IsValid() bool {
	for _, candidate := range validStaffRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// AtLeast reports whether the role grants the privileges of the other role.
// Owners outrank managers, managers outrank staff.
func (r StaffRole) AtLeast(other StaffRole) bool {
	return r.rank() >= other.rank()
}

func (r StaffRole) rank() int {
	switch r {
	case StaffRoleOwner:
		return 3
	case StaffRoleManager:
		return 2
	case StaffRoleStaff:
		return 1
	default:
		return 0
	}
}

// ParseStaffRole converts raw strings into StaffRole.
func ParseStaffRole(value string) (StaffRole, error) {
	for _, candidate := range validStaffRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid staff role %q", value)
}
