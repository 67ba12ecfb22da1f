package user

import "time"

type Role string

const (
	RoleMerchant Role = "merchant" // Outlet owner - full access
	RoleManager  Role = "manager"  // Can approve shift records
	RoleStaff    Role = "staff"    // Regular staff member
)

// User is the directory entry for a staff member. This service reads
// the directory; account management lives in the identity service.
type User struct {
	ID          string
	DisplayName string
	Email       string
	Role        Role

	// Schedule policy used for lateness/overtime derivation. Both are
	// optional; unscheduled users are never late and never overtime.
	ExpectedStart      *string  // "HH:MM", UTC clock time
	ExpectedShiftHours *float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsMerchant checks if user owns the outlet
func (u *User) IsMerchant() bool {
	return u.Role == RoleMerchant
}

// IsManager checks if user is manager or merchant
func (u *User) IsManager() bool {
	return u.Role == RoleManager || u.Role == RoleMerchant
}

// CanApprove checks if user can decide on completed shift records
func (u *User) CanApprove() bool {
	return u.IsManager()
}

// IsPrivileged reports whether a raw role string carries approval
// rights. Used by middleware where only the claim string is available.
func IsPrivileged(role Role) bool {
	return role == RoleManager || role == RoleMerchant
}

// ParseRole validates a raw role claim.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleMerchant, RoleManager, RoleStaff:
		return Role(s), nil
	}
	return "", ErrInvalidRole
}
