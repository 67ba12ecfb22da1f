package user

type Permission string

const (
	// Shift attendance
	PermissionShiftViewOwn Permission = "shift.view_own"
	PermissionShiftCreate  Permission = "shift.create"
	PermissionShiftViewAll Permission = "shift.view_all"
	PermissionShiftApprove Permission = "shift.approve"

	// Statistics
	PermissionStatsViewOwn Permission = "stats.view_own"
	PermissionStatsViewAll Permission = "stats.view_all"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleMerchant: {
		PermissionShiftViewOwn,
		PermissionShiftCreate,
		PermissionShiftViewAll,
		PermissionShiftApprove,
		PermissionStatsViewOwn,
		PermissionStatsViewAll,
	},
	RoleManager: {
		PermissionShiftViewOwn,
		PermissionShiftCreate,
		PermissionShiftViewAll,
		PermissionShiftApprove,
		PermissionStatsViewOwn,
		PermissionStatsViewAll,
	},
	RoleStaff: {
		PermissionShiftViewOwn,
		PermissionShiftCreate,
		PermissionStatsViewOwn,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	perms, ok := RolePermissions[role]
	if !ok {
		return false
	}
	for _, p := range perms {
		if p == permission {
			return true
		}
	}
	return false
}
