package auth

// Role represents a user role within a tenant. Superadmin is the platform
// operator role used by the billing console and spans all tenants.
type Role string

const (
	RoleCobrador   Role = "cobrador"
	RoleManager    Role = "manager"
	RoleAdmin      Role = "admin"
	RoleSuperadmin Role = "superadmin"
)

// NormalizeRole validates and normalizes a role string.
func NormalizeRole(value string) (Role, bool) {
	switch Role(value) {
	case RoleCobrador, RoleManager, RoleAdmin, RoleSuperadmin:
		return Role(value), true
	default:
		return "", false
	}
}

// RoleAtLeast returns true when role satisfies required role.
func RoleAtLeast(role Role, required Role) bool {
	return roleRank(role) >= roleRank(required)
}

func roleRank(role Role) int {
	switch role {
	case RoleCobrador:
		return 1
	case RoleManager:
		return 2
	case RoleAdmin:
		return 3
	case RoleSuperadmin:
		return 4
	default:
		return 0
	}
}
