package auth

// Roles in ascending order of privilege.
const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// PermissionAll short-circuits every permission check.
const PermissionAll = "all"

type RoleInfo struct {
	Name        string   `json:"name"`
	DisplayName string   `json:"display_name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

var roles = map[string]RoleInfo{
	RoleSuperAdmin: {
		Name:        RoleSuperAdmin,
		DisplayName: "مدير عام",
		Description: "صلاحيات كاملة على النظام",
		Permissions: []string{PermissionAll},
	},
	RoleAdmin: {
		Name:        RoleAdmin,
		DisplayName: "مدير",
		Description: "إدارة المستخدمين والمحتوى",
		Permissions: []string{"manage_users", "manage_content", "view_analytics"},
	},
	RoleUser: {
		Name:        RoleUser,
		DisplayName: "مستخدم",
		Description: "صلاحيات أساسية",
		Permissions: []string{"view_content", "edit_profile"},
	},
}

var roleRank = map[string]int{
	RoleUser:       1,
	RoleAdmin:      2,
	RoleSuperAdmin: 3,
}

func ValidRole(role string) bool {
	_, ok := roles[role]
	return ok
}

func GetRole(role string) (RoleInfo, bool) {
	info, ok := roles[role]
	return info, ok
}

// HasPermission reports whether role grants permission. Unknown roles grant
// nothing.
func HasPermission(role, permission string) bool {
	info, ok := roles[role]
	if !ok {
		return false
	}
	for _, p := range info.Permissions {
		if p == PermissionAll || p == permission {
			return true
		}
	}
	return false
}

// HasHigherRole reports whether role outranks target.
func HasHigherRole(role, target string) bool {
	return roleRank[role] > roleRank[target]
}
