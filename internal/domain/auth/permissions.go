package auth

const (
	RoleAdmin     = "admin"
	RoleHRManager = "hr_manager"
	RoleManager   = "manager"
	RoleEmployee  = "employee"
)

const (
	PermPerformanceRead   = "performance.read"
	PermPerformanceWrite  = "performance.write"
	PermPerformanceManage = "performance.manage"
)

var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermPerformanceRead,
		PermPerformanceWrite,
	},
	RoleManager: {
		PermPerformanceRead,
		PermPerformanceWrite,
	},
	RoleHRManager: {
		PermPerformanceRead,
		PermPerformanceWrite,
		PermPerformanceManage,
	},
	RoleAdmin: {
		PermPerformanceRead,
		PermPerformanceWrite,
		PermPerformanceManage,
	},
}

func HasPermission(role, permission string) bool {
	for _, p := range RolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}
