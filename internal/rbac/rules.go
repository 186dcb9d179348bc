package rbac

// Role names used across the program.
const (
	RoleStudent    = "student"
	RoleInstructor = "instructor"
	RoleAdmin      = "admin"
)

// RolePermissions is the default policy. Expand as needed.
var RolePermissions = map[string][]string{
	RoleStudent: {
		"eval:view-own",
		"lab:view",
		"lab:signup",
		"clinical:create",
		"clinical:view-own",
		"task:view-own",
		"task:update-own",
		"notify:view",
		"user:change_password",
	},
	RoleInstructor: {
		"eval:create",
		"eval:grade",
		"eval:view-all",
		"lab:create",
		"lab:view",
		"lab:roster",
		"clinical:view-all",
		"clinical:review",
		"task:create",
		"task:view-all",
		"task:update",
		"report:view",
		"users:list",
		"notify:view",
		"user:change_password",
	},
	RoleAdmin: {
		"*", // everything
	},
}
