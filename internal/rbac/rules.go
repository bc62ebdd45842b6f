package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"teacher": {
		"exam:create",
		"exam:view",
		"exam:delete",
		"student:view",
		"student:manage",
		"result:write",
		"result:view",
		"analytics:view",
	},
	"admin": {
		"*", // everything
	},
}
