package rbac

// Permission constants. Party-scoped checks (is this caller the client or the
// creative of a work order) live in the lifecycle service; RBAC only covers
// role-gated surfaces such as dispute resolution.
const (
	PermissionResolveDispute    = "dispute:resolve"
	PermissionListAllWorkOrders = "workorder:list_all"
	PermissionReplayOutbox      = "outbox:replay"

	PermissionCreateProject = "project:create"
	PermissionReadWorkOrder = "workorder:read"
)

// Role constants.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var rolePermissions = map[string][]string{
	RoleUser: {
		PermissionCreateProject,
		PermissionReadWorkOrder,
	},
	RoleAdmin: {
		PermissionCreateProject,
		PermissionReadWorkOrder,
		PermissionResolveDispute,
		PermissionListAllWorkOrders,
		PermissionReplayOutbox,
	},
}

// HasPermission checks whether a role grants the given permission.
func HasPermission(role, permission string) bool {
	permissions, ok := rolePermissions[role]
	if !ok {
		return false
	}
	for _, p := range permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// CheckPermission returns a PermissionDeniedError when the role lacks the
// permission, which handlers map to a 403.
func CheckPermission(role, permission string) error {
	if !HasPermission(role, permission) {
		return &PermissionDeniedError{Role: role, Permission: permission}
	}
	return nil
}

type PermissionDeniedError struct {
	Role       string
	Permission string
}

func (e *PermissionDeniedError) Error() string {
	return "insufficient permissions"
}
