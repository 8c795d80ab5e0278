package httpserver

// Operation identifiers for privileged endpoints. Each operation declares
// its required permission names once; the authorize gate checks them
// uniformly instead of per-handler string literals.
const (
	opCreatePermission = "create_permission"
	opReadPermissions  = "read_permissions"
	opUpdatePermission = "update_permission"
	opDeletePermission = "delete_permission"
	opManageUserGroups = "manage_user_groups"
	opReadOwnHistory   = "read_own_history"
)

// requiredPermissions maps an operation to the permission names a subject
// must hold, all of them. An operation absent from the map (or mapped to an
// empty list) only needs a valid, non-revoked access token.
var requiredPermissions = map[string][]string{
	opCreatePermission: {"create_permission"},
	opReadPermissions:  {"permissions.read_permissions"},
	opUpdatePermission: {"update_permission"},
	opDeletePermission: {"permissions.delete_permission"},
	opManageUserGroups: {"manage_user_groups"},
	opReadOwnHistory:   nil,
}
