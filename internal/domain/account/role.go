package account

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleDeveloper Role = "developer"
)

// Action names an operation against catalog resources. Read covers every
// listing/lookup; the rest are mutations.
type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"

	// ActionManageUsers covers the account listing; admin only, like every
	// non-read action.
	ActionManageUsers Action = "manage_users"
)

// Allowed is the role policy: catalog mutations require the admin role,
// reads only require a resolved identity. It is evaluated after
// authentication has already succeeded and never sees an anonymous caller.
func Allowed(role Role, action Action) bool {
	if action == ActionRead {
		return role == RoleAdmin || role == RoleDeveloper
	}
	return role == RoleAdmin
}
