package domain

// Role is a permission level on a single event, totally ordered:
// RoleNone < RoleViewer < RoleEditor < RoleOwner.
type Role string

const (
	RoleNone   Role = ""
	RoleViewer Role = "viewer"
	RoleEditor Role = "editor"
	RoleOwner  Role = "owner"
)

// ParseRole maps a request string onto a Role. Unknown values map to RoleNone.
func ParseRole(s string) Role {
	switch s {
	case string(RoleOwner):
		return RoleOwner
	case string(RoleEditor):
		return RoleEditor
	case string(RoleViewer):
		return RoleViewer
	default:
		return RoleNone
	}
}

// Rank returns the role's position in the hierarchy. Unknown roles rank as none.
func (r Role) Rank() int {
	switch r {
	case RoleOwner:
		return 3
	case RoleEditor:
		return 2
	case RoleViewer:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether r grants the permissions of required. This ordered
// comparison is the only authorization check in the system.
func (r Role) AtLeast(required Role) bool {
	return r.Rank() >= required.Rank()
}

// Grantable reports whether r may be granted through collaboration management.
// The owner role is only ever assigned atomically at event creation.
func (r Role) Grantable() bool {
	return r == RoleEditor || r == RoleViewer
}
