package entity

// Role represents an authorization role carried by an account.
// Only admin may write events.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

func (r Role) String() string { return string(r) }
