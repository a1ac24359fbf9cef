package models

// Role enumerates the permission levels carried by a Principal.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleOperator Role = "OPERATOR"
)

// Principal is the authenticated caller. It is passed explicitly into every service call.
type Principal struct {
	UserID string
	Email  string
	Name   string
	Role   Role
}

// IsAdmin reports whether the principal may manage shared data such as categories.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
