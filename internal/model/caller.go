package model

// Caller is the authenticated identity supplied by the access
// boundary. Every authorized operation takes it explicitly rather
// than re-reading role strings from transport state.
type Caller struct {
	PersonID int64
	Role     Role
}

// IsAdmin reports whether the caller holds the admin role.
func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin
}
