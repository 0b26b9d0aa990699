package model

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Principal identifies the authenticated caller of a use case. It is built
// from verified credentials at the transport edge and passed down explicitly;
// use cases never reach into ambient session state.
type Principal struct {
	UserID string
	Role   Role
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }
