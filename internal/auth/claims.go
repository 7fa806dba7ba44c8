package auth

import "robotique/eventmanager/internal/constants"

// UserClaims is the authenticated identity attached to a request by
// the auth middleware.
type UserClaims interface {
	UserID() string
	Username() string
	Role() constants.Role
	Source() string
}

// APIKeyClaims is the identity resolved from an X-API-Key header.
type APIKeyClaims struct {
	UserUUID    string
	UsernameVal string
	RoleValue   constants.Role
}

func (c *APIKeyClaims) UserID() string       { return c.UserUUID }
func (c *APIKeyClaims) Username() string     { return c.UsernameVal }
func (c *APIKeyClaims) Role() constants.Role { return c.RoleValue }
func (c *APIKeyClaims) Source() string       { return "API_KEY" }
