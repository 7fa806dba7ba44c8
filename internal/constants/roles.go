package constants

import (
	"database/sql/driver"
	"fmt"
)

// Role mirrors the Postgres ENUM 'user_role'
type Role string

const (
	RoleMember    Role = "member"
	RoleScanner   Role = "scanner"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
	RoleCore      Role = "core"
)

// Stringer ­– convenient for fmt / logs
func (r Role) String() string { return string(r) }

// CanScan reports whether the role may operate a scanning device.
func (r Role) CanScan() bool {
	switch r {
	case RoleScanner, RoleModerator, RoleAdmin, RoleCore:
		return true
	}
	return false
}

// CanAdminister reports whether the role may issue penalties and
// manage events.
func (r Role) CanAdminister() bool {
	switch r {
	case RoleModerator, RoleAdmin, RoleCore:
		return true
	}
	return false
}

/* ---------- DB adapters so sqlx (or database/sql) scans/values cleanly ---------- */

// Scan implements the sql.Scanner interface
func (r *Role) Scan(src interface{}) error {
	if src == nil {
		*r = ""
		return nil
	}
	switch v := src.(type) {
	case string:
		*r = Role(v)
	case []byte:
		*r = Role(v)
	default:
		return fmt.Errorf("Role: cannot scan type %T", src)
	}
	return nil
}

// Value implements the driver.Valuer interface
func (r Role) Value() (driver.Value, error) { return string(r), nil }
