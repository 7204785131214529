package constants

import (
	"database/sql/driver"
	"fmt"
)

// Role mirrors the Postgres ENUM 'member_role'
type Role string

const (
	RoleApplicant  Role = "applicant"
	RoleIntern     Role = "intern"
	RoleMember     Role = "member"
	RoleViceLeader Role = "vice_leader"
	RoleLeader     Role = "leader"
)

// FormalRoles are the two roles whose combined headcount is held invariant.
var FormalRoles = []Role{RoleViceLeader, RoleMember}

// String is convenient for fmt / logs
func (r Role) String() string { return string(r) }

// IsFormal reports whether the role counts toward the formal roster.
func (r Role) IsFormal() bool {
	return r == RoleMember || r == RoleViceLeader
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
