package model

import "time"

// Role values stored in users.role.  The set is closed: every permission
// check enumerates the roles it accepts from these constants, never from
// request input.
const (
	RoleUser      = "USER"
	RoleStudent   = "STUDENT"
	RoleTeacher   = "TEACHER"
	RoleLibrarian = "LIBRARIAN"
	RoleAdmin     = "ADMIN"
)

// ValidRole reports whether s is one of the known role names.
func ValidRole(s string) bool {
	switch s {
	case RoleUser, RoleStudent, RoleTeacher, RoleLibrarian, RoleAdmin:
		return true
	}
	return false
}

// User represents an application user record as stored in the `users`
// table.  Each field corresponds to a column in the database.  The json
// tags are omitted here because these structs are used internally by the
// repository layer; handlers define separate response types with
// appropriate JSON tags so the password hash can never be serialized.
//
// IsActive starts false and flips to true when the account's email
// verification token is consumed.  Role starts as USER and is promoted to
// STUDENT or TEACHER as a side effect of profile creation.
type User struct {
	ID           string    // users.id (UUID v4)
	Username     string    // users.username
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	IsActive     bool      // users.is_active
	Phone        *string   // users.phone (optional)
	Avatar       *string   // users.avatar (optional)
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
