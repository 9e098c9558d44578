package model

import "time"

// Roles a user can hold.  The role is fixed at registration.
const (
	RoleAdmin  = "ADMIN"
	RoleMember = "MEMBER"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r string) bool {
	return r == RoleAdmin || r == RoleMember
}

// User represents an application user record as stored in the
// `users` table.  PasswordHash is never serialized; every JSON
// projection of a user omits it.
//
// Fields:
//
//	ID           – primary key (UUID string).
//	Email        – unique email address, compared as stored.
//	PasswordHash – bcrypt hash (salt embedded in the hash).
//	Name         – display name.
//	Role         – ADMIN or MEMBER.
//	CreatedAt    – timestamp of creation.
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Name         string    `db:"name" json:"name"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// UserCounts is the activity summary shown in the admin user list.
type UserCounts struct {
	Applications int `json:"applications"`
	Jobs         int `json:"jobs"`
}

// UserSummary is a user plus how many jobs they posted and how many
// applications they submitted.
type UserSummary struct {
	User
	Counts UserCounts `json:"counts"`
}
