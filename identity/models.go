package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RoleName is a role membership name
type RoleName = string

const (
	// RoleAdmin is the elevated privilege role
	RoleAdmin RoleName = "Admin"
	// RoleClient is the standard customer role
	RoleClient RoleName = "Client"
)

// User is the user model. Lockout state lives on the record so it survives
// process restarts.
type User struct {
	bun.BaseModel     `bun:"table:users,alias:usr"`
	ID                uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Username          string     `bun:"username,notnull,unique" json:"username,omitempty"`
	PasswordHash      string     `bun:"password_hash" json:"password_hash,omitempty"`
	Email             string     `bun:"email,notnull,unique" json:"email,omitempty"`
	EmailConfirmed    bool       `bun:"email_confirmed" json:"email_confirmed,omitempty"`
	PhoneNumber       string     `bun:"phone_number" json:"phone_number,omitempty"`
	FirstName         string     `bun:"first_name,notnull" json:"first_name,omitempty"`
	LastName          string     `bun:"last_name,notnull" json:"last_name,omitempty"`
	FailedAccessCount int        `bun:"failed_access_count" json:"failed_access_count,omitempty"`
	LockoutUntil      *time.Time `bun:"lockout_until,nullzero" json:"lockout_until,omitempty"`
	CreatedAt         *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt         *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt         *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// FullName joins the name parts the way the name claim expects them.
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// IsLockedOut reports whether a lockout window is active at now.
func (u *User) IsLockedOut(now time.Time) bool {
	return u.LockoutUntil != nil && now.Before(*u.LockoutUntil)
}

// Role is a named role. Two roles exist by convention, Admin and Client; the
// set is otherwise open.
type Role struct {
	bun.BaseModel `bun:"table:roles,alias:rol"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name,notnull,unique" json:"name,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// UserRole is the membership join record, many-to-many between users and roles.
type UserRole struct {
	bun.BaseModel `bun:"table:user_roles,alias:ur"`
	ID            uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        uuid.UUID `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	RoleID        uuid.UUID `bun:"role_id,notnull,type:uuid" json:"role_id,omitempty"`
	User          *User     `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	Role          *Role     `bun:"rel:belongs-to,join:role_id=id" json:"role,omitempty"`
}
