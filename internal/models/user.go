package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleAdmin   UserRole = "admin"
)

// Valid reports whether the role is one of the recognised values.
func (r UserRole) Valid() bool {
	switch r {
	case RoleStudent, RoleAdmin:
		return true
	}
	return false
}

// User represents an application user stored in the users table.
// EnrollmentNumber is present only for students and participates in a
// partial unique index, so two admins without one never collide.
type User struct {
	ID               string    `db:"id" json:"id"`
	Name             string    `db:"name" json:"name"`
	Email            string    `db:"email" json:"email"`
	PasswordHash     string    `db:"password_hash" json:"-"`
	Role             UserRole  `db:"role" json:"role"`
	Phone            *string   `db:"phone" json:"phone,omitempty"`
	EnrollmentNumber *string   `db:"enrollment_number" json:"enrollment_number,omitempty"`
	Department       *string   `db:"department" json:"department,omitempty"`
	Semester         *int      `db:"semester" json:"semester,omitempty"`
	IsActive         bool      `db:"is_active" json:"is_active"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// Actor identifies the authenticated caller of a service operation.
type Actor struct {
	ID   string
	Role UserRole
}

// Actor derives the policy actor for the user.
func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Role: u.Role}
}
