package models

import "github.com/golang-jwt/jwt/v5"

// RegisterRequest holds the student self-registration payload.
type RegisterRequest struct {
	Name             string  `json:"name" validate:"required"`
	Email            string  `json:"email" validate:"required,email"`
	Password         string  `json:"password" validate:"required,min=6"`
	Phone            *string `json:"phone,omitempty"`
	EnrollmentNumber *string `json:"enrollment_number,omitempty"`
	Department       *string `json:"department,omitempty"`
	Semester         *int    `json:"semester,omitempty" validate:"omitempty,min=1,max=12"`
}

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse returns the issued token and user view.
type AuthResponse struct {
	Token string    `json:"token"`
	User  *UserView `json:"user"`
}

// UpdateProfileRequest carries the partial profile update payload.
// Email, role and enrollment number are immutable through this path.
type UpdateProfileRequest struct {
	Name       *string `json:"name,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	Department *string `json:"department,omitempty"`
	Semester   *int    `json:"semester,omitempty" validate:"omitempty,min=1,max=12"`
}

// UserView is the credential-free projection of a user.
type UserView struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Email            string   `json:"email"`
	Role             UserRole `json:"role"`
	Phone            *string  `json:"phone,omitempty"`
	EnrollmentNumber *string  `json:"enrollment_number,omitempty"`
	Department       *string  `json:"department,omitempty"`
	Semester         *int     `json:"semester,omitempty"`
	IsActive         bool     `json:"is_active"`
}

// NewUserView projects a user without its credential hash.
func NewUserView(u *User) *UserView {
	if u == nil {
		return nil
	}
	return &UserView{
		ID:               u.ID,
		Name:             u.Name,
		Email:            u.Email,
		Role:             u.Role,
		Phone:            u.Phone,
		EnrollmentNumber: u.EnrollmentNumber,
		Department:       u.Department,
		Semester:         u.Semester,
		IsActive:         u.IsActive,
	}
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID string   `json:"user_id"`
	Role   UserRole `json:"role"`
	Email  string   `json:"email"`
	jwt.RegisteredClaims
}
