package auth

import (
	"time"

	"github.com/example/taskboard/domain/user"
)

// UserPayload is the wire representation of a user, without the password.
type UserPayload struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      user.Role `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewUserPayload strips a user entity down to its wire representation.
func NewUserPayload(u *user.User) UserPayload {
	return UserPayload{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by both register and login: the account plus a
// signed session token.
type AuthResponse struct {
	User  UserPayload `json:"user"`
	Token string      `json:"token"`
}

// ValidateTokenRequest represents a token validation request.
type ValidateTokenRequest struct {
	Token string `json:"token"`
}

// ValidateTokenResponse represents a token validation response.
type ValidateTokenResponse struct {
	Valid  bool      `json:"valid"`
	UserID uint      `json:"userId,omitempty"`
	Role   user.Role `json:"role,omitempty"`
	Error  string    `json:"error,omitempty"`
}

// GetUserRequest represents a get user request.
type GetUserRequest struct {
	UserID uint `json:"userId"`
}

// GetUserByEmailRequest represents a lookup by email.
type GetUserByEmailRequest struct {
	Email string `json:"email"`
}

// UserResponse wraps a single user payload.
type UserResponse struct {
	User UserPayload `json:"user"`
}

// ListUsersRequest represents a list users request.
type ListUsersRequest struct{}

// ListUsersResponse represents a list users response.
type ListUsersResponse struct {
	Users []UserPayload `json:"users"`
}

// CreateUserRequest represents an administrative user creation request.
type CreateUserRequest struct {
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Password string    `json:"password"`
	Role     user.Role `json:"role"`
}

// UpdateUserRequest represents a partial user update. Nil fields are left
// unchanged.
type UpdateUserRequest struct {
	UserID   uint       `json:"userId"`
	Name     *string    `json:"name,omitempty"`
	Email    *string    `json:"email,omitempty"`
	Password *string    `json:"password,omitempty"`
	Role     *user.Role `json:"role,omitempty"`
}

// DeleteUserRequest represents a user deletion request.
type DeleteUserRequest struct {
	UserID uint `json:"userId"`
}

// DeleteUserResponse represents a user deletion response.
type DeleteUserResponse struct {
	Deleted bool `json:"deleted"`
}
