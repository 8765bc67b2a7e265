package auth

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	"github.com/example/taskboard/domain/user"
)

// AuthPort is the interface other modules use to access auth functionality.
type AuthPort interface {
	ValidateToken(ctx context.Context, token string) (*user.Claims, error)
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	GetUser(ctx context.Context, userID uint) (*UserPayload, error)
	GetUserByEmail(ctx context.Context, email string) (*UserPayload, error)
	ListUsers(ctx context.Context) ([]UserPayload, error)
	CreateUser(ctx context.Context, req CreateUserRequest) (*UserPayload, error)
	UpdateUser(ctx context.Context, req UpdateUserRequest) (*UserPayload, error)
	DeleteUser(ctx context.Context, userID uint) error
}

// AuthAdapter implements AuthPort using the service container.
type AuthAdapter struct {
	container mono.ServiceContainer
}

// Compile-time interface check.
var _ AuthPort = (*AuthAdapter)(nil)

// NewAuthAdapter creates a new AuthAdapter.
func NewAuthAdapter(container mono.ServiceContainer) *AuthAdapter {
	return &AuthAdapter{
		container: container,
	}
}

func (a *AuthAdapter) call(ctx context.Context, service string, req, resp any) error {
	if err := helper.CallRequestReplyService[any, any](
		ctx,
		a.container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		&resp,
	); err != nil {
		return fmt.Errorf("%s request failed: %w", service, err)
	}
	return nil
}

// ValidateToken validates a session token and returns its claims.
func (a *AuthAdapter) ValidateToken(ctx context.Context, token string) (*user.Claims, error) {
	req := ValidateTokenRequest{Token: token}
	var resp ValidateTokenResponse
	if err := a.call(ctx, "validate-token", &req, &resp); err != nil {
		return nil, err
	}

	if !resp.Valid {
		return nil, fmt.Errorf("token validation failed: %s", resp.Error)
	}

	return &user.Claims{
		UserID: resp.UserID,
		Role:   resp.Role,
	}, nil
}

// Register creates a new account and returns it with a session token.
func (a *AuthAdapter) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := a.call(ctx, "register", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login authenticates credentials and returns the account with a token.
func (a *AuthAdapter) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := a.call(ctx, "login", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetUser retrieves a user by ID.
func (a *AuthAdapter) GetUser(ctx context.Context, userID uint) (*UserPayload, error) {
	req := GetUserRequest{UserID: userID}
	var resp UserResponse
	if err := a.call(ctx, "get-user", &req, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// GetUserByEmail retrieves a user by email.
func (a *AuthAdapter) GetUserByEmail(ctx context.Context, email string) (*UserPayload, error) {
	req := GetUserByEmailRequest{Email: email}
	var resp UserResponse
	if err := a.call(ctx, "get-user-by-email", &req, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// ListUsers retrieves all users.
func (a *AuthAdapter) ListUsers(ctx context.Context) ([]UserPayload, error) {
	var resp ListUsersResponse
	if err := a.call(ctx, "list-users", &ListUsersRequest{}, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// CreateUser creates a user through the administrative surface.
func (a *AuthAdapter) CreateUser(ctx context.Context, req CreateUserRequest) (*UserPayload, error) {
	var resp UserResponse
	if err := a.call(ctx, "create-user", &req, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// UpdateUser applies a partial user update.
func (a *AuthAdapter) UpdateUser(ctx context.Context, req UpdateUserRequest) (*UserPayload, error) {
	var resp UserResponse
	if err := a.call(ctx, "update-user", &req, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// DeleteUser removes a user account.
func (a *AuthAdapter) DeleteUser(ctx context.Context, userID uint) error {
	req := DeleteUserRequest{UserID: userID}
	var resp DeleteUserResponse
	return a.call(ctx, "delete-user", &req, &resp)
}
