package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"github.com/example/taskboard/domain/user"
)

var (
	// ErrIncorrectPassword is returned when the password does not match.
	ErrIncorrectPassword = errors.New("incorrect password")
	// ErrInvalidEmail is returned when email format is invalid.
	ErrInvalidEmail = errors.New("invalid email format")
	// ErrNameTooShort is returned when the name is shorter than two characters.
	ErrNameTooShort = errors.New("name must be at least 2 characters")
	// ErrWeakPassword is returned when password is too weak.
	ErrWeakPassword = errors.New("password must be at least 6 characters")
	// ErrPasswordTooLong is returned when password exceeds bcrypt's 72-byte limit.
	ErrPasswordTooLong = errors.New("password must be at most 72 characters")
	// ErrInvalidRole is returned when the role is not a known value.
	ErrInvalidRole = errors.New("invalid role (use USER or ADMIN)")
)

// AuthService handles registration, login and user management.
type AuthService struct {
	repo   *UserRepository
	hasher *PasswordHasher
	jwt    *JWTManager
}

// NewAuthService creates a new AuthService.
func NewAuthService(repo *UserRepository, hasher *PasswordHasher, jwt *JWTManager) *AuthService {
	return &AuthService{
		repo:   repo,
		hasher: hasher,
		jwt:    jwt,
	}
}

func validateCredentials(name, email, password string) error {
	if len(name) < 2 {
		return ErrNameTooShort
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrInvalidEmail
	}
	if len(password) < 6 {
		return ErrWeakPassword
	}
	if len(password) > 72 {
		return ErrPasswordTooLong
	}
	return nil
}

// Register creates a new user account and issues a session token.
func (s *AuthService) Register(_ context.Context, name, email, password string) (*user.User, string, error) {
	if err := validateCredentials(name, email, password); err != nil {
		return nil, "", err
	}

	exists, err := s.repo.EmailExists(email)
	if err != nil {
		return nil, "", err
	}
	if exists {
		return nil, "", ErrUserExists
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	u := &user.User{
		Name:     name,
		Email:    email,
		Password: hash,
		Role:     user.RoleUser,
	}
	if err := s.repo.Create(u); err != nil {
		return nil, "", err
	}

	token, err := s.jwt.Generate(u.ID, u.Role)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	return u, token, nil
}

// Login authenticates a user and issues a session token. A missing account
// and a wrong password fail with distinct errors; the HTTP layer maps both
// to 401.
func (s *AuthService) Login(_ context.Context, email, password string) (*user.User, string, error) {
	u, err := s.repo.FindByEmail(email)
	if err != nil {
		return nil, "", err
	}

	if !s.hasher.Verify(password, u.Password) {
		return nil, "", ErrIncorrectPassword
	}

	token, err := s.jwt.Generate(u.ID, u.Role)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	return u, token, nil
}

// ValidateToken validates a session token and returns the embedded identity.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*user.Claims, error) {
	claims, err := s.jwt.Validate(token)
	if err != nil {
		return nil, err
	}
	return &user.Claims{
		UserID: claims.UserID,
		Role:   claims.Role,
	}, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(_ context.Context, id uint) (*user.User, error) {
	return s.repo.FindByID(id)
}

// GetUserByEmail retrieves a user by email.
func (s *AuthService) GetUserByEmail(_ context.Context, email string) (*user.User, error) {
	return s.repo.FindByEmail(email)
}

// ListUsers retrieves all users.
func (s *AuthService) ListUsers(_ context.Context) ([]user.User, error) {
	return s.repo.FindAll()
}

// CreateUser creates a user through the administrative user surface.
// Unlike Register it accepts an explicit role and issues no token.
func (s *AuthService) CreateUser(_ context.Context, name, email, password string, role user.Role) (*user.User, error) {
	if err := validateCredentials(name, email, password); err != nil {
		return nil, err
	}
	if role == "" {
		role = user.RoleUser
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &user.User{
		Name:     name,
		Email:    email,
		Password: hash,
		Role:     role,
	}
	if err := s.repo.Create(u); err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateUser applies a partial update to a user profile.
func (s *AuthService) UpdateUser(_ context.Context, id uint, upd UserUpdate) (*user.User, error) {
	fields := make(map[string]any)

	if upd.Name != nil {
		if len(*upd.Name) < 2 {
			return nil, ErrNameTooShort
		}
		fields["name"] = *upd.Name
	}
	if upd.Email != nil {
		if _, err := mail.ParseAddress(*upd.Email); err != nil {
			return nil, ErrInvalidEmail
		}
		fields["email"] = *upd.Email
	}
	if upd.Password != nil {
		if len(*upd.Password) < 6 {
			return nil, ErrWeakPassword
		}
		if len(*upd.Password) > 72 {
			return nil, ErrPasswordTooLong
		}
		hash, err := s.hasher.Hash(*upd.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		fields["password"] = hash
	}
	if upd.Role != nil {
		if !upd.Role.Valid() {
			return nil, ErrInvalidRole
		}
		fields["role"] = *upd.Role
	}

	if len(fields) > 0 {
		if err := s.repo.Update(id, fields); err != nil {
			return nil, err
		}
	}
	return s.repo.FindByID(id)
}

// DeleteUser removes a user account.
func (s *AuthService) DeleteUser(_ context.Context, id uint) error {
	return s.repo.Delete(id)
}

// UserUpdate describes a partial user update. Nil fields are left unchanged.
type UserUpdate struct {
	Name     *string
	Email    *string
	Password *string
	Role     *user.Role
}
