package auth

import (
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/taskboard/domain/user"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&user.User{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))

	u := &user.User{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "hashed",
		Role:     user.RoleUser,
	}
	if err := repo.Create(u); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if u.ID == 0 {
		t.Fatal("Create() did not assign an ID")
	}

	byID, err := repo.FindByID(u.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if byID.Email != u.Email {
		t.Errorf("FindByID().Email = %q, want %q", byID.Email, u.Email)
	}

	byEmail, err := repo.FindByEmail("alice@example.com")
	if err != nil {
		t.Fatalf("FindByEmail() error = %v", err)
	}
	if byEmail.ID != u.ID {
		t.Errorf("FindByEmail().ID = %d, want %d", byEmail.ID, u.ID)
	}
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))

	first := &user.User{Name: "Alice", Email: "dup@example.com", Password: "x", Role: user.RoleUser}
	if err := repo.Create(first); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	second := &user.User{Name: "Bob", Email: "dup@example.com", Password: "y", Role: user.RoleUser}
	if err := repo.Create(second); !errors.Is(err, ErrUserExists) {
		t.Errorf("Create() with duplicate email error = %v, want ErrUserExists", err)
	}
}

func TestUserRepository_NotFound(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))

	if _, err := repo.FindByID(0); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("FindByID(0) error = %v, want ErrUserNotFound", err)
	}
	if _, err := repo.FindByID(999); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("FindByID(999) error = %v, want ErrUserNotFound", err)
	}
	if _, err := repo.FindByEmail("nobody@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("FindByEmail() error = %v, want ErrUserNotFound", err)
	}
	if err := repo.Update(999, map[string]any{"name": "x"}); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Update(999) error = %v, want ErrUserNotFound", err)
	}
	if err := repo.Delete(999); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Delete(999) error = %v, want ErrUserNotFound", err)
	}
}

func TestUserRepository_Update(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))

	u := &user.User{Name: "Alice", Email: "alice@example.com", Password: "x", Role: user.RoleUser}
	if err := repo.Create(u); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := repo.Update(u.ID, map[string]any{"name": "Alicia", "role": user.RoleAdmin}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	updated, err := repo.FindByID(u.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if updated.Name != "Alicia" {
		t.Errorf("Name = %q, want %q", updated.Name, "Alicia")
	}
	if updated.Role != user.RoleAdmin {
		t.Errorf("Role = %v, want %v", updated.Role, user.RoleAdmin)
	}
	if updated.Email != "alice@example.com" {
		t.Errorf("Email changed unexpectedly: %q", updated.Email)
	}
}

func TestUserRepository_EmailExists(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))

	exists, err := repo.EmailExists("ghost@example.com")
	if err != nil {
		t.Fatalf("EmailExists() error = %v", err)
	}
	if exists {
		t.Error("EmailExists() = true for unknown email")
	}

	u := &user.User{Name: "Alice", Email: "alice@example.com", Password: "x", Role: user.RoleUser}
	if err := repo.Create(u); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	exists, err = repo.EmailExists("alice@example.com")
	if err != nil {
		t.Fatalf("EmailExists() error = %v", err)
	}
	if !exists {
		t.Error("EmailExists() = false for existing email")
	}
}

func TestUserRepository_Delete(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))

	u := &user.User{Name: "Alice", Email: "alice@example.com", Password: "x", Role: user.RoleUser}
	if err := repo.Create(u); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := repo.Delete(u.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.FindByID(u.ID); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("FindByID() after delete error = %v, want ErrUserNotFound", err)
	}
}
