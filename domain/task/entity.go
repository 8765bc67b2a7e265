package task

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// Permission is a single capability granted on a shared task.
type Permission string

const (
	PermissionRead   Permission = "READ"
	PermissionWrite  Permission = "WRITE"
	PermissionDelete Permission = "DELETE"
)

// Valid reports whether the permission is one of the known values.
func (p Permission) Valid() bool {
	return p == PermissionRead || p == PermissionWrite || p == PermissionDelete
}

// PermissionSet is an ordered, deduplicated set of permissions granted by a
// task share. It is the single representation used across all layers.
type PermissionSet []Permission

// ParsePermissions builds a PermissionSet from raw strings, rejecting unknown
// values and deduplicating repeats.
func ParsePermissions(raw []string) (PermissionSet, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("at least one permission is required")
	}

	var set PermissionSet
	for _, r := range raw {
		p := Permission(strings.ToUpper(strings.TrimSpace(r)))
		if !p.Valid() {
			return nil, fmt.Errorf("invalid permission: %s (use READ, WRITE or DELETE)", r)
		}
		if !set.Has(p) {
			set = append(set, p)
		}
	}
	return set, nil
}

// Has reports whether the set contains the given permission.
func (s PermissionSet) Has(p Permission) bool {
	for _, have := range s {
		if have == p {
			return true
		}
	}
	return false
}

// AllowsModify reports whether the set grants write access.
// DELETE implies modify capability, READ does not.
func (s PermissionSet) AllowsModify() bool {
	return s.Has(PermissionWrite) || s.Has(PermissionDelete)
}

// AllowsDelete reports whether the set grants delete access.
func (s PermissionSet) AllowsDelete() bool {
	return s.Has(PermissionDelete)
}

// Strings returns the set as plain strings.
func (s PermissionSet) Strings() []string {
	out := make([]string, len(s))
	for i, p := range s {
		out[i] = string(p)
	}
	return out
}

// Value serializes the set to a comma-separated string column.
func (s PermissionSet) Value() (driver.Value, error) {
	return strings.Join(s.Strings(), ","), nil
}

// Scan deserializes the set from its column representation.
func (s *PermissionSet) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*s = nil
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into PermissionSet", src)
	}

	if raw == "" {
		*s = nil
		return nil
	}

	parsed, err := ParsePermissions(strings.Split(raw, ","))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Task represents a todo item owned by a single user.
type Task struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Title           string     `gorm:"size:255;not null" json:"title"`
	Description     string     `gorm:"size:2000" json:"description"`
	Completed       bool       `gorm:"not null;default:false" json:"completed"`
	Archived        bool       `gorm:"not null;default:false" json:"archived"`
	StartDate       time.Time  `gorm:"not null" json:"startDate"`
	EndDate         *time.Time `json:"endDate"`
	ReminderEnabled bool       `gorm:"not null;default:false" json:"reminderEnabled"`
	ReminderSound   string     `gorm:"size:100" json:"reminderSound"`
	ImageURL        string     `gorm:"size:512" json:"imageUrl"`
	AudioURL        string     `gorm:"size:512" json:"audioUrl"`
	OwnerID         uint       `gorm:"index;not null" json:"ownerId"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// TableName returns the table name for the Task entity.
func (Task) TableName() string {
	return "tasks"
}

// TaskShare grants a permission set on a task to a non-owner user.
// At most one share exists per (task, user) pair.
type TaskShare struct {
	TaskID      uint          `gorm:"primaryKey;autoIncrement:false" json:"taskId"`
	UserID      uint          `gorm:"primaryKey;autoIncrement:false" json:"userId"`
	Permissions PermissionSet `gorm:"type:text;not null" json:"permissions"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// TableName returns the table name for the TaskShare entity.
func (TaskShare) TableName() string {
	return "task_shares"
}
