package tasks

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/example/taskboard/domain/task"
)

var (
	// ErrTaskNotFound is returned when a task is not found.
	ErrTaskNotFound = errors.New("task not found")
	// ErrShareNotFound is returned when a task share is not found.
	ErrShareNotFound = errors.New("share not found")
	// ErrShareExists is returned when the task is already shared with the user.
	ErrShareExists = errors.New("task is already shared with this user")
)

// Repository handles task and task-share persistence using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new Repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create saves a new task.
func (r *Repository) Create(t *task.Task) error {
	if err := r.db.Create(t).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// FindByID retrieves a task by its ID. Non-positive IDs fail closed as
// not found rather than hitting the store.
func (r *Repository) FindByID(id uint) (*task.Task, error) {
	if id == 0 {
		return nil, ErrTaskNotFound
	}
	var t task.Task
	if err := r.db.First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return &t, nil
}

// FindAll retrieves every task regardless of owner.
func (r *Repository) FindAll() ([]task.Task, error) {
	var out []task.Task
	if err := r.db.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to find tasks: %w", err)
	}
	return out, nil
}

// FindByOwner retrieves all tasks owned by the given user.
func (r *Repository) FindByOwner(ownerID uint) ([]task.Task, error) {
	if ownerID == 0 {
		return nil, nil
	}
	var out []task.Task
	if err := r.db.Where("owner_id = ?", ownerID).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to find tasks by owner: %w", err)
	}
	return out, nil
}

// FindArchivedByOwner retrieves the archived tasks owned by the given user.
func (r *Repository) FindArchivedByOwner(ownerID uint) ([]task.Task, error) {
	if ownerID == 0 {
		return nil, nil
	}
	var out []task.Task
	if err := r.db.Where("owner_id = ? AND archived = ?", ownerID, true).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to find archived tasks: %w", err)
	}
	return out, nil
}

// FindSharedWith retrieves all tasks shared with the given user.
func (r *Repository) FindSharedWith(userID uint) ([]task.Task, error) {
	if userID == 0 {
		return nil, nil
	}
	var out []task.Task
	err := r.db.
		Joins("JOIN task_shares ON task_shares.task_id = tasks.id").
		Where("task_shares.user_id = ?", userID).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find shared tasks: %w", err)
	}
	return out, nil
}

// Update applies the given field changes to a task.
func (r *Repository) Update(id uint, fields map[string]any) error {
	if id == 0 {
		return ErrTaskNotFound
	}
	result := r.db.Model(&task.Task{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("failed to update task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// Delete hard-removes a task and its share rows. The two deletes are
// independent store calls; a failure between them leaves the first
// committed.
func (r *Repository) Delete(id uint) error {
	if id == 0 {
		return ErrTaskNotFound
	}
	if err := r.db.Delete(&task.TaskShare{}, "task_id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete task shares: %w", err)
	}
	result := r.db.Delete(&task.Task{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// CreateShare saves a new task share.
func (r *Repository) CreateShare(s *task.TaskShare) error {
	if err := r.db.Create(s).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint") {
			return ErrShareExists
		}
		return fmt.Errorf("failed to create share: %w", err)
	}
	return nil
}

// FindShare retrieves the share row for a (task, user) pair.
func (r *Repository) FindShare(taskID, userID uint) (*task.TaskShare, error) {
	if taskID == 0 || userID == 0 {
		return nil, ErrShareNotFound
	}
	var s task.TaskShare
	if err := r.db.First(&s, "task_id = ? AND user_id = ?", taskID, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShareNotFound
		}
		return nil, fmt.Errorf("failed to find share: %w", err)
	}
	return &s, nil
}

// FindSharesByTask retrieves all share rows for a task.
func (r *Repository) FindSharesByTask(taskID uint) ([]task.TaskShare, error) {
	if taskID == 0 {
		return nil, nil
	}
	var out []task.TaskShare
	if err := r.db.Where("task_id = ?", taskID).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to find shares: %w", err)
	}
	return out, nil
}

// UpdateShare replaces the permission set of an existing share.
func (r *Repository) UpdateShare(taskID, userID uint, perms task.PermissionSet) (*task.TaskShare, error) {
	if taskID == 0 || userID == 0 {
		return nil, ErrShareNotFound
	}
	result := r.db.Model(&task.TaskShare{}).
		Where("task_id = ? AND user_id = ?", taskID, userID).
		Update("permissions", perms)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update share: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrShareNotFound
	}
	return r.FindShare(taskID, userID)
}

// DeleteShare removes the share row for a (task, user) pair.
func (r *Repository) DeleteShare(taskID, userID uint) error {
	if taskID == 0 || userID == 0 {
		return ErrShareNotFound
	}
	result := r.db.Delete(&task.TaskShare{}, "task_id = ? AND user_id = ?", taskID, userID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete share: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrShareNotFound
	}
	return nil
}
