package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-monolith/mono"

	"github.com/example/taskboard/domain/task"
	"github.com/example/taskboard/events"
	"github.com/example/taskboard/modules/cache"
)

var (
	// ErrForbidden is returned when the user lacks permission on a task
	// that does exist. Distinguishable from ErrTaskNotFound by design.
	ErrForbidden = errors.New("insufficient permissions for this task")
	// ErrNotOwner is returned when a non-owner attempts share management.
	ErrNotOwner = errors.New("only the task owner can manage shares")
	// ErrSelfShare is returned when the owner shares a task with themself.
	ErrSelfShare = errors.New("cannot share a task with yourself")
)

// Service orchestrates task store access behind the authorization rules.
type Service struct {
	repo  *Repository
	cache *cache.Cache
	bus   mono.EventBus
}

// NewService creates a new task Service. Cache and event bus are optional;
// without them reads go straight to the store and notifications are skipped.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// SetCache attaches a read cache for task-by-id lookups.
func (s *Service) SetCache(c *cache.Cache) {
	s.cache = c
}

// SetEventBus attaches the event bus used for task notifications.
func (s *Service) SetEventBus(bus mono.EventBus) {
	s.bus = bus
}

func taskKey(id uint) string {
	return fmt.Sprintf("task:%d", id)
}

// fetchTask loads a task through the cache when one is attached. Cache
// failures degrade to a direct store read.
func (s *Service) fetchTask(ctx context.Context, id uint) (*task.Task, error) {
	if id == 0 {
		return nil, ErrTaskNotFound
	}

	if s.cache != nil {
		var cached task.Task
		hit, err := s.cache.Get(ctx, taskKey(id), &cached)
		if err != nil {
			log.Printf("[tasks] cache read failed for task %d: %v", id, err)
		} else if hit {
			return &cached, nil
		}
	}

	t, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, taskKey(id), t); err != nil {
			log.Printf("[tasks] cache write failed for task %d: %v", id, err)
		}
	}
	return t, nil
}

// invalidate drops the cached copy of a task after a mutation.
func (s *Service) invalidate(ctx context.Context, id uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, taskKey(id)); err != nil {
		log.Printf("[tasks] cache invalidation failed for task %d: %v", id, err)
	}
}

// mergeTasks unions two task slices, deduplicating by ID. Entries from the
// first slice win on collision; the merge is idempotent on identity.
func mergeTasks(a, b []task.Task) []task.Task {
	merged := make([]task.Task, 0, len(a)+len(b))
	seen := make(map[uint]bool, len(a)+len(b))
	for _, lists := range [][]task.Task{a, b} {
		for _, t := range lists {
			if seen[t.ID] {
				continue
			}
			seen[t.ID] = true
			merged = append(merged, t)
		}
	}
	return merged
}

// List returns the union of tasks owned by and shared with the user,
// deduplicated by task ID.
func (s *Service) List(_ context.Context, userID uint) ([]task.Task, error) {
	owned, err := s.repo.FindByOwner(userID)
	if err != nil {
		return nil, err
	}
	shared, err := s.repo.FindSharedWith(userID)
	if err != nil {
		return nil, err
	}
	return mergeTasks(owned, shared), nil
}

// ListAllUsers returns every task system-wide, with no ownership filter.
func (s *Service) ListAllUsers(_ context.Context) ([]task.Task, error) {
	return s.repo.FindAll()
}

// ListSharedWith returns the tasks shared with the user.
func (s *Service) ListSharedWith(_ context.Context, userID uint) ([]task.Task, error) {
	return s.repo.FindSharedWith(userID)
}

// ListArchived returns the user's own archived tasks.
func (s *Service) ListArchived(_ context.Context, userID uint) ([]task.Task, error) {
	return s.repo.FindArchivedByOwner(userID)
}

// ListCategorized partitions the user's task set into the six
// {owned, shared} x {all, active, archived} groups.
func (s *Service) ListCategorized(_ context.Context, userID uint) (*CategorizedTasks, error) {
	owned, err := s.repo.FindByOwner(userID)
	if err != nil {
		return nil, err
	}
	shared, err := s.repo.FindSharedWith(userID)
	if err != nil {
		return nil, err
	}

	out := &CategorizedTasks{
		Owned:          owned,
		Shared:         shared,
		OwnedActive:    []task.Task{},
		OwnedArchived:  []task.Task{},
		SharedActive:   []task.Task{},
		SharedArchived: []task.Task{},
	}
	for _, t := range owned {
		if t.Archived {
			out.OwnedArchived = append(out.OwnedArchived, t)
		} else {
			out.OwnedActive = append(out.OwnedActive, t)
		}
	}
	for _, t := range shared {
		if t.Archived {
			out.SharedArchived = append(out.SharedArchived, t)
		} else {
			out.SharedActive = append(out.SharedActive, t)
		}
	}
	return out, nil
}

// validateDates checks the start/end ordering rule: an end date, when
// present, must be strictly after the start date.
func validateDates(start time.Time, end *time.Time, verr *ValidationError) {
	if end != nil && !end.After(start) {
		verr.add("end date must be strictly after start date")
	}
}

// Create validates the input, persists a new task owned by userID and
// emits a taskCreated notification to the owner.
func (s *Service) Create(ctx context.Context, userID uint, in CreateTaskInput) (*task.Task, error) {
	verr := &ValidationError{}

	if in.Title == "" {
		verr.add("title is required")
	}

	var start time.Time
	if in.StartDate == "" {
		verr.add("start date is required")
	} else {
		var err error
		start, err = parseDate(in.StartDate)
		if err != nil {
			verr.add("startDate: %v", err)
		}
	}

	var end *time.Time
	if in.EndDate != "" {
		parsed, err := parseDate(in.EndDate)
		if err != nil {
			verr.add("endDate: %v", err)
		} else {
			end = &parsed
		}
	}

	if len(verr.Messages) == 0 {
		validateDates(start, end, verr)
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	t := &task.Task{
		Title:           in.Title,
		Description:     in.Description,
		Completed:       in.Completed,
		StartDate:       start,
		EndDate:         end,
		ReminderEnabled: in.ReminderEnabled,
		ReminderSound:   in.ReminderSound,
		OwnerID:         userID,
	}
	if err := s.repo.Create(t); err != nil {
		return nil, err
	}

	s.publishCreated(t)
	return t, nil
}

// Get returns a task the user may read. A missing task yields
// ErrTaskNotFound; a present but inaccessible task yields ErrForbidden.
func (s *Service) Get(ctx context.Context, taskID, userID uint) (*task.Task, error) {
	t, err := s.fetchTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !s.accessFor(t, userID).CanAccess {
		return nil, ErrForbidden
	}
	return t, nil
}

// Update applies a partial update to the mutable fields of a task.
// Ownership is immutable. Requires modify capability.
func (s *Service) Update(ctx context.Context, taskID, userID uint, in UpdateTaskInput) (*task.Task, error) {
	t, err := s.repo.FindByID(taskID)
	if err != nil {
		return nil, err
	}
	if !s.accessFor(t, userID).AllowsModify() {
		return nil, ErrForbidden
	}

	verr := &ValidationError{}
	fields := make(map[string]any)

	start := t.StartDate
	end := t.EndDate

	if in.Title != nil {
		if *in.Title == "" {
			verr.add("title is required")
		} else {
			fields["title"] = *in.Title
		}
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.Completed != nil {
		fields["completed"] = *in.Completed
	}
	if in.StartDate != nil {
		parsed, err := parseDate(*in.StartDate)
		if err != nil {
			verr.add("startDate: %v", err)
		} else {
			start = parsed
			fields["start_date"] = parsed
		}
	}
	if in.EndDate != nil {
		if *in.EndDate == "" {
			end = nil
			fields["end_date"] = nil
		} else {
			parsed, err := parseDate(*in.EndDate)
			if err != nil {
				verr.add("endDate: %v", err)
			} else {
				end = &parsed
				fields["end_date"] = parsed
			}
		}
	}
	if in.ReminderEnabled != nil {
		fields["reminder_enabled"] = *in.ReminderEnabled
	}
	if in.ReminderSound != nil {
		fields["reminder_sound"] = *in.ReminderSound
	}

	if len(verr.Messages) == 0 {
		validateDates(start, end, verr)
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	if len(fields) > 0 {
		if err := s.repo.Update(taskID, fields); err != nil {
			return nil, err
		}
		s.invalidate(ctx, taskID)
	}
	return s.repo.FindByID(taskID)
}

// Delete hard-removes a task and cascades to its share rows. Requires
// delete capability.
func (s *Service) Delete(ctx context.Context, taskID, userID uint) error {
	t, err := s.repo.FindByID(taskID)
	if err != nil {
		return err
	}
	if !s.accessFor(t, userID).AllowsDelete() {
		return ErrForbidden
	}

	if err := s.repo.Delete(taskID); err != nil {
		return err
	}
	s.invalidate(ctx, taskID)
	return nil
}

// ToggleCompletion flips the completed flag. Read-level access is
// sufficient: toggling is treated as low-risk. Emits a taskUpdated
// notification to the acting user.
func (s *Service) ToggleCompletion(ctx context.Context, taskID, userID uint) (*task.Task, error) {
	t, err := s.repo.FindByID(taskID)
	if err != nil {
		return nil, err
	}
	if !s.accessFor(t, userID).CanAccess {
		return nil, ErrForbidden
	}

	if err := s.repo.Update(taskID, map[string]any{"completed": !t.Completed}); err != nil {
		return nil, err
	}
	s.invalidate(ctx, taskID)

	updated, err := s.repo.FindByID(taskID)
	if err != nil {
		return nil, err
	}
	s.publishUpdated(userID, updated)
	return updated, nil
}

// Archive sets the archived flag. Read-level access is sufficient.
func (s *Service) Archive(ctx context.Context, taskID, userID uint) (*task.Task, error) {
	return s.setArchived(ctx, taskID, userID, true)
}

// Unarchive clears the archived flag. Read-level access is sufficient.
func (s *Service) Unarchive(ctx context.Context, taskID, userID uint) (*task.Task, error) {
	return s.setArchived(ctx, taskID, userID, false)
}

func (s *Service) setArchived(ctx context.Context, taskID, userID uint, archived bool) (*task.Task, error) {
	t, err := s.repo.FindByID(taskID)
	if err != nil {
		return nil, err
	}
	if !s.accessFor(t, userID).CanAccess {
		return nil, ErrForbidden
	}

	if err := s.repo.Update(taskID, map[string]any{"archived": archived}); err != nil {
		return nil, err
	}
	s.invalidate(ctx, taskID)
	return s.repo.FindByID(taskID)
}

// Share grants targetID a permission set on a task. Share management is
// owner-exclusive: the caller must literally be the stored owner, and
// self-shares are rejected. Emits a taskShared notification to the target.
func (s *Service) Share(ctx context.Context, taskID, ownerID, targetID uint, perms task.PermissionSet) (*task.TaskShare, error) {
	t, err := s.repo.FindByID(taskID)
	if err != nil {
		return nil, err
	}
	if t.OwnerID != ownerID {
		return nil, ErrNotOwner
	}
	if ownerID == targetID {
		return nil, ErrSelfShare
	}

	share := &task.TaskShare{
		TaskID:      taskID,
		UserID:      targetID,
		Permissions: perms,
	}
	if err := s.repo.CreateShare(share); err != nil {
		return nil, err
	}

	s.publishShared(targetID, share)
	return share, nil
}

// Shares lists the share rows of a task the user may read.
func (s *Service) Shares(ctx context.Context, taskID, userID uint) ([]task.TaskShare, error) {
	t, err := s.repo.FindByID(taskID)
	if err != nil {
		return nil, err
	}
	if !s.accessFor(t, userID).CanAccess {
		return nil, ErrForbidden
	}
	return s.repo.FindSharesByTask(taskID)
}

// UpdateShare replaces the permission set of an existing share.
// Owner-exclusive.
func (s *Service) UpdateShare(ctx context.Context, taskID, ownerID, targetID uint, perms task.PermissionSet) (*task.TaskShare, error) {
	t, err := s.repo.FindByID(taskID)
	if err != nil {
		return nil, err
	}
	if t.OwnerID != ownerID {
		return nil, ErrNotOwner
	}
	return s.repo.UpdateShare(taskID, targetID, perms)
}

// RemoveShare revokes a share. Owner-exclusive.
func (s *Service) RemoveShare(ctx context.Context, taskID, ownerID, targetID uint) error {
	t, err := s.repo.FindByID(taskID)
	if err != nil {
		return err
	}
	if t.OwnerID != ownerID {
		return ErrNotOwner
	}
	return s.repo.DeleteShare(taskID, targetID)
}

// AttachImage records the public URL of an uploaded image on the task.
// Requires modify capability.
func (s *Service) AttachImage(ctx context.Context, taskID, userID uint, url string) (*task.Task, error) {
	return s.attachMedia(ctx, taskID, userID, "image_url", url)
}

// AttachAudio records the public URL of an uploaded audio file on the task.
// Requires modify capability.
func (s *Service) AttachAudio(ctx context.Context, taskID, userID uint, url string) (*task.Task, error) {
	return s.attachMedia(ctx, taskID, userID, "audio_url", url)
}

func (s *Service) attachMedia(ctx context.Context, taskID, userID uint, column, url string) (*task.Task, error) {
	t, err := s.repo.FindByID(taskID)
	if err != nil {
		return nil, err
	}
	if !s.accessFor(t, userID).AllowsModify() {
		return nil, ErrForbidden
	}

	if err := s.repo.Update(taskID, map[string]any{column: url}); err != nil {
		return nil, err
	}
	s.invalidate(ctx, taskID)
	return s.repo.FindByID(taskID)
}

// Notification publishing. Delivery is best-effort and never affects the
// outcome of the mutation that triggered it.

func (s *Service) publishCreated(t *task.Task) {
	if s.bus == nil {
		return
	}
	ev := events.TaskEvent{
		RecipientID: t.OwnerID,
		Notification: events.Notification{
			Message: fmt.Sprintf("New task created: %q", t.Title),
			Type:    "success",
			Task:    t,
		},
	}
	if err := events.TaskCreatedV1.Publish(s.bus, ev, nil); err != nil {
		log.Printf("[tasks] failed to publish TaskCreated event: %v", err)
	}
}

func (s *Service) publishUpdated(userID uint, t *task.Task) {
	if s.bus == nil {
		return
	}
	state := "marked as active"
	if t.Completed {
		state = "completed"
	}
	ev := events.TaskEvent{
		RecipientID: userID,
		Notification: events.Notification{
			Message: fmt.Sprintf("Task %q %s", t.Title, state),
			Type:    "info",
			Task:    t,
		},
	}
	if err := events.TaskUpdatedV1.Publish(s.bus, ev, nil); err != nil {
		log.Printf("[tasks] failed to publish TaskUpdated event: %v", err)
	}
}

func (s *Service) publishShared(targetID uint, share *task.TaskShare) {
	if s.bus == nil {
		return
	}
	ev := events.TaskEvent{
		RecipientID: targetID,
		Notification: events.Notification{
			Message: fmt.Sprintf("A task was shared with you with permissions: %s",
				strings.Join(share.Permissions.Strings(), ", ")),
			Type:  "success",
			Share: share,
		},
	}
	if err := events.TaskSharedV1.Publish(s.bus, ev, nil); err != nil {
		log.Printf("[tasks] failed to publish TaskShared event: %v", err)
	}
}
