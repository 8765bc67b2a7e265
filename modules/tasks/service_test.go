package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/example/taskboard/domain/task"
)

func setupService(t *testing.T) *Service {
	t.Helper()
	return NewService(NewRepository(setupTestDB(t)))
}

func createTask(t *testing.T, svc *Service, userID uint, title string) *task.Task {
	t.Helper()
	created, err := svc.Create(context.Background(), userID, CreateTaskInput{
		Title:     title,
		StartDate: "2025-01-01",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return created
}

func TestService_Create(t *testing.T) {
	svc := setupService(t)

	created, err := svc.Create(context.Background(), 1, CreateTaskInput{
		Title:     "Buy milk",
		StartDate: "2025-01-01",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.OwnerID != 1 {
		t.Errorf("OwnerID = %d, want 1", created.OwnerID)
	}
	if created.Completed || created.Archived {
		t.Errorf("flags = completed:%v archived:%v, want both false", created.Completed, created.Archived)
	}
	if created.EndDate != nil {
		t.Errorf("EndDate = %v, want nil", created.EndDate)
	}
}

func TestService_CreateValidation(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   CreateTaskInput
	}{
		{
			name: "missing title",
			in:   CreateTaskInput{StartDate: "2025-01-01"},
		},
		{
			name: "missing start date",
			in:   CreateTaskInput{Title: "x"},
		},
		{
			name: "unparseable start date",
			in:   CreateTaskInput{Title: "x", StartDate: "tomorrow"},
		},
		{
			name: "end date equal to start date",
			in:   CreateTaskInput{Title: "x", StartDate: "2025-01-01", EndDate: "2025-01-01"},
		},
		{
			name: "end date before start date",
			in:   CreateTaskInput{Title: "x", StartDate: "2025-06-01", EndDate: "2025-01-01"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, 1, tt.in)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("Create() error = %v, want a ValidationError", err)
			}
		})
	}
}

func TestService_ListDeduplicates(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	owned := createTask(t, svc, 1, "owned")
	shared := createTask(t, svc, 2, "shared")
	if _, err := svc.Share(ctx, shared.ID, 2, 1, task.PermissionSet{task.PermissionRead}); err != nil {
		t.Fatalf("Share() error = %v", err)
	}

	// A share row pointing at an owned task must not duplicate the
	// listing. The self-share invariant makes this unreachable through
	// the service, so seed it at the store level.
	if err := svc.repo.CreateShare(&task.TaskShare{
		TaskID:      owned.ID,
		UserID:      1,
		Permissions: task.PermissionSet{task.PermissionRead},
	}); err != nil {
		t.Fatalf("CreateShare() error = %v", err)
	}

	list, err := svc.List(ctx, 1)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("List() returned %d tasks, want 2", len(list))
	}
	seen := map[uint]int{}
	for _, item := range list {
		seen[item.ID]++
	}
	if seen[owned.ID] != 1 || seen[shared.ID] != 1 {
		t.Errorf("List() counts = %v, want each task exactly once", seen)
	}
}

func TestService_ListCategorized(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	active := createTask(t, svc, 1, "active")
	archived := createTask(t, svc, 1, "archived")
	if _, err := svc.Archive(ctx, archived.ID, 1); err != nil {
		t.Fatalf("Archive() error = %v", err)
	}
	sharedActive := createTask(t, svc, 2, "shared-active")
	if _, err := svc.Share(ctx, sharedActive.ID, 2, 1, task.PermissionSet{task.PermissionRead}); err != nil {
		t.Fatalf("Share() error = %v", err)
	}

	groups, err := svc.ListCategorized(ctx, 1)
	if err != nil {
		t.Fatalf("ListCategorized() error = %v", err)
	}

	if len(groups.Owned) != 2 {
		t.Errorf("Owned = %d tasks, want 2", len(groups.Owned))
	}
	if len(groups.OwnedActive) != 1 || groups.OwnedActive[0].ID != active.ID {
		t.Errorf("OwnedActive = %v, want only the active task", groups.OwnedActive)
	}
	if len(groups.OwnedArchived) != 1 || groups.OwnedArchived[0].ID != archived.ID {
		t.Errorf("OwnedArchived = %v, want only the archived task", groups.OwnedArchived)
	}
	if len(groups.SharedActive) != 1 || groups.SharedActive[0].ID != sharedActive.ID {
		t.Errorf("SharedActive = %v, want the shared task", groups.SharedActive)
	}
	if len(groups.SharedArchived) != 0 {
		t.Errorf("SharedArchived = %v, want empty", groups.SharedArchived)
	}
}

func TestService_GetDistinguishesMissingFromForbidden(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	created := createTask(t, svc, 1, "private")

	if _, err := svc.Get(ctx, 9999, 1); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("Get() missing task error = %v, want ErrTaskNotFound", err)
	}
	if _, err := svc.Get(ctx, created.ID, 2); !errors.Is(err, ErrForbidden) {
		t.Errorf("Get() inaccessible task error = %v, want ErrForbidden", err)
	}
	if _, err := svc.Get(ctx, created.ID, 1); err != nil {
		t.Errorf("Get() as owner error = %v", err)
	}
}

func TestService_UpdatePartial(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, CreateTaskInput{
		Title:     "original",
		StartDate: "2025-01-01",
		EndDate:   "2025-02-01",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	newTitle := "renamed"
	updated, err := svc.Update(ctx, created.ID, 1, UpdateTaskInput{Title: &newTitle})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Title != "renamed" {
		t.Errorf("Title = %q, want %q", updated.Title, "renamed")
	}
	if updated.EndDate == nil {
		t.Error("EndDate cleared by unrelated update")
	}
	if updated.OwnerID != 1 {
		t.Errorf("OwnerID = %d, ownership must be immutable", updated.OwnerID)
	}

	// An explicit empty end date clears it.
	empty := ""
	updated, err = svc.Update(ctx, created.ID, 1, UpdateTaskInput{EndDate: &empty})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.EndDate != nil {
		t.Errorf("EndDate = %v, want nil after clearing", updated.EndDate)
	}

	// Date ordering is validated against the resulting state.
	badEnd := "2024-01-01"
	if _, err := svc.Update(ctx, created.ID, 1, UpdateTaskInput{EndDate: &badEnd}); err == nil {
		t.Error("Update() accepted an end date before the start date")
	}
}

func TestService_ToggleCompletion(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	created := createTask(t, svc, 1, "toggle me")
	if _, err := svc.Share(ctx, created.ID, 1, 2, task.PermissionSet{task.PermissionRead}); err != nil {
		t.Fatalf("Share() error = %v", err)
	}

	// Read-level access is enough to toggle.
	toggled, err := svc.ToggleCompletion(ctx, created.ID, 2)
	if err != nil {
		t.Fatalf("ToggleCompletion() error = %v", err)
	}
	if !toggled.Completed {
		t.Error("Completed = false after first toggle, want true")
	}

	toggled, err = svc.ToggleCompletion(ctx, created.ID, 1)
	if err != nil {
		t.Fatalf("ToggleCompletion() error = %v", err)
	}
	if toggled.Completed {
		t.Error("Completed = true after second toggle, want false")
	}

	if _, err := svc.ToggleCompletion(ctx, created.ID, 3); !errors.Is(err, ErrForbidden) {
		t.Errorf("ToggleCompletion() by stranger error = %v, want ErrForbidden", err)
	}
}

func TestService_ArchiveRoundTrip(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	created := createTask(t, svc, 1, "archive me")

	archived, err := svc.Archive(ctx, created.ID, 1)
	if err != nil {
		t.Fatalf("Archive() error = %v", err)
	}
	if !archived.Archived {
		t.Error("Archived = false after Archive()")
	}
	if archived.Completed != created.Completed || archived.Title != created.Title {
		t.Error("Archive() changed unrelated fields")
	}

	restored, err := svc.Unarchive(ctx, created.ID, 1)
	if err != nil {
		t.Fatalf("Unarchive() error = %v", err)
	}
	if restored.Archived {
		t.Error("Archived = true after Unarchive()")
	}
}

func TestService_ShareRules(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	created := createTask(t, svc, 1, "shareable")
	readOnly := task.PermissionSet{task.PermissionRead}

	if _, err := svc.Share(ctx, created.ID, 2, 3, readOnly); !errors.Is(err, ErrNotOwner) {
		t.Errorf("Share() by non-owner error = %v, want ErrNotOwner", err)
	}
	if _, err := svc.Share(ctx, created.ID, 1, 1, readOnly); !errors.Is(err, ErrSelfShare) {
		t.Errorf("Share() with self error = %v, want ErrSelfShare", err)
	}
	if _, err := svc.Share(ctx, 9999, 1, 2, readOnly); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("Share() on missing task error = %v, want ErrTaskNotFound", err)
	}

	share, err := svc.Share(ctx, created.ID, 1, 2, readOnly)
	if err != nil {
		t.Fatalf("Share() error = %v", err)
	}
	if share.TaskID != created.ID || share.UserID != 2 {
		t.Errorf("Share() = %+v, want task %d user 2", share, created.ID)
	}

	if _, err := svc.Share(ctx, created.ID, 1, 2, readOnly); !errors.Is(err, ErrShareExists) {
		t.Errorf("Share() duplicate error = %v, want ErrShareExists", err)
	}

	// Share management stays owner-exclusive even for the grantee.
	if _, err := svc.UpdateShare(ctx, created.ID, 2, 2, readOnly); !errors.Is(err, ErrNotOwner) {
		t.Errorf("UpdateShare() by grantee error = %v, want ErrNotOwner", err)
	}
	if err := svc.RemoveShare(ctx, created.ID, 2, 2); !errors.Is(err, ErrNotOwner) {
		t.Errorf("RemoveShare() by grantee error = %v, want ErrNotOwner", err)
	}

	if err := svc.RemoveShare(ctx, created.ID, 1, 2); err != nil {
		t.Fatalf("RemoveShare() error = %v", err)
	}
	if err := svc.RemoveShare(ctx, created.ID, 1, 2); !errors.Is(err, ErrShareNotFound) {
		t.Errorf("RemoveShare() again error = %v, want ErrShareNotFound", err)
	}
}

// TestService_ShareUpgradeScenario walks a share through READ, WRITE and
// DELETE grants, checking the capability boundary at each step.
func TestService_ShareUpgradeScenario(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, CreateTaskInput{
		Title:     "Buy milk",
		StartDate: "2025-01-01",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := svc.Share(ctx, created.ID, 1, 2, task.PermissionSet{task.PermissionRead}); err != nil {
		t.Fatalf("Share() error = %v", err)
	}

	// READ: B can fetch but not modify.
	if _, err := svc.Get(ctx, created.ID, 2); err != nil {
		t.Fatalf("Get() with READ error = %v", err)
	}
	newTitle := "Buy oat milk"
	if _, err := svc.Update(ctx, created.ID, 2, UpdateTaskInput{Title: &newTitle}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("Update() with READ error = %v, want ErrForbidden", err)
	}

	// WRITE: modify works, delete still refused.
	if _, err := svc.UpdateShare(ctx, created.ID, 1, 2, task.PermissionSet{task.PermissionWrite}); err != nil {
		t.Fatalf("UpdateShare() error = %v", err)
	}
	if _, err := svc.Update(ctx, created.ID, 2, UpdateTaskInput{Title: &newTitle}); err != nil {
		t.Fatalf("Update() with WRITE error = %v", err)
	}
	if err := svc.Delete(ctx, created.ID, 2); !errors.Is(err, ErrForbidden) {
		t.Fatalf("Delete() with WRITE error = %v, want ErrForbidden", err)
	}

	// DELETE: the grantee can remove the task, and the share goes too.
	if _, err := svc.UpdateShare(ctx, created.ID, 1, 2, task.PermissionSet{task.PermissionDelete}); err != nil {
		t.Fatalf("UpdateShare() error = %v", err)
	}
	if err := svc.Delete(ctx, created.ID, 2); err != nil {
		t.Fatalf("Delete() with DELETE error = %v", err)
	}
	if _, err := svc.Get(ctx, created.ID, 1); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrTaskNotFound", err)
	}
	if _, err := svc.repo.FindShare(created.ID, 2); !errors.Is(err, ErrShareNotFound) {
		t.Errorf("FindShare() after delete error = %v, want ErrShareNotFound", err)
	}
}

func TestService_SharesVisibility(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	created := createTask(t, svc, 1, "visible")
	if _, err := svc.Share(ctx, created.ID, 1, 2, task.PermissionSet{task.PermissionRead}); err != nil {
		t.Fatalf("Share() error = %v", err)
	}

	shares, err := svc.Shares(ctx, created.ID, 1)
	if err != nil {
		t.Fatalf("Shares() error = %v", err)
	}
	if len(shares) != 1 || shares[0].UserID != 2 {
		t.Errorf("Shares() = %v, want the single grant to user 2", shares)
	}

	// The grantee can list shares too, a stranger cannot.
	if _, err := svc.Shares(ctx, created.ID, 2); err != nil {
		t.Errorf("Shares() as grantee error = %v", err)
	}
	if _, err := svc.Shares(ctx, created.ID, 3); !errors.Is(err, ErrForbidden) {
		t.Errorf("Shares() as stranger error = %v, want ErrForbidden", err)
	}
}

func TestService_AttachMedia(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	created := createTask(t, svc, 1, "with media")
	if _, err := svc.Share(ctx, created.ID, 1, 2, task.PermissionSet{task.PermissionRead}); err != nil {
		t.Fatalf("Share() error = %v", err)
	}

	updated, err := svc.AttachImage(ctx, created.ID, 1, "/assets/abc.png")
	if err != nil {
		t.Fatalf("AttachImage() error = %v", err)
	}
	if updated.ImageURL != "/assets/abc.png" {
		t.Errorf("ImageURL = %q, want %q", updated.ImageURL, "/assets/abc.png")
	}

	updated, err = svc.AttachAudio(ctx, created.ID, 1, "/assets/note.mp3")
	if err != nil {
		t.Fatalf("AttachAudio() error = %v", err)
	}
	if updated.AudioURL != "/assets/note.mp3" {
		t.Errorf("AudioURL = %q, want %q", updated.AudioURL, "/assets/note.mp3")
	}
	if updated.ImageURL != "/assets/abc.png" {
		t.Error("AttachAudio() overwrote the image URL")
	}

	// READ-level grantees cannot attach media.
	if _, err := svc.AttachImage(ctx, created.ID, 2, "/assets/evil.png"); !errors.Is(err, ErrForbidden) {
		t.Errorf("AttachImage() with READ error = %v, want ErrForbidden", err)
	}
}
