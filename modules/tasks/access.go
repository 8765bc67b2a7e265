package tasks

import (
	"errors"

	"github.com/example/taskboard/domain/task"
)

// Access is the result of an authorization check on a (task, user) pair.
// The owner always has full access; a non-owner has access only through a
// share row, whose permission set is surfaced for the caller to interpret.
type Access struct {
	CanAccess   bool
	IsOwner     bool
	Permissions task.PermissionSet
}

// AllowsModify reports whether the access grants write capability.
// WRITE and DELETE both imply modify; READ does not.
func (a Access) AllowsModify() bool {
	if !a.CanAccess {
		return false
	}
	return a.IsOwner || a.Permissions.AllowsModify()
}

// AllowsDelete reports whether the access grants delete capability.
func (a Access) AllowsDelete() bool {
	if !a.CanAccess {
		return false
	}
	return a.IsOwner || a.Permissions.AllowsDelete()
}

// Access resolves the authorization of userID on taskID. It fails closed:
// non-positive identifiers, a missing task, and store errors all yield no
// access rather than an error.
func (s *Service) Access(taskID, userID uint) Access {
	if taskID == 0 || userID == 0 {
		return Access{}
	}

	t, err := s.repo.FindByID(taskID)
	if err != nil {
		return Access{}
	}

	return s.accessFor(t, userID)
}

// accessFor resolves authorization against an already-fetched task.
func (s *Service) accessFor(t *task.Task, userID uint) Access {
	if userID == 0 {
		return Access{}
	}

	if t.OwnerID == userID {
		return Access{CanAccess: true, IsOwner: true}
	}

	share, err := s.repo.FindShare(t.ID, userID)
	if err != nil {
		if !errors.Is(err, ErrShareNotFound) {
			// Store failure: fail closed.
			return Access{}
		}
		return Access{}
	}

	return Access{CanAccess: true, Permissions: share.Permissions}
}

// CanModify reports whether userID may mutate taskID.
func (s *Service) CanModify(taskID, userID uint) bool {
	return s.Access(taskID, userID).AllowsModify()
}

// CanDelete reports whether userID may hard-delete taskID.
func (s *Service) CanDelete(taskID, userID uint) bool {
	return s.Access(taskID, userID).AllowsDelete()
}
