package events

import (
	"github.com/go-monolith/mono/pkg/helper"

	"github.com/example/taskboard/domain/task"
)

// Notification is the payload pushed to a user's live connections.
type Notification struct {
	Message string          `json:"message"`
	Type    string          `json:"type"`
	Task    *task.Task      `json:"task,omitempty"`
	Share   *task.TaskShare `json:"share,omitempty"`
}

// TaskEvent wraps a notification with the user it should be delivered to.
type TaskEvent struct {
	RecipientID  uint         `json:"recipientId"`
	Notification Notification `json:"notification"`
}

// Event definitions for the tasks domain.
var (
	// TaskCreatedV1 is published when a user creates a task.
	TaskCreatedV1 = helper.EventDefinition[TaskEvent](
		"tasks",
		"TaskCreated",
		"v1",
	)

	// TaskUpdatedV1 is published when a task's completion is toggled.
	TaskUpdatedV1 = helper.EventDefinition[TaskEvent](
		"tasks",
		"TaskUpdated",
		"v1",
	)

	// TaskSharedV1 is published when a task is shared with another user.
	TaskSharedV1 = helper.EventDefinition[TaskEvent](
		"tasks",
		"TaskShared",
		"v1",
	)
)
