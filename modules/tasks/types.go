package tasks

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/taskboard/domain/task"
)

// CreateTaskInput carries the client-supplied fields for a new task.
// Dates arrive as strings in one of the accepted layouts.
type CreateTaskInput struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	Completed       bool   `json:"completed"`
	StartDate       string `json:"startDate"`
	EndDate         string `json:"endDate"`
	ReminderEnabled bool   `json:"reminderEnabled"`
	ReminderSound   string `json:"reminderSound"`
}

// UpdateTaskInput carries a partial task update. Nil fields are left
// unchanged; an empty EndDate string clears the end date.
type UpdateTaskInput struct {
	Title           *string `json:"title,omitempty"`
	Description     *string `json:"description,omitempty"`
	Completed       *bool   `json:"completed,omitempty"`
	StartDate       *string `json:"startDate,omitempty"`
	EndDate         *string `json:"endDate,omitempty"`
	ReminderEnabled *bool   `json:"reminderEnabled,omitempty"`
	ReminderSound   *string `json:"reminderSound,omitempty"`
}

// CategorizedTasks is the six-group partition of a user's task set.
type CategorizedTasks struct {
	Owned          []task.Task `json:"owned"`
	Shared         []task.Task `json:"shared"`
	OwnedActive    []task.Task `json:"ownedActive"`
	OwnedArchived  []task.Task `json:"ownedArchived"`
	SharedActive   []task.Task `json:"sharedActive"`
	SharedArchived []task.Task `json:"sharedArchived"`
}

// ValidationError aggregates field-level validation failures. The HTTP
// layer renders it as a 400 with one message per failure.
type ValidationError struct {
	Messages []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

func (e *ValidationError) add(format string, args ...any) {
	e.Messages = append(e.Messages, fmt.Sprintf(format, args...))
}

func (e *ValidationError) orNil() error {
	if len(e.Messages) == 0 {
		return nil
	}
	return e
}

// dateLayouts are the accepted client date formats, most specific first.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseDate parses a client-supplied date string.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("date is empty")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date format: %s (use YYYY-MM-DD or YYYY-MM-DD HH:MM)", s)
}
