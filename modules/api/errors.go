package api

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/taskboard/modules/media"
	"github.com/example/taskboard/modules/tasks"
)

// respondTaskError maps task and media service errors to HTTP responses.
// Absent entities yield 404 while present-but-inaccessible ones yield
// 403, so the two are distinguishable to the client.
func respondTaskError(c *fiber.Ctx, err error) error {
	var verr *tasks.ValidationError
	if errors.As(err, &verr) {
		resp := ValidationErrorResponse{}
		for _, msg := range verr.Messages {
			resp.Errors = append(resp.Errors, ValidationMessage{Message: msg})
		}
		return c.Status(fiber.StatusBadRequest).JSON(resp)
	}

	switch {
	case errors.Is(err, tasks.ErrTaskNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "Task not found"})
	case errors.Is(err, tasks.ErrShareNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "Share not found"})
	case errors.Is(err, media.ErrMediaNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "File not found"})
	case errors.Is(err, tasks.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{Error: "Insufficient permissions for this task"})
	case errors.Is(err, tasks.ErrNotOwner):
		return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{Error: "Only the task owner can manage shares"})
	case errors.Is(err, tasks.ErrSelfShare):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Cannot share a task with yourself"})
	case errors.Is(err, tasks.ErrShareExists):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Task is already shared with this user"})
	case errors.Is(err, media.ErrEmptyFile):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Uploaded file is empty"})
	case errors.Is(err, media.ErrUnsupportedType):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	default:
		log.Printf("[api] Internal error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "An internal error occurred"})
	}
}

// handleAuthError maps auth service failures to HTTP responses. Errors
// cross the service container as strings, so mapping is by message.
func handleAuthError(c *fiber.Ctx, err error) error {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "user not found"):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "User not found"})
	case strings.Contains(errStr, "already exists"):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "User with this email already exists"})
	case strings.Contains(errStr, "invalid email format"):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid email format"})
	case strings.Contains(errStr, "name must be at least"):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Name must be at least 2 characters"})
	case strings.Contains(errStr, "password must be at least"):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Password must be at least 6 characters"})
	case strings.Contains(errStr, "password must be at most"):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Password must be at most 72 characters"})
	case strings.Contains(errStr, "invalid role"):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid role (use USER or ADMIN)"})
	default:
		log.Printf("[api] Internal error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "An internal error occurred"})
	}
}

// isCredentialError reports whether an auth failure is a bad-credential
// case that login must collapse into a single 401.
func isCredentialError(err error) bool {
	errStr := err.Error()
	return strings.Contains(errStr, "user not found") ||
		strings.Contains(errStr, "incorrect password")
}
