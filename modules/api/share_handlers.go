package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/taskboard/domain/task"
)

// Share management endpoints under /tasks/:id/share.

func (m *APIModule) handleShareTask(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid task id"})
	}

	var req ShareRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid request body"})
	}
	if req.UserID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Target userId is required"})
	}

	perms, err := task.ParsePermissions(req.Permissions)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}

	claims := currentUser(c)
	share, err := m.tasks.Share(c.UserContext(), id, claims.UserID, req.UserID, perms)
	if err != nil {
		return respondTaskError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(share)
}

func (m *APIModule) handleListShares(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid task id"})
	}

	claims := currentUser(c)
	shares, err := m.tasks.Shares(c.UserContext(), id, claims.UserID)
	if err != nil {
		return respondTaskError(c, err)
	}
	return c.JSON(shares)
}

func (m *APIModule) handleUpdateShare(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid task id"})
	}
	targetID, err := parseUintParam(c, "userId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid user id"})
	}

	var req UpdateShareRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid request body"})
	}

	perms, err := task.ParsePermissions(req.Permissions)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}

	claims := currentUser(c)
	share, err := m.tasks.UpdateShare(c.UserContext(), id, claims.UserID, targetID, perms)
	if err != nil {
		return respondTaskError(c, err)
	}
	return c.JSON(share)
}

func (m *APIModule) handleRemoveShare(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid task id"})
	}
	targetID, err := parseUintParam(c, "userId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid user id"})
	}

	claims := currentUser(c)
	if err := m.tasks.RemoveShare(c.UserContext(), id, claims.UserID, targetID); err != nil {
		return respondTaskError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// handleUserByEmail resolves a collaborator by email before sharing.
// The password never appears in the payload.
func (m *APIModule) handleUserByEmail(c *fiber.Ctx) error {
	email := c.Params("email")
	if email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Email is required"})
	}

	u, err := m.authAdapter.GetUserByEmail(c.UserContext(), email)
	if err != nil {
		return handleAuthError(c, err)
	}
	return c.JSON(u)
}
