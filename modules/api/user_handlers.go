package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/taskboard/modules/auth"
)

// User management endpoints under /users.

func (m *APIModule) handleListUsers(c *fiber.Ctx) error {
	users, err := m.authAdapter.ListUsers(c.UserContext())
	if err != nil {
		return handleAuthError(c, err)
	}
	return c.JSON(users)
}

func (m *APIModule) handleGetUser(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid user id"})
	}

	u, err := m.authAdapter.GetUser(c.UserContext(), id)
	if err != nil {
		return handleAuthError(c, err)
	}
	return c.JSON(u)
}

func (m *APIModule) handleCreateUser(c *fiber.Ctx) error {
	var req auth.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid request body"})
	}

	if req.Name == "" || req.Email == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Name, email and password are required"})
	}

	u, err := m.authAdapter.CreateUser(c.UserContext(), req)
	if err != nil {
		return handleAuthError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(u)
}

func (m *APIModule) handleUpdateUser(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid user id"})
	}

	var req auth.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid request body"})
	}
	req.UserID = id

	u, err := m.authAdapter.UpdateUser(c.UserContext(), req)
	if err != nil {
		return handleAuthError(c, err)
	}
	return c.JSON(u)
}

func (m *APIModule) handleDeleteUser(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid user id"})
	}

	if err := m.authAdapter.DeleteUser(c.UserContext(), id); err != nil {
		return handleAuthError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
