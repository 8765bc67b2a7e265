package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/taskboard/modules/auth"
)

// handleRegister creates an account and returns it with a session token.
func (m *APIModule) handleRegister(c *fiber.Ctx) error {
	var req auth.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid request body"})
	}

	if req.Name == "" || req.Email == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Name, email and password are required"})
	}

	resp, err := m.authAdapter.Register(c.UserContext(), req)
	if err != nil {
		return handleAuthError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// handleLogin authenticates credentials and returns the account with a
// token. Unknown email and wrong password are indistinguishable to the
// client: both return 401.
func (m *APIModule) handleLogin(c *fiber.Ctx) error {
	var req auth.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid request body"})
	}

	if req.Email == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Email and password are required"})
	}

	resp, err := m.authAdapter.Login(c.UserContext(), req)
	if err != nil {
		if isCredentialError(err) {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Error: "Invalid email or password"})
		}
		return handleAuthError(c, err)
	}

	return c.JSON(resp)
}
