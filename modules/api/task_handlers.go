package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/example/taskboard/modules/tasks"
)

// parseUintParam parses a positive integer path parameter.
func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(v), nil
}

func (m *APIModule) handleListTasks(c *fiber.Ctx) error {
	claims := currentUser(c)
	list, err := m.tasks.List(c.UserContext(), claims.UserID)
	if err != nil {
		return respondTaskError(c, err)
	}
	return c.JSON(list)
}

func (m *APIModule) handleListAllTasks(c *fiber.Ctx) error {
	list, err := m.tasks.ListAllUsers(c.UserContext())
	if err != nil {
		return respondTaskError(c, err)
	}
	return c.JSON(list)
}

func (m *APIModule) handleListCategorized(c *fiber.Ctx) error {
	claims := currentUser(c)
	groups, err := m.tasks.ListCategorized(c.UserContext(), claims.UserID)
	if err != nil {
		return respondTaskError(c, err)
	}
	return c.JSON(groups)
}

func (m *APIModule) handleListSharedWithMe(c *fiber.Ctx) error {
	claims := currentUser(c)
	list, err := m.tasks.ListSharedWith(c.UserContext(), claims.UserID)
	if err != nil {
		return respondTaskError(c, err)
	}
	return c.JSON(list)
}

func (m *APIModule) handleListArchived(c *fiber.Ctx) error {
	claims := currentUser(c)
	list, err := m.tasks.ListArchived(c.UserContext(), claims.UserID)
	if err != nil {
		return respondTaskError(c, err)
	}
	return c.JSON(list)
}

func (m *APIModule) handleCreateTask(c *fiber.Ctx) error {
	var in tasks.CreateTaskInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid request body"})
	}

	claims := currentUser(c)
	created, err := m.tasks.Create(c.UserContext(), claims.UserID, in)
	if err != nil {
		return respondTaskError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (m *APIModule) handleGetTask(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid task id"})
	}

	claims := currentUser(c)
	t, err := m.tasks.Get(c.UserContext(), id, claims.UserID)
	if err != nil {
		return respondTaskError(c, err)
	}
	return c.JSON(t)
}

func (m *APIModule) handleUpdateTask(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid task id"})
	}

	var in tasks.UpdateTaskInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid request body"})
	}

	claims := currentUser(c)
	updated, err := m.tasks.Update(c.UserContext(), id, claims.UserID, in)
	if err != nil {
		return respondTaskError(c, err)
	}
	return c.JSON(updated)
}

func (m *APIModule) handleDeleteTask(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid task id"})
	}

	claims := currentUser(c)
	if err := m.tasks.Delete(c.UserContext(), id, claims.UserID); err != nil {
		return respondTaskError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (m *APIModule) handleToggleTask(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid task id"})
	}

	claims := currentUser(c)
	t, err := m.tasks.ToggleCompletion(c.UserContext(), id, claims.UserID)
	if err != nil {
		return respondTaskError(c, err)
	}
	return c.JSON(t)
}

func (m *APIModule) handleArchiveTask(c *fiber.Ctx) error {
	return m.setArchived(c, true)
}

func (m *APIModule) handleUnarchiveTask(c *fiber.Ctx) error {
	return m.setArchived(c, false)
}

func (m *APIModule) setArchived(c *fiber.Ctx, archived bool) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid task id"})
	}

	claims := currentUser(c)
	var t any
	if archived {
		t, err = m.tasks.Archive(c.UserContext(), id, claims.UserID)
	} else {
		t, err = m.tasks.Unarchive(c.UserContext(), id, claims.UserID)
	}
	if err != nil {
		return respondTaskError(c, err)
	}
	return c.JSON(t)
}
