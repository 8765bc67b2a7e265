package api

import (
	"io"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/taskboard/domain/task"
)

// Media endpoints: multipart uploads attached to a task, served back
// under /assets/.

func (m *APIModule) handleUploadImage(c *fiber.Ctx) error {
	return m.handleUpload(c, "image")
}

func (m *APIModule) handleUploadAudio(c *fiber.Ctx) error {
	return m.handleUpload(c, "audio")
}

func (m *APIModule) handleUpload(c *fiber.Ctx, field string) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid task id"})
	}

	fileHeader, err := c.FormFile(field)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "A " + field + " file is required"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Failed to read uploaded file"})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Failed to read uploaded file"})
	}

	claims := currentUser(c)
	ctx := c.UserContext()

	// Resolve the task first so a forbidden or missing task never
	// stores an orphaned object.
	existing, err := m.tasks.Get(ctx, id, claims.UserID)
	if err != nil {
		return respondTaskError(c, err)
	}

	var upload *mediaUpload
	var previousURL string
	switch field {
	case "image":
		u, err := m.media.UploadImage(ctx, fileHeader.Filename, data)
		if err != nil {
			return respondTaskError(c, err)
		}
		upload = &mediaUpload{name: u.Name, url: u.URL}
		previousURL = existing.ImageURL
	case "audio":
		u, err := m.media.UploadAudio(ctx, fileHeader.Filename, data)
		if err != nil {
			return respondTaskError(c, err)
		}
		upload = &mediaUpload{name: u.Name, url: u.URL}
		previousURL = existing.AudioURL
	}

	var updated *task.Task
	if field == "image" {
		updated, err = m.tasks.AttachImage(ctx, id, claims.UserID, upload.url)
	} else {
		updated, err = m.tasks.AttachAudio(ctx, id, claims.UserID, upload.url)
	}
	if err != nil {
		if removeErr := m.media.Remove(ctx, upload.name); removeErr != nil {
			log.Printf("[api] Failed to clean up orphaned upload %s: %v", upload.name, removeErr)
		}
		return respondTaskError(c, err)
	}

	// Replacing an attachment drops the old object; a leak here only
	// costs storage, so failures are logged and ignored.
	if name := assetName(previousURL); name != "" {
		if err := m.media.Remove(ctx, name); err != nil {
			log.Printf("[api] Failed to remove replaced media %s: %v", name, err)
		}
	}

	return c.JSON(updated)
}

type mediaUpload struct {
	name string
	url  string
}

// assetName extracts the stored object name from a public /assets/ URL.
func assetName(url string) string {
	if !strings.HasPrefix(url, "/assets/") {
		return ""
	}
	return strings.TrimPrefix(url, "/assets/")
}

// handleAsset streams a stored media object with its content type.
func (m *APIModule) handleAsset(c *fiber.Ctx) error {
	name := c.Params("name")

	data, contentType, err := m.media.Fetch(c.UserContext(), name)
	if err != nil {
		return respondTaskError(c, err)
	}

	c.Set(fiber.HeaderContentType, contentType)
	return c.Send(data)
}
