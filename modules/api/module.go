// Package api exposes the HTTP and WebSocket surface of the application.
package api

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-monolith/mono"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/taskboard/modules/auth"
	"github.com/example/taskboard/modules/media"
	"github.com/example/taskboard/modules/notify"
	"github.com/example/taskboard/modules/tasks"
)

// APIModule is the Fiber HTTP/WebSocket server. Auth is reached through
// the service container; the task and media services and the
// notification hub are injected directly from main.
type APIModule struct {
	app         *fiber.App
	authAdapter auth.AuthPort
	taskModule  *tasks.TaskModule
	mediaModule *media.MediaModule
	tasks       *tasks.Service
	media       *media.Service
	hub         *notify.Hub
	port        string
}

var _ mono.Module = (*APIModule)(nil)
var _ mono.DependentModule = (*APIModule)(nil)
var _ mono.HealthCheckableModule = (*APIModule)(nil)

// NewModule creates a new APIModule. The task and media modules are
// resolved to their services at Start, after they have started.
func NewModule(taskModule *tasks.TaskModule, mediaModule *media.MediaModule) *APIModule {
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	return &APIModule{
		taskModule:  taskModule,
		mediaModule: mediaModule,
		port:        port,
	}
}

func (m *APIModule) Name() string {
	return "api"
}

func (m *APIModule) Dependencies() []string {
	return []string{"auth"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "auth":
		m.authAdapter = auth.NewAuthAdapter(container)
	}
}

// SetHub sets the notification hub (called from main.go).
func (m *APIModule) SetHub(hub *notify.Hub) {
	m.hub = hub
}

// Start initializes the Fiber HTTP server. The module must be
// registered after the tasks and media modules so their services exist.
func (m *APIModule) Start(_ context.Context) error {
	if m.authAdapter == nil {
		return fmt.Errorf("auth dependency not set")
	}
	if m.hub == nil {
		return fmt.Errorf("notification hub not set")
	}
	if m.taskModule == nil || m.taskModule.GetService() == nil {
		return fmt.Errorf("task service not available")
	}
	if m.mediaModule == nil || m.mediaModule.GetService() == nil {
		return fmt.Errorf("media service not available")
	}
	m.tasks = m.taskModule.GetService()
	m.media = m.mediaModule.GetService()

	m.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          60 * time.Second,
		IdleTimeout:           120 * time.Second,
		BodyLimit:             20 * 1024 * 1024,
	})

	m.app.Use(recover.New())
	m.app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	m.app.Use(cors.New())

	m.setupRoutes()

	go func() {
		if err := m.app.Listen(":" + m.port); err != nil {
			log.Printf("[api] HTTP server error: %v", err)
		}
	}()

	log.Printf("[api] HTTP server started on :%s", m.port)
	return nil
}

func (m *APIModule) Stop(_ context.Context) error {
	if m.app == nil {
		return nil
	}
	log.Println("[api] Shutting down HTTP server...")
	return m.app.Shutdown()
}

func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"port": m.port,
		},
	}
}

// setupRoutes configures all routes. Static task paths are registered
// before the parameterized ones so they are not captured by :id.
func (m *APIModule) setupRoutes() {
	m.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"module": "api",
		})
	})

	authRoutes := m.app.Group("/auth")
	authRoutes.Post("/register", m.handleRegister)
	authRoutes.Post("/login", m.handleLogin)

	userRoutes := m.app.Group("/users")
	userRoutes.Get("/", m.handleListUsers)
	userRoutes.Post("/", m.handleCreateUser)
	userRoutes.Get("/:id", m.handleGetUser)
	userRoutes.Put("/:id", m.handleUpdateUser)
	userRoutes.Delete("/:id", m.handleDeleteUser)

	m.app.Get("/assets/:name", m.handleAsset)

	m.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	m.app.Get("/ws", websocket.New(m.handleWebSocket))

	taskRoutes := m.app.Group("/tasks")
	taskRoutes.Use(AuthMiddleware(m.authAdapter))
	taskRoutes.Get("/", m.handleListTasks)
	taskRoutes.Get("/all-users", m.handleListAllTasks)
	taskRoutes.Get("/categorized", m.handleListCategorized)
	taskRoutes.Get("/shared-with-me", m.handleListSharedWithMe)
	taskRoutes.Get("/archived/all", m.handleListArchived)
	taskRoutes.Get("/user-by-email/:email", m.handleUserByEmail)
	taskRoutes.Post("/", m.handleCreateTask)
	taskRoutes.Get("/:id", m.handleGetTask)
	taskRoutes.Put("/:id", m.handleUpdateTask)
	taskRoutes.Delete("/:id", m.handleDeleteTask)
	taskRoutes.Patch("/:id/toggle", m.handleToggleTask)
	taskRoutes.Patch("/:id/archive", m.handleArchiveTask)
	taskRoutes.Patch("/:id/unarchive", m.handleUnarchiveTask)
	taskRoutes.Post("/:id/share", m.handleShareTask)
	taskRoutes.Get("/:id/shares", m.handleListShares)
	taskRoutes.Put("/:id/share/:userId", m.handleUpdateShare)
	taskRoutes.Delete("/:id/share/:userId", m.handleRemoveShare)
	taskRoutes.Post("/:id/upload-image", m.handleUploadImage)
	taskRoutes.Post("/:id/upload-audio", m.handleUploadAudio)
}

// customErrorHandler renders unhandled Fiber errors in the API's error
// body shape.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(ErrorResponse{Error: message})
}
