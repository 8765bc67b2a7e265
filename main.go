package main

import (
	"context"
	"log"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"

	"github.com/example/taskboard/modules/api"
	"github.com/example/taskboard/modules/auth"
	"github.com/example/taskboard/modules/cache"
	"github.com/example/taskboard/modules/media"
	"github.com/example/taskboard/modules/notify"
	"github.com/example/taskboard/modules/tasks"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("=== Taskboard - task management API ===")

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	authModule := auth.NewModule()
	cacheModule := cache.NewModule()
	tasksModule := tasks.NewModule(cacheModule)
	mediaModule := media.NewModule()
	notifyModule := notify.NewModule()
	apiModule := api.NewModule(tasksModule, mediaModule)

	// The hub is handed over directly because it is not exposed via a
	// ServiceContainer.
	apiModule.SetHub(notifyModule.GetHub())

	// Registration order doubles as start order: infrastructure first,
	// then the task core, then the HTTP surface that reads from it.
	app.Register(authModule)
	app.Register(cacheModule)
	app.Register(tasksModule)
	app.Register(mediaModule)
	app.Register(notifyModule)
	app.Register(apiModule)

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%s):", port)
	log.Println("  POST   /auth/register            - Create an account")
	log.Println("  POST   /auth/login               - Log in")
	log.Println("  GET    /tasks                    - Tasks owned by or shared with you")
	log.Println("  GET    /tasks/categorized        - Owned/shared x active/archived groups")
	log.Println("  GET    /tasks/shared-with-me     - Tasks shared with you")
	log.Println("  GET    /tasks/archived/all       - Your archived tasks")
	log.Println("  POST   /tasks                    - Create a task")
	log.Println("  PUT    /tasks/:id                - Update a task")
	log.Println("  PATCH  /tasks/:id/toggle         - Toggle completion")
	log.Println("  PATCH  /tasks/:id/archive        - Archive / unarchive")
	log.Println("  POST   /tasks/:id/share          - Share with another user")
	log.Println("  POST   /tasks/:id/upload-image   - Attach an image")
	log.Println("  POST   /tasks/:id/upload-audio   - Attach an audio note")
	log.Println("")
	log.Printf("WebSocket notifications: ws://localhost:%s/ws", port)
	log.Println("  Send {\"type\":\"join\",\"payload\":{\"userId\":N}} after connecting")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
