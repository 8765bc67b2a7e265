package tasks

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-monolith/mono"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/taskboard/domain/task"
	"github.com/example/taskboard/events"
	"github.com/example/taskboard/modules/cache"
)

// TaskModule owns task and share persistence and the task service.
type TaskModule struct {
	db          *gorm.DB
	service     *Service
	dbPath      string
	cacheModule *cache.CacheModule
}

// NewModule creates the task module. The cache module reference is
// optional and resolved at Start, after the cache has connected.
func NewModule(cacheModule *cache.CacheModule) *TaskModule {
	dbPath := os.Getenv("TASKBOARD_DB_PATH")
	if dbPath == "" {
		dbPath = "taskboard.db"
	}
	return &TaskModule{
		dbPath:      dbPath,
		cacheModule: cacheModule,
	}
}

func (m *TaskModule) Name() string {
	return "tasks"
}

// Start opens the database, runs migrations and builds the service.
func (m *TaskModule) Start(_ context.Context) error {
	db, err := gorm.Open(sqlite.Open(m.dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&task.Task{}, &task.TaskShare{}); err != nil {
		return fmt.Errorf("failed to migrate task schema: %w", err)
	}

	m.db = db
	if m.service == nil {
		m.service = NewService(NewRepository(db))
	} else {
		m.service.repo = NewRepository(db)
	}

	if m.cacheModule != nil {
		if c := m.cacheModule.GetCache(); c != nil {
			m.service.SetCache(c)
		}
	}

	log.Printf("[tasks] Module started (db: %s)", m.dbPath)
	return nil
}

func (m *TaskModule) Stop(_ context.Context) error {
	if m.db != nil {
		if sqlDB, err := m.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Printf("[tasks] Error closing database: %v", err)
			}
		}
	}
	log.Println("[tasks] Module stopped")
	return nil
}

// SetEventBus receives the EventBus from the framework.
func (m *TaskModule) SetEventBus(bus mono.EventBus) {
	if m.service == nil {
		m.service = NewService(nil)
	}
	m.service.SetEventBus(bus)
}

// EmitEvents declares the notification events this module can emit.
func (m *TaskModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TaskCreatedV1.ToBase(),
		events.TaskUpdatedV1.ToBase(),
		events.TaskSharedV1.ToBase(),
	}
}

func (m *TaskModule) Health(ctx context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "database not initialized",
		}
	}
	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("failed to get database connection: %v", err),
		}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
	}
}

// GetService returns the task service for direct use by the API module.
func (m *TaskModule) GetService() *Service {
	return m.service
}
