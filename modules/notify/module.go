package notify

import (
	"context"
	"fmt"
	"log"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	"github.com/example/taskboard/events"
)

// NotifyModule consumes task events and pushes them to the WebSocket
// connections of the addressed user.
type NotifyModule struct {
	hub       *Hub
	cancelHub context.CancelFunc
}

var _ mono.Module = (*NotifyModule)(nil)
var _ mono.EventConsumerModule = (*NotifyModule)(nil)
var _ mono.HealthCheckableModule = (*NotifyModule)(nil)

// NewModule creates a new NotifyModule.
func NewModule() *NotifyModule {
	return &NotifyModule{
		hub: NewHub(),
	}
}

func (m *NotifyModule) Name() string {
	return "notify"
}

// Start launches the hub loop.
func (m *NotifyModule) Start(_ context.Context) error {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelHub = cancel
	go m.hub.Run(ctx)
	log.Println("[notify] Module started - notification hub running")
	return nil
}

func (m *NotifyModule) Stop(_ context.Context) error {
	clientCount := m.hub.ClientCount()
	if m.cancelHub != nil {
		m.cancelHub()
		m.hub.Wait()
	}
	log.Printf("[notify] Module stopped - %d clients were connected", clientCount)
	return nil
}

func (m *NotifyModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"connected_clients": m.hub.ClientCount(),
		},
	}
}

// RegisterEventConsumers subscribes to the task notification events.
func (m *NotifyModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(
		registry, events.TaskCreatedV1, m.handleTaskCreated, m,
	); err != nil {
		return fmt.Errorf("failed to register TaskCreated consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.TaskUpdatedV1, m.handleTaskUpdated, m,
	); err != nil {
		return fmt.Errorf("failed to register TaskUpdated consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.TaskSharedV1, m.handleTaskShared, m,
	); err != nil {
		return fmt.Errorf("failed to register TaskShared consumer: %w", err)
	}

	log.Println("[notify] Registered event consumers: TaskCreated, TaskUpdated, TaskShared")
	return nil
}

func (m *NotifyModule) handleTaskCreated(_ context.Context, event events.TaskEvent, _ *mono.Msg) error {
	m.hub.Push(event.RecipientID, "taskCreated", event.Notification)
	return nil
}

func (m *NotifyModule) handleTaskUpdated(_ context.Context, event events.TaskEvent, _ *mono.Msg) error {
	m.hub.Push(event.RecipientID, "taskUpdated", event.Notification)
	return nil
}

func (m *NotifyModule) handleTaskShared(_ context.Context, event events.TaskEvent, _ *mono.Msg) error {
	m.hub.Push(event.RecipientID, "taskShared", event.Notification)
	return nil
}

// GetHub returns the hub for the API module's WebSocket endpoint.
func (m *NotifyModule) GetHub() *Hub {
	return m.hub
}
