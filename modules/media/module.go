package media

import (
	"context"
	"log"
	"os"

	"github.com/go-monolith/mono"
)

const bucketName = "task-media"

// MediaModule owns the NATS object store connection and the media
// service. When NATS is unreachable at startup the module runs with
// storage disabled and upload requests fail with a service error.
type MediaModule struct {
	store   *JetStreamObjectStore
	service *Service
	natsURL string
}

// NewModule creates a media module configured from the environment.
func NewModule() *MediaModule {
	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://localhost:4222"
	}
	return &MediaModule{natsURL: natsURL}
}

func (m *MediaModule) Name() string {
	return "media"
}

func (m *MediaModule) Start(ctx context.Context) error {
	store, err := NewJetStreamObjectStore(ctx, m.natsURL, bucketName)
	if err != nil {
		log.Printf("[media] NATS unreachable at %s, uploads disabled: %v", m.natsURL, err)
		m.service = NewService(nil)
		return nil
	}

	m.store = store
	m.service = NewService(store)
	log.Printf("[media] Connected to NATS at %s (bucket: %s)", m.natsURL, bucketName)
	return nil
}

func (m *MediaModule) Stop(_ context.Context) error {
	if m.store != nil {
		if err := m.store.Close(); err != nil {
			log.Printf("[media] Error closing NATS connection: %v", err)
		}
	}
	log.Println("[media] Module stopped")
	return nil
}

func (m *MediaModule) Health(_ context.Context) mono.HealthStatus {
	if m.store == nil {
		return mono.HealthStatus{
			Healthy: true,
			Message: "storage disabled",
		}
	}
	if !m.store.IsConnected() {
		return mono.HealthStatus{
			Healthy: false,
			Message: "NATS connection lost",
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"bucket": bucketName,
		},
	}
}

// GetService returns the media service for direct use by the API module.
func (m *MediaModule) GetService() *Service {
	return m.service
}
