package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/Nishanthpaka11/TinyLink/internal/app/model"
	"github.com/Nishanthpaka11/TinyLink/internal/app/repository"
)

// ClickPublisher records a pending click event and hands it to NATS
// JetStream. This telemetry is best effort: the authoritative
// total_clicks counter is incremented synchronously by the store, never
// through this pipeline.
type ClickPublisher struct {
	js   nats.JetStreamContext
	repo repository.ClickEventRepository
}

// NewClickPublisher creates a click event publisher.
func NewClickPublisher(js nats.JetStreamContext, repo repository.ClickEventRepository) *ClickPublisher {
	return &ClickPublisher{js: js, repo: repo}
}

// Publish writes a pending event row and publishes it to the stream.
// The consumer flips the row to stored; the janitor fails rows whose
// message never arrives.
func (p *ClickPublisher) Publish(ctx context.Context, linkCode, ip, userAgent string) error {
	event := model.ClickEvent{
		ID:        uuid.New().String(),
		LinkCode:  linkCode,
		IP:        ip,
		UserAgent: userAgent,
		Status:    model.ClickStatusPending,
		Timestamp: time.Now(),
	}

	if err := p.repo.Create(ctx, &event); err != nil {
		return fmt.Errorf("record pending click: %w", err)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal click event: %w", err)
	}

	if _, err := p.js.Publish(model.ClickStreamSubject, data); err != nil {
		return fmt.Errorf("publish click event: %w", err)
	}
	return nil
}
