package model

import "time"

// ClickEvent is the per-redirect telemetry record carried over NATS and
// persisted by the click consumer. It is detail *around* the atomic
// total_clicks counter on Link, never a substitute for it.
type ClickEvent struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	LinkCode  string    `json:"link_code" gorm:"size:8;index;not null"`
	IP        string    `json:"ip" gorm:"size:45"`
	UserAgent string    `json:"user_agent" gorm:"type:text"`
	Status    string    `json:"status" gorm:"size:16;not null;default:pending"`
	Timestamp time.Time `json:"timestamp" gorm:"index"`
}

const (
	ClickStatusPending = "pending"
	ClickStatusStored  = "stored"
	ClickStatusFailed  = "failed"
)

const (
	ClickStreamName     = "CLICKS"
	ClickStreamSubject  = "clicks.events"
	ClickConsumerName   = "click-logger"
	ClickStreamMaxBytes = 1024 * 1024 * 100 // 100MB
)
