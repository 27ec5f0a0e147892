package entity

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Logs older than this are eligible for the purge sweep.
const WebhookLogRetention = 30 * 24 * time.Hour

// WebhookLog is the audit record of one inbound delivery attempt. Every
// delivery gets its own row, duplicates included; after the outcome write
// (processed or error) the row is never touched again.
type WebhookLog struct {
	ID         string            `json:"id"`
	Platform   Platform          `json:"platform"`
	EventType  string            `json:"event_type,omitempty"`
	RawPayload json.RawMessage   `json:"raw_payload,omitempty"`
	Headers    map[string]string `json:"headers,omitempty"`
	Processed  bool              `json:"processed"`
	Error      string            `json:"error,omitempty"`
	LeadID     string            `json:"lead_id,omitempty"`
	IPAddress  string            `json:"ip_address,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

func NewWebhookLog(platform Platform, eventType string, rawPayload []byte, headers map[string]string, ip string) *WebhookLog {
	return &WebhookLog{
		ID:         uuid.New().String(),
		Platform:   platform,
		EventType:  eventType,
		RawPayload: rawPayload,
		Headers:    headers,
		IPAddress:  ip,
		CreatedAt:  time.Now(),
	}
}

type WebhookLogRepositoryInterface interface {
	Create(ctx context.Context, webhookLog *WebhookLog) error

	// Exactly one of these is called per log, once.
	MarkProcessed(ctx context.Context, id, leadID string) error
	MarkFailed(ctx context.Context, id, errMsg string) error

	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
