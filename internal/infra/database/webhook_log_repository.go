package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

type WebhookLogRepository struct {
	DB *sql.DB
}

func NewWebhookLogRepository(db *sql.DB) *WebhookLogRepository {
	return &WebhookLogRepository{DB: db}
}

func (r *WebhookLogRepository) Create(ctx context.Context, webhookLog *entity.WebhookLog) error {
	headers, err := json.Marshal(webhookLog.Headers)
	if err != nil {
		return err
	}

	// The raw body is preserved verbatim; bodies that aren't valid JSON
	// still have to fit the jsonb column, so they go in as a JSON string.
	payload := []byte(webhookLog.RawPayload)
	if !json.Valid(payload) {
		payload, err = json.Marshal(string(webhookLog.RawPayload))
		if err != nil {
			return err
		}
	}

	query := `
		INSERT INTO webhook_logs (id, platform, event_type, raw_payload, headers, ip_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.DB.ExecContext(ctx, query,
		webhookLog.ID,
		webhookLog.Platform,
		nullString(webhookLog.EventType),
		payload,
		headers,
		nullString(webhookLog.IPAddress),
		webhookLog.CreatedAt,
	)
	return err
}

func (r *WebhookLogRepository) MarkProcessed(ctx context.Context, id, leadID string) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE webhook_logs
		SET processed = TRUE, lead_id = NULLIF($2, '')::uuid
		WHERE id = $1
	`, id, leadID)
	return err
}

func (r *WebhookLogRepository) MarkFailed(ctx context.Context, id, errMsg string) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE webhook_logs
		SET error = $2
		WHERE id = $1
	`, id, errMsg)
	return err
}

func (r *WebhookLogRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM webhook_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
