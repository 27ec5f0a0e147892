package worker

import (
	"context"
	"log"
	"time"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

// RetentionWorker sweeps webhook logs past the 30-day retention window.
type RetentionWorker struct {
	logs         entity.WebhookLogRepositoryInterface
	retention    time.Duration
	tickInterval time.Duration
}

func NewRetentionWorker(logs entity.WebhookLogRepositoryInterface) *RetentionWorker {
	return &RetentionWorker{
		logs:         logs,
		retention:    entity.WebhookLogRetention,
		tickInterval: 1 * time.Hour,
	}
}

func (w *RetentionWorker) Start(ctx context.Context) {
	log.Printf("🕒 Webhook log retention worker started (%s window)", w.retention)

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.purge(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("⚠️ Webhook log retention worker stopped")
			return
		case <-ticker.C:
			w.purge(ctx)
		}
	}
}

func (w *RetentionWorker) purge(ctx context.Context) {
	cutoff := time.Now().Add(-w.retention)

	n, err := w.logs.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		log.Printf("❌ Webhook log purge failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("✅ Purged %d webhook log(s) older than %s", n, cutoff.Format("2006-01-02"))
	}
}
