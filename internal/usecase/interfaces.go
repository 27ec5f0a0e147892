package usecase

import (
	"context"

	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/infra/integration/meta"
)

// LeadDetailFetcher is the Graph API surface the Meta webhook path needs:
// the webhook only carries a leadgen id, field data requires a callback.
type LeadDetailFetcher interface {
	FetchLeadDetails(ctx context.Context, leadgenID string) (*meta.LeadDetails, error)
	FetchFormDetails(ctx context.Context, formID string) (*meta.FormDetails, error)
}

// LeadNotifier is pinged when an upsert creates a brand-new lead.
// Implementations must never block ingestion on failure.
type LeadNotifier interface {
	NotifyNewLead(lead *entity.Lead) error
}
