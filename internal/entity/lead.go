package entity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type Platform string

const (
	PlatformMeta     Platform = "meta"
	PlatformSnapchat Platform = "snapchat"
	PlatformTikTok   Platform = "tiktok"
)

var AllPlatforms = []Platform{PlatformMeta, PlatformSnapchat, PlatformTikTok}

func (p Platform) Valid() bool {
	return p == PlatformMeta || p == PlatformSnapchat || p == PlatformTikTok
}

type LeadStatus string

const (
	StatusNew       LeadStatus = "new"
	StatusContacted LeadStatus = "contacted"
	StatusQualified LeadStatus = "qualified"
	StatusConverted LeadStatus = "converted"
	StatusLost      LeadStatus = "lost"
)

var AllLeadStatuses = []LeadStatus{StatusNew, StatusContacted, StatusQualified, StatusConverted, StatusLost}

func (s LeadStatus) Valid() bool {
	for _, v := range AllLeadStatuses {
		if s == v {
			return true
		}
	}
	return false
}

var ErrNotFound = errors.New("not found")

// Lead: one captured lead-form submission, deduplicated by
// (platform, platform_lead_id).
type Lead struct {
	ID             string   `json:"id"`
	Platform       Platform `json:"platform"`
	PlatformLeadID string   `json:"platform_lead_id"`

	FormID       string `json:"form_id,omitempty"`
	FormName     string `json:"form_name,omitempty"`
	AdID         string `json:"ad_id,omitempty"`
	AdName       string `json:"ad_name,omitempty"`
	AdsetID      string `json:"adset_id,omitempty"`
	AdsetName    string `json:"adset_name,omitempty"`
	CampaignID   string `json:"campaign_id,omitempty"`
	CampaignName string `json:"campaign_name,omitempty"`
	PageID       string `json:"page_id,omitempty"`

	CustomerName string `json:"customer_name,omitempty"`
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`

	// Form answers that don't map onto a canonical column. Never dropped.
	CustomFields map[string]string `json:"custom_fields,omitempty"`

	Status LeadStatus `json:"status"`
	Notes  string     `json:"notes,omitempty"`

	PlatformCreatedAt time.Time `json:"platform_created_at"`
	ReceivedAt        time.Time `json:"received_at"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Factory
func NewLead(platform Platform, platformLeadID string) (*Lead, error) {
	if !platform.Valid() {
		return nil, errors.New("platform is invalid")
	}
	if platformLeadID == "" {
		return nil, errors.New("platform lead id is required")
	}

	now := time.Now()
	return &Lead{
		ID:                uuid.New().String(),
		Platform:          platform,
		PlatformLeadID:    platformLeadID,
		CustomFields:      map[string]string{},
		Status:            StatusNew,
		PlatformCreatedAt: now,
		ReceivedAt:        now,
	}, nil
}

// LeadFilter narrows List/Stats/Chart queries. Zero values mean "no filter".
type LeadFilter struct {
	Platform string
	Status   string
	Search   string
	From     *time.Time
	To       *time.Time
}

type LeadPageOptions struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

type LeadUpdate struct {
	Status       *string
	Notes        *string
	CustomerName *string
	Email        *string
	Phone        *string
}

func (u LeadUpdate) Empty() bool {
	return u.Status == nil && u.Notes == nil && u.CustomerName == nil &&
		u.Email == nil && u.Phone == nil
}

type LeadStats struct {
	Total      int64            `json:"total"`
	Today      int64            `json:"today"`
	ByPlatform map[string]int64 `json:"byPlatform"`
	ByStatus   map[string]int64 `json:"byStatus"`
}

type ChartRow struct {
	Date     string `json:"date"`
	Platform string `json:"platform"`
	Count    int64  `json:"count"`
}

type LeadRepositoryInterface interface {

	// Upsert inserts or refreshes the lead keyed on (platform, platform_lead_id)
	// and reports whether a new row was created.
	Upsert(ctx context.Context, lead *Lead) (created bool, err error)

	FindByID(ctx context.Context, id string) (*Lead, error)
	List(ctx context.Context, filter LeadFilter, page LeadPageOptions) ([]*Lead, int64, error)
	Update(ctx context.Context, id string, update LeadUpdate) (*Lead, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, from, to *time.Time) (*LeadStats, error)
	Chart(ctx context.Context, from, to time.Time, platform string) ([]ChartRow, error)
}
