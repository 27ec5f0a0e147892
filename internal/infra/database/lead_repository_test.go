package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

func TestBuildLeadFilter(t *testing.T) {
	t.Run("No Filters", func(t *testing.T) {
		where, args := buildLeadFilter(entity.LeadFilter{})
		assert.Empty(t, where)
		assert.Empty(t, args)
	})

	t.Run("All Filters Numbered In Order", func(t *testing.T) {
		from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2026, 8, 29, 23, 59, 59, 0, time.UTC)
		where, args := buildLeadFilter(entity.LeadFilter{
			Platform: "meta",
			Status:   "new",
			Search:   "jane",
			From:     &from,
			To:       &to,
		})

		assert.Equal(t,
			" WHERE platform = $1 AND status = $2 AND (customer_name ILIKE $3 OR email ILIKE $3 OR phone ILIKE $3) AND received_at >= $4 AND received_at <= $5",
			where)
		assert.Equal(t, []any{"meta", "new", "%jane%", from, to}, args)
	})

	t.Run("Search Metacharacters Are Literal", func(t *testing.T) {
		_, args := buildLeadFilter(entity.LeadFilter{Search: `ad_100%\`})
		assert.Equal(t, []any{`%ad\_100\%\\%`}, args)
	})
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `jane`, escapeLike(`jane`))
	assert.Equal(t, `a\_b`, escapeLike(`a_b`))
	assert.Equal(t, `50\%`, escapeLike(`50%`))
	assert.Equal(t, `c:\\tmp`, escapeLike(`c:\tmp`))
}

func TestUpsertLeadQuery(t *testing.T) {
	// The created/refreshed distinction drives the new-lead notification;
	// it must come from the row version, not from timestamp comparison.
	assert.Contains(t, upsertLeadQuery, "(xmax = 0)")
	assert.Contains(t, upsertLeadQuery, "ON CONFLICT (platform, platform_lead_id)")

	// Workflow fields stay untouched on re-delivery.
	assert.NotContains(t, upsertLeadQuery, "status = EXCLUDED.status")
	assert.NotContains(t, upsertLeadQuery, "notes = EXCLUDED.notes")
}

func TestSortColumns(t *testing.T) {
	for _, spelling := range []string{"receivedAt", "received_at"} {
		col, ok := sortColumns[spelling]
		assert.True(t, ok, spelling)
		assert.Equal(t, "received_at", col)
	}
	_, ok := sortColumns["custom_fields; DROP TABLE leads"]
	assert.False(t, ok)
}
