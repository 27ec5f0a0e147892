package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseSnapchatPayload(t *testing.T) {
	t.Run("Wrapped Lead", func(t *testing.T) {
		body := []byte(`{"lead":{"id":"snap-1","ad_id":"ad-9","fields":[{"name":"email","value":"a@b.com"}]}}`)
		p, err := parseSnapchatPayload(body)
		assert.NoError(t, err)
		assert.Equal(t, "snap-1", p.LeadID)
		assert.Equal(t, "ad-9", p.AdID)
		assert.Equal(t, []FormField{{Name: "email", Value: "a@b.com"}}, p.Fields)
	})

	t.Run("Top Level Lead", func(t *testing.T) {
		p, err := parseSnapchatPayload([]byte(`{"lead_id":"snap-2","campaign_id":"c-1"}`))
		assert.NoError(t, err)
		assert.Equal(t, "snap-2", p.LeadID)
		assert.Equal(t, "c-1", p.CampaignID)
	})

	t.Run("Unix Timestamp", func(t *testing.T) {
		p, err := parseSnapchatPayload([]byte(`{"id":"snap-3","created_at":1700000000}`))
		assert.NoError(t, err)
		assert.Equal(t, time.Unix(1700000000, 0), p.CreatedAt)
	})

	t.Run("Not JSON", func(t *testing.T) {
		_, err := parseSnapchatPayload([]byte(`not json`))
		assert.Error(t, err)
		assert.True(t, IsDomainError(err))
	})

	t.Run("Array Body Fails Closed", func(t *testing.T) {
		_, err := parseSnapchatPayload([]byte(`[1,2,3]`))
		assert.Error(t, err)
	})
}

func TestParseTikTokPayload(t *testing.T) {
	t.Run("Nested Under Data Lead", func(t *testing.T) {
		body := []byte(`{"data":{"lead":{"lead_id":"tt-1","adgroup_id":"ag-1","fields":[{"field_name":"phone","field_value":"123"}]}}}`)
		p, err := parseTikTokPayload(body)
		assert.NoError(t, err)
		assert.Equal(t, "tt-1", p.LeadID)
		assert.Equal(t, "ag-1", p.AdsetID)
		assert.Equal(t, []FormField{{Name: "phone", Value: "123"}}, p.Fields)
	})

	t.Run("Nested Under Lead", func(t *testing.T) {
		p, err := parseTikTokPayload([]byte(`{"lead":{"id":"tt-2"}}`))
		assert.NoError(t, err)
		assert.Equal(t, "tt-2", p.LeadID)
	})

	t.Run("Body Is The Lead", func(t *testing.T) {
		p, err := parseTikTokPayload([]byte(`{"id":"tt-3","create_time":1700000000}`))
		assert.NoError(t, err)
		assert.Equal(t, "tt-3", p.LeadID)
		assert.Equal(t, time.Unix(1700000000, 0), p.CreatedAt)
	})

	t.Run("Numeric Id Becomes String", func(t *testing.T) {
		p, err := parseTikTokPayload([]byte(`{"lead_id":7234567890123}`))
		assert.NoError(t, err)
		assert.Equal(t, "7234567890123", p.LeadID)
	})

	t.Run("Fields As Object Map", func(t *testing.T) {
		p, err := parseTikTokPayload([]byte(`{"id":"tt-4","fields":{"email":"x@y.com"}}`))
		assert.NoError(t, err)
		assert.Equal(t, []FormField{{Name: "email", Value: "x@y.com"}}, p.Fields)
	})
}

func TestParseMetaEvent(t *testing.T) {
	body := []byte(`{"object":"page","entry":[{"id":"page-1","changes":[{"field":"leadgen","value":{"leadgen_id":"lg-1","form_id":"f-1","ad_id":"ad-1","created_time":1700000000}}]}]}`)

	event, err := parseMetaEvent(body)
	assert.NoError(t, err)
	assert.Len(t, event.Entry, 1)
	assert.Equal(t, "page-1", event.Entry[0].ID)

	value, err := parseMetaLeadgenValue(event.Entry[0].Changes[0].Value)
	assert.NoError(t, err)
	assert.Equal(t, "lg-1", value.LeadgenID)
	assert.Equal(t, "f-1", value.FormID)
	assert.Equal(t, "ad-1", value.AdID)
	assert.Equal(t, time.Unix(1700000000, 0), value.CreatedTime)
}

func TestParseMetaLeadgenValueNumericIds(t *testing.T) {
	value, err := parseMetaLeadgenValue([]byte(`{"leadgen_id":123456,"page_id":789}`))
	assert.NoError(t, err)
	assert.Equal(t, "123456", value.LeadgenID)
	assert.Equal(t, "789", value.PageID)
}
