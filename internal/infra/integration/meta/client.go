package meta

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/xavierca1/ligue-leads/internal/infra/http/middleware"
)

const (
	maxAttempts    = 3
	initialBackoff = 1 * time.Second
	requestTimeout = 10 * time.Second
)

const leadFields = "id,created_time,field_data,form_id,ad_id,ad_name,adset_id,adset_name,campaign_id,campaign_name"

// Graph API timestamps come back as "2013-01-01T00:00:00+0000" (no colon
// in the offset), which time.RFC3339 refuses.
const graphTimeLayout = "2006-01-02T15:04:05-0700"

type Client struct {
	baseURL     string
	accessToken string
	http        *http.Client
	backoff     time.Duration
}

func NewClient(accessToken, baseURL string) *Client {
	return &Client{
		baseURL:     baseURL,
		accessToken: accessToken,
		http:        &http.Client{Timeout: requestTimeout},
		backoff:     initialBackoff,
	}
}

// FetchLeadDetails pulls the full field data for one leadgen id.
// Transient failures (5xx, timeouts, resets) are retried up to 3 times
// with a doubling backoff starting at 1s; 4xx fails immediately.
func (c *Client) FetchLeadDetails(ctx context.Context, leadgenID string) (*LeadDetails, error) {
	reqURL := fmt.Sprintf("%s/%s?fields=%s&access_token=%s",
		c.baseURL, url.PathEscape(leadgenID), leadFields, url.QueryEscape(c.accessToken))

	body, err := c.getWithRetry(ctx, reqURL)
	if err != nil {
		return nil, fmt.Errorf("graph lead %s: %w", leadgenID, err)
	}

	var resp leadDetailsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("graph lead %s: decode: %w", leadgenID, err)
	}

	details := &LeadDetails{
		ID:           resp.ID,
		FormID:       resp.FormID,
		AdID:         resp.AdID,
		AdName:       resp.AdName,
		AdsetID:      resp.AdsetID,
		AdsetName:    resp.AdsetName,
		CampaignID:   resp.CampaignID,
		CampaignName: resp.CampaignName,
		FieldData:    resp.FieldData,
	}
	if resp.CreatedTime != "" {
		details.CreatedTime = parseGraphTime(resp.CreatedTime)
	}
	return details, nil
}

// FetchFormDetails resolves a form id to its name. Callers treat failure
// as non-fatal; the lead just loses its form name.
func (c *Client) FetchFormDetails(ctx context.Context, formID string) (*FormDetails, error) {
	reqURL := fmt.Sprintf("%s/%s?fields=id,name&access_token=%s",
		c.baseURL, url.PathEscape(formID), url.QueryEscape(c.accessToken))

	body, err := c.getWithRetry(ctx, reqURL)
	if err != nil {
		return nil, fmt.Errorf("graph form %s: %w", formID, err)
	}

	var form FormDetails
	if err := json.Unmarshal(body, &form); err != nil {
		return nil, fmt.Errorf("graph form %s: decode: %w", formID, err)
	}
	return &form, nil
}

func (c *Client) getWithRetry(ctx context.Context, reqURL string) ([]byte, error) {
	backoff := c.backoff
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		body, retryable, err := c.get(ctx, reqURL)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable || attempt == maxAttempts {
			break
		}

		log.Printf("⚠️ Graph API attempt %d/%d failed, retrying in %s: %v", attempt, maxAttempts, backoff, err)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		backoff *= 2
	}

	middleware.RecordIntegrationError("meta_graph")
	return nil, lastErr
}

func (c *Client) get(ctx context.Context, reqURL string) (body []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, false, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Timeouts and connection resets are worth another try.
		return nil, true, err
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, err
	}

	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return body, false, nil
	}

	var graphErr graphErrorResponse
	msg := ""
	if json.Unmarshal(body, &graphErr) == nil && graphErr.Error.Message != "" {
		msg = ": " + graphErr.Error.Message
	}
	return nil, resp.StatusCode >= 500, fmt.Errorf("status %d%s", resp.StatusCode, msg)
}

func parseGraphTime(s string) time.Time {
	if t, err := time.Parse(graphTimeLayout, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}
