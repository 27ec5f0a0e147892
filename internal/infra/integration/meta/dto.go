package meta

import "time"

// LeadDetails is the full lead record fetched from the Graph API; the
// webhook itself only carries the leadgen id.
type LeadDetails struct {
	ID           string
	CreatedTime  time.Time
	FormID       string
	AdID         string
	AdName       string
	AdsetID      string
	AdsetName    string
	CampaignID   string
	CampaignName string
	FieldData    []FieldData
}

type FieldData struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

type FormDetails struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type leadDetailsResponse struct {
	ID           string      `json:"id"`
	CreatedTime  string      `json:"created_time"`
	FormID       string      `json:"form_id"`
	AdID         string      `json:"ad_id"`
	AdName       string      `json:"ad_name"`
	AdsetID      string      `json:"adset_id"`
	AdsetName    string      `json:"adset_name"`
	CampaignID   string      `json:"campaign_id"`
	CampaignName string      `json:"campaign_name"`
	FieldData    []FieldData `json:"field_data"`
}

type graphErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}
