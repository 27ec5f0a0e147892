package usecase

import (
	"encoding/json"
	"strconv"
	"time"
)

// leadPayload is the canonical intermediate every platform payload is
// decoded into before any business logic runs. Unknown shapes fail closed
// instead of being read field-by-field.
type leadPayload struct {
	LeadID     string
	FormID     string
	FormName   string
	AdID       string
	AdsetID    string
	CampaignID string
	PageID     string
	CreatedAt  time.Time // zero when the payload carries no timestamp
	Fields     []FormField
}

// metaWebhookEvent mirrors Meta's webhook envelope: entry[].changes[] with
// the leadgen details under value.
type metaWebhookEvent struct {
	Object string `json:"object"`
	Entry  []struct {
		ID      string `json:"id"`
		Changes []struct {
			Field string          `json:"field"`
			Value json.RawMessage `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// metaLeadgenValue is the decoded value of one field=="leadgen" change.
type metaLeadgenValue struct {
	LeadgenID   string
	PageID      string
	FormID      string
	AdID        string
	AdgroupID   string
	CreatedTime time.Time
}

func parseMetaEvent(raw []byte) (*metaWebhookEvent, error) {
	var event metaWebhookEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		return nil, NewDomainError(CodeValidation, "invalid payload")
	}
	return &event, nil
}

func parseMetaLeadgenValue(raw json.RawMessage) (*metaLeadgenValue, error) {
	obj, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}
	v := &metaLeadgenValue{
		LeadgenID: stringField(obj, "leadgen_id"),
		PageID:    stringField(obj, "page_id"),
		FormID:    stringField(obj, "form_id"),
		AdID:      stringField(obj, "ad_id"),
		AdgroupID: stringField(obj, "adgroup_id"),
	}
	if ts := intField(obj, "created_time"); ts > 0 {
		v.CreatedTime = time.Unix(ts, 0)
	}
	return v, nil
}

// parseSnapchatPayload accepts the lead either at the top level or wrapped
// under "lead".
func parseSnapchatPayload(raw []byte) (*leadPayload, error) {
	obj, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}
	if nested, ok := obj["lead"].(map[string]any); ok {
		obj = nested
	}

	p := &leadPayload{
		LeadID:     stringField(obj, "lead_id", "id"),
		FormID:     stringField(obj, "lead_form_id", "form_id"),
		FormName:   stringField(obj, "form_name"),
		AdID:       stringField(obj, "ad_id"),
		AdsetID:    stringField(obj, "ad_squad_id", "adset_id"),
		CampaignID: stringField(obj, "campaign_id"),
		Fields:     formFields(obj),
	}
	p.CreatedAt = timeField(obj, "created_at", "timestamp")
	return p, nil
}

// parseTikTokPayload accepts the lead under data.lead, under lead, or as
// the body itself; the id may come as lead_id or id.
func parseTikTokPayload(raw []byte) (*leadPayload, error) {
	obj, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}
	if data, ok := obj["data"].(map[string]any); ok {
		if nested, ok := data["lead"].(map[string]any); ok {
			obj = nested
		} else {
			obj = data
		}
	} else if nested, ok := obj["lead"].(map[string]any); ok {
		obj = nested
	}

	p := &leadPayload{
		LeadID:     stringField(obj, "lead_id", "id"),
		FormID:     stringField(obj, "form_id", "page_id"),
		FormName:   stringField(obj, "form_name", "page_name"),
		AdID:       stringField(obj, "ad_id"),
		AdsetID:    stringField(obj, "adgroup_id", "adset_id"),
		CampaignID: stringField(obj, "campaign_id"),
		Fields:     formFields(obj),
	}
	p.CreatedAt = timeField(obj, "create_time", "created_at")
	return p, nil
}

func decodeObject(raw []byte) (map[string]any, error) {
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, NewDomainError(CodeValidation, "invalid payload")
	}
	return obj, nil
}

// formFields flattens the answers array ("fields" or "field_data", items
// shaped {name,value} or {field_name,field_value}) or a plain string map.
func formFields(obj map[string]any) []FormField {
	var out []FormField

	raw, ok := obj["fields"]
	if !ok {
		raw, ok = obj["field_data"]
	}
	if !ok {
		return out
	}

	switch v := raw.(type) {
	case []any:
		for _, item := range v {
			f, ok := item.(map[string]any)
			if !ok {
				continue
			}
			name := stringField(f, "name", "field_name")
			if name == "" {
				continue
			}
			out = append(out, FormField{Name: name, Value: stringField(f, "value", "field_value")})
		}
	case map[string]any:
		for name, val := range v {
			out = append(out, FormField{Name: name, Value: anyToString(val)})
		}
	}

	return out
}

func stringField(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := obj[k]; ok {
			if s := anyToString(v); s != "" {
				return s
			}
		}
	}
	return ""
}

func intField(obj map[string]any, key string) int64 {
	switch v := obj[key].(type) {
	case float64:
		return int64(v)
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	}
	return 0
}

func timeField(obj map[string]any, keys ...string) time.Time {
	for _, k := range keys {
		switch v := obj[k].(type) {
		case float64:
			return time.Unix(int64(v), 0)
		case string:
			if t, err := time.Parse(time.RFC3339, v); err == nil {
				return t
			}
			if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
				return time.Unix(n, 0)
			}
		}
	}
	return time.Time{}
}

// Platforms are inconsistent about numeric ids; numbers come back as
// strings without a trailing ".0" for integral values.
func anyToString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}
