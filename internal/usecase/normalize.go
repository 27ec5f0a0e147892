package usecase

import (
	"strings"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

// FormField is one (identifier, answer) pair from a platform's lead form,
// after the platform-specific payload shape has been flattened.
type FormField struct {
	Name  string
	Value string
}

// LeadFields is the canonical subset a form can fill in on a Lead.
type LeadFields struct {
	CustomerName string
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	CustomFields map[string]string
}

// Recognition table: lower-cased field name -> canonical slot.
var fieldAliases = map[string]string{
	"email":        "email",
	"phone":        "phone",
	"phone_number": "phone",
	"phonenumber":  "phone",
	"full_name":    "customer_name",
	"name":         "customer_name",
	"first_name":   "first_name",
	"firstname":    "first_name",
	"last_name":    "last_name",
	"lastname":     "last_name",
}

// NormalizeFields maps raw form answers onto the canonical lead slots.
// Unrecognized fields land in CustomFields under their original name, so
// nothing a form collected is lost. Pure function, safe for any input.
func NormalizeFields(fields []FormField) LeadFields {
	out := LeadFields{CustomFields: map[string]string{}}

	explicitName := false
	for _, f := range fields {
		value := strings.TrimSpace(f.Value)
		if f.Name == "" {
			continue
		}

		switch fieldAliases[strings.ToLower(strings.TrimSpace(f.Name))] {
		case "email":
			out.Email = strings.ToLower(value)
		case "phone":
			out.Phone = value
		case "customer_name":
			out.CustomerName = value
			explicitName = value != ""
		case "first_name":
			out.FirstName = value
		case "last_name":
			out.LastName = value
		default:
			out.CustomFields[f.Name] = value
		}
	}

	if !explicitName {
		out.CustomerName = joinName(out.FirstName, out.LastName)
	}

	return out
}

// Apply copies the normalized answers onto a lead, leaving slots the form
// didn't fill untouched.
func (f LeadFields) Apply(lead *entity.Lead) {
	if f.CustomerName != "" {
		lead.CustomerName = f.CustomerName
	}
	if f.FirstName != "" {
		lead.FirstName = f.FirstName
	}
	if f.LastName != "" {
		lead.LastName = f.LastName
	}
	if f.Email != "" {
		lead.Email = f.Email
	}
	if f.Phone != "" {
		lead.Phone = f.Phone
	}
	if lead.CustomFields == nil {
		lead.CustomFields = map[string]string{}
	}
	for k, v := range f.CustomFields {
		lead.CustomFields[k] = v
	}
}

func joinName(parts ...string) string {
	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, " ")
}
