package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

func TestNormalizeFields(t *testing.T) {
	t.Run("Synthesizes Customer Name", func(t *testing.T) {
		out := NormalizeFields([]FormField{
			{Name: "first_name", Value: "Jane"},
			{Name: "last_name", Value: "Doe"},
			{Name: "favorite_color", Value: "blue"},
		})

		assert.Equal(t, "Jane", out.FirstName)
		assert.Equal(t, "Doe", out.LastName)
		assert.Equal(t, "Jane Doe", out.CustomerName)
		assert.Equal(t, map[string]string{"favorite_color": "blue"}, out.CustomFields)
	})

	t.Run("Explicit Name Wins", func(t *testing.T) {
		out := NormalizeFields([]FormField{
			{Name: "full_name", Value: "Maria Silva"},
			{Name: "first_name", Value: "Maria"},
		})
		assert.Equal(t, "Maria Silva", out.CustomerName)
	})

	t.Run("First Name Only", func(t *testing.T) {
		out := NormalizeFields([]FormField{{Name: "first_name", Value: "Jane"}})
		assert.Equal(t, "Jane", out.CustomerName)
	})

	t.Run("Email Is Case Folded", func(t *testing.T) {
		out := NormalizeFields([]FormField{{Name: "EMAIL", Value: "Jane.Doe@Example.COM"}})
		assert.Equal(t, "jane.doe@example.com", out.Email)
	})

	t.Run("Phone Aliases", func(t *testing.T) {
		for _, alias := range []string{"phone", "phone_number", "PhoneNumber"} {
			out := NormalizeFields([]FormField{{Name: alias, Value: "+5511999999999"}})
			assert.Equal(t, "+5511999999999", out.Phone, alias)
		}
	})

	t.Run("Custom Fields Keep Original Key", func(t *testing.T) {
		out := NormalizeFields([]FormField{{Name: "Favorite_Color", Value: "blue"}})
		_, ok := out.CustomFields["Favorite_Color"]
		assert.True(t, ok, "original (non-lowercased) key must survive")
	})

	t.Run("Empty Input", func(t *testing.T) {
		out := NormalizeFields(nil)
		assert.Empty(t, out.CustomerName)
		assert.Empty(t, out.CustomFields)
	})

	t.Run("Deterministic", func(t *testing.T) {
		fields := []FormField{
			{Name: "email", Value: "a@b.com"},
			{Name: "x", Value: "1"},
			{Name: "y", Value: "2"},
		}
		assert.Equal(t, NormalizeFields(fields), NormalizeFields(fields))
	})
}

func TestLeadFieldsApply(t *testing.T) {
	lead, err := entity.NewLead(entity.PlatformTikTok, "lead-1")
	assert.NoError(t, err)
	lead.Email = "old@example.com"
	lead.CustomFields["existing"] = "kept"

	LeadFields{
		FirstName:    "Jane",
		CustomFields: map[string]string{"color": "blue"},
	}.Apply(lead)

	assert.Equal(t, "Jane", lead.FirstName)
	assert.Equal(t, "old@example.com", lead.Email, "empty slots must not clobber")
	assert.Equal(t, "kept", lead.CustomFields["existing"])
	assert.Equal(t, "blue", lead.CustomFields["color"])
}
