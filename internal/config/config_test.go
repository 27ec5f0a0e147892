package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		for _, k := range []string{"PORT", "APP_ENV", "META_GRAPH_URL", "MAIL_PORT"} {
			t.Setenv(k, "")
		}

		cfg := FromEnv()

		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, "development", cfg.AppEnv)
		assert.Equal(t, "https://graph.facebook.com/v19.0", cfg.MetaGraphURL)
		assert.Equal(t, 587, cfg.MailPort)
		assert.False(t, cfg.IsProduction())
	})

	t.Run("Environment Overrides", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		t.Setenv("APP_ENV", "production")
		t.Setenv("META_GRAPH_URL", "https://graph.facebook.com/v20.0")
		t.Setenv("META_APP_SECRET", "meta-secret")
		t.Setenv("MAIL_PORT", "2525")

		cfg := FromEnv()

		assert.Equal(t, "9090", cfg.Port)
		assert.Equal(t, "https://graph.facebook.com/v20.0", cfg.MetaGraphURL)
		assert.Equal(t, "meta-secret", cfg.MetaAppSecret)
		assert.Equal(t, 2525, cfg.MailPort)
		assert.True(t, cfg.IsProduction())
	})

	t.Run("Bad Mail Port Falls Back", func(t *testing.T) {
		t.Setenv("MAIL_PORT", "not-a-number")
		assert.Equal(t, 587, FromEnv().MailPort)
	})
}
