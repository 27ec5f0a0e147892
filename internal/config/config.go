package config

import (
	"os"
	"strconv"
)

type Config struct {
	DatabaseURL string
	Port        string
	AppEnv      string // "production" enforces webhook signatures

	MetaVerifyToken string
	MetaAppSecret   string
	MetaAccessToken string
	MetaGraphURL    string

	SnapchatClientSecret string
	TikTokAppSecret      string

	MailHost     string
	MailPort     int
	MailUser     string
	MailPass     string
	LeadNotifyTo string // empty disables the new-lead email
}

func FromEnv() Config {
	mailPort := 587
	if v := os.Getenv("MAIL_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			mailPort = p
		}
	}

	return Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Port:        envOr("PORT", "8080"),
		AppEnv:      envOr("APP_ENV", "development"),

		MetaVerifyToken: os.Getenv("META_VERIFY_TOKEN"),
		MetaAppSecret:   os.Getenv("META_APP_SECRET"),
		MetaAccessToken: os.Getenv("META_ACCESS_TOKEN"),
		MetaGraphURL:    envOr("META_GRAPH_URL", "https://graph.facebook.com/v19.0"),

		SnapchatClientSecret: os.Getenv("SNAPCHAT_CLIENT_SECRET"),
		TikTokAppSecret:      os.Getenv("TIKTOK_APP_SECRET"),

		MailHost:     os.Getenv("MAIL_HOST"),
		MailPort:     mailPort,
		MailUser:     os.Getenv("MAIL_USER"),
		MailPass:     os.Getenv("MAIL_PASS"),
		LeadNotifyTo: os.Getenv("LEAD_NOTIFY_TO"),
	}
}

func (c Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
