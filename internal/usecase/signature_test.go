package usecase

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func signHex(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyMetaSignature(t *testing.T) {
	secret := "meta-app-secret"
	body := []byte(`{"entry":[{"id":"123"}]}`)

	t.Run("Valid Signature", func(t *testing.T) {
		sig := "sha256=" + signHex(secret, body)
		assert.True(t, VerifyMetaSignature(body, sig, secret))
	})

	t.Run("Without Prefix", func(t *testing.T) {
		assert.True(t, VerifyMetaSignature(body, signHex(secret, body), secret))
	})

	t.Run("Wrong Secret", func(t *testing.T) {
		sig := "sha256=" + signHex("other-secret", body)
		assert.False(t, VerifyMetaSignature(body, sig, secret))
	})

	t.Run("Tampered Body", func(t *testing.T) {
		sig := "sha256=" + signHex(secret, body)
		assert.False(t, VerifyMetaSignature([]byte(`{"entry":[{"id":"999"}]}`), sig, secret))
	})

	t.Run("Missing Signature", func(t *testing.T) {
		assert.False(t, VerifyMetaSignature(body, "", secret))
	})

	t.Run("Missing Secret", func(t *testing.T) {
		sig := "sha256=" + signHex(secret, body)
		assert.False(t, VerifyMetaSignature(body, sig, ""))
	})

	t.Run("Garbage Signature", func(t *testing.T) {
		assert.False(t, VerifyMetaSignature(body, "sha256=not-hex-at-all", secret))
	})
}

func TestVerifySnapchatSignature(t *testing.T) {
	secret := "snap-client-secret"
	body := []byte(`{"lead":{"id":"abc"}}`)

	snapSign := func(ts string) string {
		return signHex(secret, []byte(ts+"."+string(body)))
	}

	t.Run("Valid Signature", func(t *testing.T) {
		ts := strconv.FormatInt(time.Now().Unix(), 10)
		assert.True(t, VerifySnapchatSignature(body, snapSign(ts), ts, secret))
	})

	t.Run("Stale Timestamp", func(t *testing.T) {
		ts := strconv.FormatInt(time.Now().Add(-10*time.Minute).Unix(), 10)
		assert.False(t, VerifySnapchatSignature(body, snapSign(ts), ts, secret),
			"structurally valid signature with an old timestamp must be rejected")
	})

	t.Run("Future Timestamp", func(t *testing.T) {
		ts := strconv.FormatInt(time.Now().Add(10*time.Minute).Unix(), 10)
		assert.False(t, VerifySnapchatSignature(body, snapSign(ts), ts, secret))
	})

	t.Run("Signature Over Body Only", func(t *testing.T) {
		// Timestamp must be bound into the digest.
		ts := strconv.FormatInt(time.Now().Unix(), 10)
		assert.False(t, VerifySnapchatSignature(body, signHex(secret, body), ts, secret))
	})

	t.Run("Non Numeric Timestamp", func(t *testing.T) {
		assert.False(t, VerifySnapchatSignature(body, snapSign("soon"), "soon", secret))
	})

	t.Run("Missing Timestamp", func(t *testing.T) {
		assert.False(t, VerifySnapchatSignature(body, snapSign(""), "", secret))
	})
}

func TestVerifyTikTokSignature(t *testing.T) {
	secret := "tiktok-app-secret"
	body := []byte(`{"data":{"lead":{"lead_id":"42"}}}`)

	t.Run("Valid Signature", func(t *testing.T) {
		assert.True(t, VerifyTikTokSignature(body, signHex(secret, body), secret))
	})

	t.Run("Wrong Secret", func(t *testing.T) {
		assert.False(t, VerifyTikTokSignature(body, signHex("nope", body), secret))
	})

	t.Run("Tampered Body", func(t *testing.T) {
		sig := signHex(secret, body)
		assert.False(t, VerifyTikTokSignature([]byte(`{"data":{}}`), sig, secret))
	})

	t.Run("Missing Signature", func(t *testing.T) {
		assert.False(t, VerifyTikTokSignature(body, "", secret))
	})
}

func TestHmacEqualHexLength(t *testing.T) {
	// Truncated digests must not pass.
	secret := "s"
	body := []byte("b")
	full := signHex(secret, body)
	assert.False(t, VerifyTikTokSignature(body, full[:32], secret))
	assert.False(t, VerifyTikTokSignature(body, fmt.Sprintf("%s00", full), secret))
}
