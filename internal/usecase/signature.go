package usecase

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// Snapchat rejects timestamps further than this from the server clock.
const snapTimestampTolerance = 5 * time.Minute

// VerifyMetaSignature checks the x-hub-signature-256 header: HMAC-SHA256 of
// the raw body with the app secret, sent as "sha256=<hex>". The raw bytes
// must be used as received; re-serialized JSON breaks the digest.
func VerifyMetaSignature(rawBody []byte, signatureHeader, appSecret string) bool {
	sig := strings.TrimSpace(signatureHeader)
	if sig == "" || appSecret == "" {
		return false
	}
	if strings.HasPrefix(strings.ToLower(sig), "sha256=") {
		sig = sig[len("sha256="):]
	}
	return hmacEqualHex(sig, hmacSHA256(appSecret, rawBody))
}

// VerifySnapchatSignature checks HMAC-SHA256 over "{timestamp}.{body}" and
// rejects timestamps outside a ±5 minute window to stop replays.
func VerifySnapchatSignature(rawBody []byte, signature, timestamp, clientSecret string) bool {
	sig := strings.TrimSpace(signature)
	if sig == "" || clientSecret == "" || timestamp == "" {
		return false
	}

	ts, err := strconv.ParseInt(strings.TrimSpace(timestamp), 10, 64)
	if err != nil {
		return false
	}
	drift := time.Since(time.Unix(ts, 0))
	if drift < 0 {
		drift = -drift
	}
	if drift > snapTimestampTolerance {
		return false
	}

	signed := append([]byte(strings.TrimSpace(timestamp)+"."), rawBody...)
	return hmacEqualHex(sig, hmacSHA256(clientSecret, signed))
}

// VerifyTikTokSignature checks a bare hex HMAC-SHA256 over the raw body.
func VerifyTikTokSignature(rawBody []byte, signature, appSecret string) bool {
	sig := strings.TrimSpace(signature)
	if sig == "" || appSecret == "" {
		return false
	}
	return hmacEqualHex(sig, hmacSHA256(appSecret, rawBody))
}

func hmacSHA256(secret string, body []byte) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return mac.Sum(nil)
}

func hmacEqualHex(gotHex string, expected []byte) bool {
	got, err := hex.DecodeString(gotHex)
	if err != nil {
		return false
	}
	return hmac.Equal(got, expected)
}
