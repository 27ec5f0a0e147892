package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-leads/internal/usecase"
)

const (
	maxWebhookBodyBytes = 1 << 20 // 1MB
	processTimeout      = 30 * time.Second
)

type WebhookProcessor interface {
	ProcessMeta(ctx context.Context, in usecase.WebhookInput) error
	ProcessSnapchat(ctx context.Context, in usecase.WebhookInput) error
	ProcessTikTok(ctx context.Context, in usecase.WebhookInput) error
}

// WebhookHandler owns the three platform endpoints. The contract every
// platform shares: acknowledge fast, process after. The response is written
// before the body is even parsed, and processing runs detached so a storage
// or Graph API failure can never turn into a non-2xx that would trigger the
// platform's retry storm. The webhook log is the error channel.
type WebhookHandler struct {
	Processor   WebhookProcessor
	VerifyToken string
}

func NewWebhookHandler(processor WebhookProcessor, verifyToken string) *WebhookHandler {
	return &WebhookHandler{Processor: processor, VerifyToken: verifyToken}
}

// HandleMetaVerify answers Meta's subscription handshake:
// GET /webhooks/meta?hub.mode=subscribe&hub.verify_token=...&hub.challenge=...
func (h *WebhookHandler) HandleMetaVerify(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("hub.mode")
	token := r.URL.Query().Get("hub.verify_token")
	challenge := r.URL.Query().Get("hub.challenge")

	if mode == "subscribe" && token != "" && token == h.VerifyToken {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(challenge))
		return
	}
	http.Error(w, "Forbidden", http.StatusForbidden)
}

func (h *WebhookHandler) HandleMeta(w http.ResponseWriter, r *http.Request) {
	in, ok := h.captureInput(w, r)
	if !ok {
		return
	}
	in.Signature = r.Header.Get("x-hub-signature-256")

	// Meta wants its 200 within ~20s regardless of processing.
	w.WriteHeader(http.StatusOK)

	h.dispatch(entity.PlatformMeta, in, h.Processor.ProcessMeta)
}

func (h *WebhookHandler) HandleSnapchat(w http.ResponseWriter, r *http.Request) {
	in, ok := h.captureInput(w, r)
	if !ok {
		return
	}
	in.Signature = r.Header.Get("x-snap-signature")
	in.Timestamp = r.Header.Get("x-snap-timestamp")

	w.WriteHeader(http.StatusOK)

	h.dispatch(entity.PlatformSnapchat, in, h.Processor.ProcessSnapchat)
}

func (h *WebhookHandler) HandleTikTok(w http.ResponseWriter, r *http.Request) {
	in, ok := h.captureInput(w, r)
	if !ok {
		return
	}
	in.Signature = r.Header.Get("x-tiktok-signature")
	if in.Signature == "" {
		in.Signature = r.Header.Get("x-tt-signature")
	}

	// TikTok expects a success-coded JSON ack.
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]any{"code": 0, "message": "success"})

	h.dispatch(entity.PlatformTikTok, in, h.Processor.ProcessTikTok)
}

// captureInput grabs the exact body bytes and request metadata before the
// ack. Only an unreadable/oversized body gets a non-2xx; nothing has been
// promised to the platform at that point.
func (h *WebhookHandler) captureInput(w http.ResponseWriter, r *http.Request) (usecase.WebhookInput, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes)
	rawBody, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Bad body", http.StatusBadRequest)
		return usecase.WebhookInput{}, false
	}

	headers := make(map[string]string, len(r.Header))
	for name := range r.Header {
		headers[name] = r.Header.Get(name)
	}

	return usecase.WebhookInput{
		RawBody:   rawBody,
		Headers:   headers,
		IPAddress: getClientIP(r),
	}, true
}

func (h *WebhookHandler) dispatch(platform entity.Platform, in usecase.WebhookInput, process func(context.Context, usecase.WebhookInput) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), processTimeout)
		defer cancel()

		outcome := "processed"
		if err := process(ctx, in); err != nil {
			outcome = "failed"
			log.Printf("❌ %s webhook processing failed: %v", platform, err)
		}
		middleware.RecordWebhook(string(platform), outcome)
	}()
}

func getClientIP(r *http.Request) string {
	// X-Forwarded-For grows a hop per proxy; the client is the first entry.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
