package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-leads/internal/infra/integration/meta"
)

// WebhookInput carries everything a handler captured from one delivery.
// RawBody must be the exact bytes received; signatures are computed over
// them, not over a re-serialized form.
type WebhookInput struct {
	RawBody   []byte
	Signature string
	Timestamp string // snapchat only
	Headers   map[string]string
	IPAddress string
}

// WebhookSecrets holds the per-platform shared secrets. Enforce is false
// outside production so local testing doesn't need to forge HMACs.
type WebhookSecrets struct {
	MetaAppSecret        string
	SnapchatClientSecret string
	TikTokAppSecret      string
	Enforce              bool
}

// ProcessWebhookUseCase runs the verify → enrich → normalize → upsert → log
// pipeline for one delivery. It is invoked after the HTTP response has been
// written, so every failure ends up in the webhook log, never in the
// response; that keeps the platforms from starting retry storms.
type ProcessWebhookUseCase struct {
	Leads    entity.LeadRepositoryInterface
	Logs     entity.WebhookLogRepositoryInterface
	Meta     LeadDetailFetcher
	Notifier LeadNotifier // optional
	Secrets  WebhookSecrets
}

func NewProcessWebhookUseCase(
	leads entity.LeadRepositoryInterface,
	logs entity.WebhookLogRepositoryInterface,
	fetcher LeadDetailFetcher,
	notifier LeadNotifier,
	secrets WebhookSecrets,
) *ProcessWebhookUseCase {
	return &ProcessWebhookUseCase{
		Leads:    leads,
		Logs:     logs,
		Meta:     fetcher,
		Notifier: notifier,
		Secrets:  secrets,
	}
}

func (uc *ProcessWebhookUseCase) ProcessMeta(ctx context.Context, in WebhookInput) error {
	webhookLog := uc.openLog(ctx, entity.PlatformMeta, "leadgen", in)

	if uc.Secrets.Enforce && !VerifyMetaSignature(in.RawBody, in.Signature, uc.Secrets.MetaAppSecret) {
		return uc.fail(ctx, webhookLog, NewDomainError(CodeInvalidSignature, "Invalid signature"))
	}

	event, err := parseMetaEvent(in.RawBody)
	if err != nil {
		return uc.fail(ctx, webhookLog, err)
	}

	var (
		lastLeadID string
		errMsgs    []string
	)
	for _, entry := range event.Entry {
		for _, change := range entry.Changes {
			if change.Field != "leadgen" {
				continue
			}
			leadID, err := uc.processMetaLeadgen(ctx, entry.ID, change.Value)
			if err != nil {
				errMsgs = append(errMsgs, err.Error())
				continue
			}
			lastLeadID = leadID
		}
	}

	if len(errMsgs) > 0 {
		return uc.fail(ctx, webhookLog, fmt.Errorf("%s", strings.Join(errMsgs, "; ")))
	}
	uc.succeed(ctx, webhookLog, lastLeadID)
	return nil
}

func (uc *ProcessWebhookUseCase) processMetaLeadgen(ctx context.Context, pageID string, raw []byte) (string, error) {
	value, err := parseMetaLeadgenValue(raw)
	if err != nil {
		return "", err
	}
	if value.LeadgenID == "" {
		return "", NewDomainError(CodeMissingLeadID, "leadgen event without leadgen_id")
	}
	if value.PageID == "" {
		value.PageID = pageID
	}

	// Lead and form details are independent; fetch them in parallel. The
	// form fetch degrades to an empty name, the lead fetch is mandatory.
	var wg sync.WaitGroup
	var details *meta.LeadDetails
	var form *meta.FormDetails
	var leadErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		details, leadErr = uc.Meta.FetchLeadDetails(ctx, value.LeadgenID)
	}()
	if value.FormID != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var formErr error
			form, formErr = uc.Meta.FetchFormDetails(ctx, value.FormID)
			if formErr != nil {
				log.Printf("⚠️ form details unavailable for %s: %v", value.FormID, formErr)
			}
		}()
	}
	wg.Wait()

	if leadErr != nil {
		return "", leadErr
	}

	lead, err := entity.NewLead(entity.PlatformMeta, value.LeadgenID)
	if err != nil {
		return "", err
	}

	// Event-supplied identifiers win over the API copy.
	lead.PageID = value.PageID
	lead.FormID = firstNonEmpty(value.FormID, details.FormID)
	lead.AdID = firstNonEmpty(value.AdID, details.AdID)
	lead.AdName = details.AdName
	lead.AdsetID = firstNonEmpty(value.AdgroupID, details.AdsetID)
	lead.AdsetName = details.AdsetName
	lead.CampaignID = details.CampaignID
	lead.CampaignName = details.CampaignName
	if form != nil {
		lead.FormName = form.Name
	}
	if !value.CreatedTime.IsZero() {
		lead.PlatformCreatedAt = value.CreatedTime
	} else if !details.CreatedTime.IsZero() {
		lead.PlatformCreatedAt = details.CreatedTime
	}

	var fields []FormField
	for _, fd := range details.FieldData {
		fields = append(fields, FormField{Name: fd.Name, Value: strings.Join(fd.Values, ", ")})
	}
	NormalizeFields(fields).Apply(lead)

	return uc.persist(ctx, lead)
}

func (uc *ProcessWebhookUseCase) ProcessSnapchat(ctx context.Context, in WebhookInput) error {
	webhookLog := uc.openLog(ctx, entity.PlatformSnapchat, "lead", in)

	if uc.Secrets.Enforce && !VerifySnapchatSignature(in.RawBody, in.Signature, in.Timestamp, uc.Secrets.SnapchatClientSecret) {
		return uc.fail(ctx, webhookLog, NewDomainError(CodeInvalidSignature, "Invalid signature"))
	}

	payload, err := parseSnapchatPayload(in.RawBody)
	if err != nil {
		return uc.fail(ctx, webhookLog, err)
	}

	leadID, err := uc.persistPayload(ctx, entity.PlatformSnapchat, payload)
	if err != nil {
		return uc.fail(ctx, webhookLog, err)
	}
	uc.succeed(ctx, webhookLog, leadID)
	return nil
}

func (uc *ProcessWebhookUseCase) ProcessTikTok(ctx context.Context, in WebhookInput) error {
	webhookLog := uc.openLog(ctx, entity.PlatformTikTok, "lead", in)

	if uc.Secrets.Enforce && !VerifyTikTokSignature(in.RawBody, in.Signature, uc.Secrets.TikTokAppSecret) {
		return uc.fail(ctx, webhookLog, NewDomainError(CodeInvalidSignature, "Invalid signature"))
	}

	payload, err := parseTikTokPayload(in.RawBody)
	if err != nil {
		return uc.fail(ctx, webhookLog, err)
	}

	leadID, err := uc.persistPayload(ctx, entity.PlatformTikTok, payload)
	if err != nil {
		return uc.fail(ctx, webhookLog, err)
	}
	uc.succeed(ctx, webhookLog, leadID)
	return nil
}

func (uc *ProcessWebhookUseCase) persistPayload(ctx context.Context, platform entity.Platform, payload *leadPayload) (string, error) {
	if payload.LeadID == "" {
		return "", NewDomainError(CodeMissingLeadID, "payload without lead id")
	}

	lead, err := entity.NewLead(platform, payload.LeadID)
	if err != nil {
		return "", err
	}
	lead.FormID = payload.FormID
	lead.FormName = payload.FormName
	lead.AdID = payload.AdID
	lead.AdsetID = payload.AdsetID
	lead.CampaignID = payload.CampaignID
	lead.PageID = payload.PageID
	if !payload.CreatedAt.IsZero() {
		lead.PlatformCreatedAt = payload.CreatedAt
	}

	NormalizeFields(payload.Fields).Apply(lead)

	return uc.persist(ctx, lead)
}

func (uc *ProcessWebhookUseCase) persist(ctx context.Context, lead *entity.Lead) (string, error) {
	created, err := uc.Leads.Upsert(ctx, lead)
	if err != nil {
		return "", &TechnicalError{Code: "PERSISTENCE", Message: err.Error()}
	}
	middleware.RecordLeadUpserted(string(lead.Platform))

	if created && uc.Notifier != nil {
		if err := uc.Notifier.NotifyNewLead(lead); err != nil {
			log.Printf("⚠️ lead notification failed for %s: %v", lead.ID, err)
		}
	}

	return lead.ID, nil
}

// openLog records the delivery attempt before any verification, so even
// rejected or malformed requests leave an audit row.
func (uc *ProcessWebhookUseCase) openLog(ctx context.Context, platform entity.Platform, eventType string, in WebhookInput) *entity.WebhookLog {
	webhookLog := entity.NewWebhookLog(platform, eventType, in.RawBody, in.Headers, in.IPAddress)
	if err := uc.Logs.Create(ctx, webhookLog); err != nil {
		log.Printf("❌ webhook log insert failed (%s): %v", platform, err)
	}
	return webhookLog
}

func (uc *ProcessWebhookUseCase) succeed(ctx context.Context, webhookLog *entity.WebhookLog, leadID string) {
	if err := uc.Logs.MarkProcessed(ctx, webhookLog.ID, leadID); err != nil {
		log.Printf("❌ webhook log finalize failed (%s): %v", webhookLog.ID, err)
	}
}

func (uc *ProcessWebhookUseCase) fail(ctx context.Context, webhookLog *entity.WebhookLog, cause error) error {
	if err := uc.Logs.MarkFailed(ctx, webhookLog.ID, cause.Error()); err != nil {
		log.Printf("❌ webhook log finalize failed (%s): %v", webhookLog.ID, err)
	}
	return cause
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
