package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

const leadColumns = `
	id, platform, platform_lead_id,
	COALESCE(form_id, ''), COALESCE(form_name, ''),
	COALESCE(ad_id, ''), COALESCE(ad_name, ''),
	COALESCE(adset_id, ''), COALESCE(adset_name, ''),
	COALESCE(campaign_id, ''), COALESCE(campaign_name, ''),
	COALESCE(page_id, ''),
	COALESCE(customer_name, ''), COALESCE(first_name, ''), COALESCE(last_name, ''),
	COALESCE(email, ''), COALESCE(phone, ''),
	custom_fields, status, COALESCE(notes, ''),
	platform_created_at, received_at, created_at, updated_at`

// Sortable columns for List. Accepts both the API spelling and the column
// name; anything else falls back to received_at.
var sortColumns = map[string]string{
	"receivedAt":          "received_at",
	"received_at":         "received_at",
	"platformCreatedAt":   "platform_created_at",
	"platform_created_at": "platform_created_at",
	"customerName":        "customer_name",
	"customer_name":       "customer_name",
	"email":               "email",
	"status":              "status",
	"platform":            "platform",
	"createdAt":           "created_at",
	"created_at":          "created_at",
}

// xmax is zero only on rows this statement inserted, so it distinguishes a
// fresh lead from a conflict update without comparing timestamps.
const upsertLeadQuery = `
	INSERT INTO leads (
		id, platform, platform_lead_id,
		form_id, form_name, ad_id, ad_name, adset_id, adset_name,
		campaign_id, campaign_name, page_id,
		customer_name, first_name, last_name, email, phone,
		custom_fields, status, platform_created_at, received_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	ON CONFLICT (platform, platform_lead_id)
	DO UPDATE SET
		form_id = COALESCE(EXCLUDED.form_id, leads.form_id),
		form_name = COALESCE(EXCLUDED.form_name, leads.form_name),
		ad_id = COALESCE(EXCLUDED.ad_id, leads.ad_id),
		ad_name = COALESCE(EXCLUDED.ad_name, leads.ad_name),
		adset_id = COALESCE(EXCLUDED.adset_id, leads.adset_id),
		adset_name = COALESCE(EXCLUDED.adset_name, leads.adset_name),
		campaign_id = COALESCE(EXCLUDED.campaign_id, leads.campaign_id),
		campaign_name = COALESCE(EXCLUDED.campaign_name, leads.campaign_name),
		page_id = COALESCE(EXCLUDED.page_id, leads.page_id),
		customer_name = COALESCE(EXCLUDED.customer_name, leads.customer_name),
		first_name = COALESCE(EXCLUDED.first_name, leads.first_name),
		last_name = COALESCE(EXCLUDED.last_name, leads.last_name),
		email = COALESCE(EXCLUDED.email, leads.email),
		phone = COALESCE(EXCLUDED.phone, leads.phone),
		custom_fields = leads.custom_fields || EXCLUDED.custom_fields,
		platform_created_at = EXCLUDED.platform_created_at,
		received_at = EXCLUDED.received_at,
		updated_at = NOW()
	RETURNING id, status, COALESCE(notes, ''), created_at, updated_at, (xmax = 0)
`

// Upsert relies on the storage layer's atomic insert-or-update; concurrent
// deliveries of the same (platform, platform_lead_id) never race in the
// application. Workflow state (status, notes) is never clobbered by a
// re-delivery, and empty incoming fields keep their stored value.
func (r *LeadRepository) Upsert(ctx context.Context, lead *entity.Lead) (bool, error) {
	customFields, err := json.Marshal(lead.CustomFields)
	if err != nil {
		return false, err
	}

	var created bool
	err = r.DB.QueryRowContext(
		ctx,
		upsertLeadQuery,
		lead.ID,
		lead.Platform,
		lead.PlatformLeadID,
		nullString(lead.FormID),
		nullString(lead.FormName),
		nullString(lead.AdID),
		nullString(lead.AdName),
		nullString(lead.AdsetID),
		nullString(lead.AdsetName),
		nullString(lead.CampaignID),
		nullString(lead.CampaignName),
		nullString(lead.PageID),
		nullString(lead.CustomerName),
		nullString(lead.FirstName),
		nullString(lead.LastName),
		nullString(lead.Email),
		nullString(lead.Phone),
		customFields,
		lead.Status,
		lead.PlatformCreatedAt,
		lead.ReceivedAt,
	).Scan(
		&lead.ID,
		&lead.Status,
		&lead.Notes,
		&lead.CreatedAt,
		&lead.UpdatedAt,
		&created,
	)
	if err != nil {
		return false, err
	}
	return created, nil
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	lead, err := scanLead(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	return lead, err
}

func (r *LeadRepository) List(ctx context.Context, filter entity.LeadFilter, page entity.LeadPageOptions) ([]*entity.Lead, int64, error) {
	where, args := buildLeadFilter(filter)

	var total int64
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM leads`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sortBy, ok := sortColumns[page.SortBy]
	if !ok {
		sortBy = "received_at"
	}
	order := "DESC"
	if strings.EqualFold(page.SortOrder, "asc") {
		order = "ASC"
	}

	limit := page.Limit
	if limit <= 0 {
		limit = 20
	}
	pageNum := page.Page
	if pageNum <= 0 {
		pageNum = 1
	}
	offset := (pageNum - 1) * limit

	query := fmt.Sprintf(`SELECT %s FROM leads%s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		leadColumns, where, sortBy, order, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	leads := []*entity.Lead{}
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, 0, err
		}
		leads = append(leads, lead)
	}
	return leads, total, rows.Err()
}

func (r *LeadRepository) Update(ctx context.Context, id string, update entity.LeadUpdate) (*entity.Lead, error) {
	sets := []string{"updated_at = NOW()"}
	args := []any{}

	add := func(column string, value *string) {
		if value == nil {
			return
		}
		args = append(args, *value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	add("status", update.Status)
	add("notes", update.Notes)
	add("customer_name", update.CustomerName)
	add("email", update.Email)
	add("phone", update.Phone)

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE leads SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), leadColumns)

	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	return lead, err
}

func (r *LeadRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (r *LeadRepository) Stats(ctx context.Context, from, to *time.Time) (*entity.LeadStats, error) {
	where, args := buildLeadFilter(entity.LeadFilter{From: from, To: to})

	stats := &entity.LeadStats{
		ByPlatform: map[string]int64{},
		ByStatus:   map[string]int64{},
	}
	for _, p := range entity.AllPlatforms {
		stats.ByPlatform[string(p)] = 0
	}
	for _, s := range entity.AllLeadStatuses {
		stats.ByStatus[string(s)] = 0
	}

	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM leads`+where, args...).Scan(&stats.Total); err != nil {
		return nil, err
	}

	// "Today" is the local midnight-to-midnight window, independent of the
	// requested range.
	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM leads WHERE received_at >= $1 AND received_at < $2`,
		midnight, midnight.AddDate(0, 0, 1),
	).Scan(&stats.Today)
	if err != nil {
		return nil, err
	}

	if err := r.groupCount(ctx, "platform", where, args, stats.ByPlatform); err != nil {
		return nil, err
	}
	if err := r.groupCount(ctx, "status", where, args, stats.ByStatus); err != nil {
		return nil, err
	}

	return stats, nil
}

func (r *LeadRepository) groupCount(ctx context.Context, column, where string, args []any, into map[string]int64) error {
	query := fmt.Sprintf(`SELECT %s, COUNT(*) FROM leads%s GROUP BY %s`, column, where, column)
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int64
		if err := rows.Scan(&key, &count); err != nil {
			return err
		}
		into[key] = count
	}
	return rows.Err()
}

func (r *LeadRepository) Chart(ctx context.Context, from, to time.Time, platform string) ([]entity.ChartRow, error) {
	args := []any{from, to}
	query := `
		SELECT to_char(date_trunc('day', received_at), 'YYYY-MM-DD') AS day, platform, COUNT(*)
		FROM leads
		WHERE received_at >= $1 AND received_at <= $2`
	if platform != "" {
		args = append(args, platform)
		query += ` AND platform = $3`
	}
	query += `
		GROUP BY day, platform
		ORDER BY day ASC, platform ASC`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.ChartRow{}
	for rows.Next() {
		var row entity.ChartRow
		if err := rows.Scan(&row.Date, &row.Platform, &row.Count); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func buildLeadFilter(filter entity.LeadFilter) (string, []any) {
	var conditions []string
	var args []any

	add := func(cond string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if filter.Platform != "" {
		add("platform = $%d", filter.Platform)
	}
	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if filter.Search != "" {
		add("(customer_name ILIKE $%d OR email ILIKE $%[1]d OR phone ILIKE $%[1]d)", "%"+escapeLike(filter.Search)+"%")
	}
	if filter.From != nil {
		add("received_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("received_at <= $%d", *filter.To)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// escapeLike neutralizes ILIKE metacharacters so a search for "a_b" matches
// the literal underscore instead of any character.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var lead entity.Lead
	var customFields []byte

	err := row.Scan(
		&lead.ID,
		&lead.Platform,
		&lead.PlatformLeadID,
		&lead.FormID,
		&lead.FormName,
		&lead.AdID,
		&lead.AdName,
		&lead.AdsetID,
		&lead.AdsetName,
		&lead.CampaignID,
		&lead.CampaignName,
		&lead.PageID,
		&lead.CustomerName,
		&lead.FirstName,
		&lead.LastName,
		&lead.Email,
		&lead.Phone,
		&customFields,
		&lead.Status,
		&lead.Notes,
		&lead.PlatformCreatedAt,
		&lead.ReceivedAt,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(customFields) > 0 {
		if err := json.Unmarshal(customFields, &lead.CustomFields); err != nil {
			return nil, err
		}
	}
	return &lead, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
