package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/prospect-cli/internal/db"
	"github.com/sells-group/prospect-cli/internal/model"
)

// FollowUpWindow is how long a messaged prospect may sit without
// interaction before surfacing in the follow-up list.
const FollowUpWindow = 72 * time.Hour

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool db.Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

const prospectColumns = `id, first_name, last_name, title, company, email, phone,
	linkedin_url, industry, location, contact_id, campaign_id, organization_id,
	status, connected, connection_date, conversation, response_count,
	last_interaction, created_at, updated_at`

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the hottest store operations.
var preparedStatements = map[string]string{
	"get_prospect":             `SELECT ` + prospectColumns + ` FROM prospects WHERE id = $1`,
	"get_prospect_by_contact":  `SELECT ` + prospectColumns + ` FROM prospects WHERE contact_id = $1`,
	"get_prospect_by_linkedin": `SELECT ` + prospectColumns + ` FROM prospects WHERE linkedin_url = $1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool (or mock) as a store.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS organizations (
	id             TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	domain         TEXT NOT NULL UNIQUE,
	industry       TEXT,
	employee_count INTEGER,
	location       TEXT,
	linkedin_url   TEXT,
	website_url    TEXT,
	revenue        TEXT,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS prospects (
	id               TEXT PRIMARY KEY,
	first_name       TEXT NOT NULL,
	last_name        TEXT NOT NULL,
	title            TEXT,
	company          TEXT,
	email            TEXT,
	phone            TEXT,
	linkedin_url     TEXT UNIQUE,
	industry         TEXT,
	location         TEXT,
	contact_id       TEXT UNIQUE,
	campaign_id      TEXT,
	organization_id  TEXT REFERENCES organizations(id),
	status           TEXT NOT NULL DEFAULT 'NEW',
	connected        BOOLEAN NOT NULL DEFAULT false,
	connection_date  TIMESTAMPTZ,
	conversation     JSONB NOT NULL DEFAULT '[]',
	response_count   INTEGER NOT NULL DEFAULT 0,
	last_interaction TIMESTAMPTZ,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_prospects_status ON prospects(status);
CREATE INDEX IF NOT EXISTS idx_prospects_company ON prospects(company);
CREATE INDEX IF NOT EXISTS idx_prospects_last_interaction ON prospects(last_interaction);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) UpsertOrganization(ctx context.Context, org *model.Organization) (string, error) {
	id := org.ID
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now().UTC()

	var orgID string
	err := s.pool.QueryRow(ctx,
		`INSERT INTO organizations (id, name, domain, industry, employee_count, location,
			linkedin_url, website_url, revenue, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		ON CONFLICT (domain) DO UPDATE SET
			name = EXCLUDED.name,
			industry = COALESCE(NULLIF(EXCLUDED.industry, ''), organizations.industry),
			employee_count = EXCLUDED.employee_count,
			location = COALESCE(NULLIF(EXCLUDED.location, ''), organizations.location),
			linkedin_url = COALESCE(NULLIF(EXCLUDED.linkedin_url, ''), organizations.linkedin_url),
			website_url = COALESCE(NULLIF(EXCLUDED.website_url, ''), organizations.website_url),
			revenue = COALESCE(NULLIF(EXCLUDED.revenue, ''), organizations.revenue),
			updated_at = EXCLUDED.updated_at
		RETURNING id`,
		id, org.Name, org.Domain, org.Industry, org.EmployeeCount, org.Location,
		org.LinkedInURL, org.WebsiteURL, org.Revenue, now,
	).Scan(&orgID)
	if err != nil {
		return "", eris.Wrapf(err, "postgres: upsert organization %s", org.Domain)
	}
	return orgID, nil
}

func (s *PostgresStore) CreateProspect(ctx context.Context, p *model.Prospect) (*model.Prospect, error) {
	out := *p
	if out.ID == "" {
		out.ID = uuid.New().String()
	}
	if out.Status == "" {
		out.Status = model.StatusNew
	}
	now := time.Now().UTC()
	out.CreatedAt = now
	out.UpdatedAt = now

	convJSON, err := marshalConversation(out.Conversation)
	if err != nil {
		return nil, err
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO prospects (id, first_name, last_name, title, company, email, phone,
			linkedin_url, industry, location, contact_id, campaign_id, organization_id,
			status, connected, connection_date, conversation, response_count,
			last_interaction, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20, $21)`,
		out.ID, out.FirstName, out.LastName, out.Title, out.Company, out.Email, out.Phone,
		nullIfEmpty(out.LinkedInURL), out.Industry, out.Location,
		nullIfEmpty(out.ContactID), out.CampaignID, nullIfEmpty(out.OrganizationID),
		string(out.Status), out.Connected, out.ConnectionDate, convJSON, out.ResponseCount,
		out.LastInteraction, out.CreatedAt, out.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert prospect")
	}
	return &out, nil
}

func (s *PostgresStore) UpdateProspect(ctx context.Context, p *model.Prospect) (*model.Prospect, error) {
	out := *p
	out.UpdatedAt = time.Now().UTC()

	tag, err := s.pool.Exec(ctx,
		`UPDATE prospects SET first_name = $1, last_name = $2, title = $3, company = $4,
			email = $5, phone = $6, linkedin_url = $7, industry = $8, location = $9,
			contact_id = $10, organization_id = $11, updated_at = $12
		WHERE id = $13`,
		out.FirstName, out.LastName, out.Title, out.Company,
		out.Email, out.Phone, nullIfEmpty(out.LinkedInURL), out.Industry, out.Location,
		nullIfEmpty(out.ContactID), nullIfEmpty(out.OrganizationID), out.UpdatedAt,
		out.ID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: update prospect %s", out.ID)
	}
	if tag.RowsAffected() == 0 {
		return nil, eris.Errorf("postgres: prospect %s not found", out.ID)
	}
	return &out, nil
}

func (s *PostgresStore) GetProspect(ctx context.Context, id string) (*model.Prospect, error) {
	return s.getProspectBy(ctx, "id", id)
}

func (s *PostgresStore) GetProspectByContactID(ctx context.Context, contactID string) (*model.Prospect, error) {
	if contactID == "" {
		return nil, nil
	}
	return s.getProspectBy(ctx, "contact_id", contactID)
}

func (s *PostgresStore) GetProspectByLinkedInURL(ctx context.Context, url string) (*model.Prospect, error) {
	if url == "" {
		return nil, nil
	}
	return s.getProspectBy(ctx, "linkedin_url", url)
}

func (s *PostgresStore) getProspectBy(ctx context.Context, column, value string) (*model.Prospect, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+prospectColumns+` FROM prospects WHERE `+column+` = $1`, value)
	p, err := scanProspectRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get prospect by %s", column)
	}
	return p, nil
}

func (s *PostgresStore) ListProspects(ctx context.Context, f model.ProspectFilter) ([]model.Prospect, error) {
	query := `SELECT ` + prospectColumns + ` FROM prospects WHERE 1=1`
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Status != "" {
		query += ` AND status = ` + arg(string(f.Status))
	}
	if f.Company != "" {
		query += ` AND company ILIKE ` + arg("%"+f.Company+"%")
	}
	if f.Industry != "" {
		query += ` AND industry = ` + arg(f.Industry)
	}
	if f.HasEmail {
		query += ` AND email IS NOT NULL AND email != '' AND email NOT LIKE 'dummy%@gmail.com'`
	}
	query += ` ORDER BY created_at DESC`

	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ` + arg(limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list prospects")
	}
	defer rows.Close()
	return scanProspects(rows)
}

func (s *PostgresStore) ListByStatusWithLinkedIn(ctx context.Context, status model.ProspectStatus, limit int) ([]model.Prospect, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+prospectColumns+` FROM prospects
		WHERE status = $1 AND linkedin_url IS NOT NULL
		ORDER BY created_at ASC LIMIT $2`,
		string(status), limit)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list by status")
	}
	defer rows.Close()
	return scanProspects(rows)
}

func (s *PostgresStore) UpdateProspectStatus(ctx context.Context, id string, u model.StatusUpdate) error {
	if !u.Status.Valid() {
		return eris.Errorf("postgres: invalid status %q", u.Status)
	}
	now := time.Now().UTC()

	query := `UPDATE prospects SET status = $1, last_interaction = $2, updated_at = $2`
	args := []any{string(u.Status), now}
	if u.CampaignID != "" {
		args = append(args, u.CampaignID)
		query += fmt.Sprintf(`, campaign_id = $%d`, len(args))
	}
	if u.Connected != nil {
		args = append(args, *u.Connected)
		query += fmt.Sprintf(`, connected = $%d`, len(args))
		if *u.Connected {
			args = append(args, now)
			query += fmt.Sprintf(`, connection_date = $%d`, len(args))
		}
	}
	args = append(args, id)
	query += fmt.Sprintf(` WHERE id = $%d`, len(args))

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return eris.Wrapf(err, "postgres: update status %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: prospect %s not found", id)
	}
	return nil
}

func (s *PostgresStore) AddConversationMessage(ctx context.Context, id string, msg model.ConversationMessage) error {
	p, err := s.GetProspect(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return eris.Errorf("postgres: prospect %s not found", id)
	}

	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	conversation := append(p.Conversation, msg)
	convJSON, err := marshalConversation(conversation)
	if err != nil {
		return err
	}

	responseCount := p.ResponseCount
	if msg.Sender == "prospect" {
		responseCount++
	}

	now := time.Now().UTC()
	_, err = s.pool.Exec(ctx,
		`UPDATE prospects SET conversation = $1, response_count = $2,
			last_interaction = $3, updated_at = $3 WHERE id = $4`,
		convJSON, responseCount, now, id)
	return eris.Wrapf(err, "postgres: add conversation message %s", id)
}

func (s *PostgresStore) ListNeedingFollowUp(ctx context.Context) ([]model.Prospect, error) {
	cutoff := time.Now().UTC().Add(-FollowUpWindow)
	rows, err := s.pool.Query(ctx,
		`SELECT `+prospectColumns+` FROM prospects
		WHERE status = $1 AND last_interaction IS NOT NULL AND last_interaction < $2
		ORDER BY last_interaction ASC`,
		string(model.StatusMessaged), cutoff)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list needing follow-up")
	}
	defer rows.Close()
	return scanProspects(rows)
}

func (s *PostgresStore) Stats(ctx context.Context) (*model.ProspectStats, error) {
	stats := &model.ProspectStats{ByStatus: make(map[string]int)}

	if err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM prospects`).Scan(&stats.Total); err != nil {
		return nil, eris.Wrap(err, "postgres: count prospects")
	}

	rows, err := s.pool.Query(ctx,
		`SELECT status, count(*) FROM prospects GROUP BY status`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: status breakdown")
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, eris.Wrap(err, "postgres: scan status breakdown")
		}
		stats.ByStatus[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: status breakdown rows")
	}

	if err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(AVG(response_count), 0) FROM prospects WHERE response_count > 0`,
	).Scan(&stats.AvgResponseCount); err != nil {
		return nil, eris.Wrap(err, "postgres: average response count")
	}

	return stats, nil
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanProspectRow(row rowScanner) (*model.Prospect, error) {
	var p model.Prospect
	var title, company, email, phone, linkedinURL, industry, location,
		contactID, campaignID, organizationID *string
	var connectionDate, lastInteraction *time.Time
	var convJSON []byte

	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &title, &company, &email, &phone,
		&linkedinURL, &industry, &location, &contactID, &campaignID, &organizationID,
		&p.Status, &p.Connected, &connectionDate, &convJSON, &p.ResponseCount,
		&lastInteraction, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	p.Title = deref(title)
	p.Company = deref(company)
	p.Email = deref(email)
	p.Phone = deref(phone)
	p.LinkedInURL = deref(linkedinURL)
	p.Industry = deref(industry)
	p.Location = deref(location)
	p.ContactID = deref(contactID)
	p.CampaignID = deref(campaignID)
	p.OrganizationID = deref(organizationID)
	p.ConnectionDate = connectionDate
	p.LastInteraction = lastInteraction

	if len(convJSON) > 0 {
		if err := json.Unmarshal(convJSON, &p.Conversation); err != nil {
			return nil, eris.Wrap(err, "unmarshal conversation")
		}
	}
	return &p, nil
}

func scanProspects(rows pgx.Rows) ([]model.Prospect, error) {
	var out []model.Prospect
	for rows.Next() {
		p, err := scanProspectRow(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan prospect")
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate prospects")
	}
	return out, nil
}

func marshalConversation(msgs []model.ConversationMessage) ([]byte, error) {
	if msgs == nil {
		msgs = []model.ConversationMessage{}
	}
	b, err := json.Marshal(msgs)
	if err != nil {
		return nil, eris.Wrap(err, "marshal conversation")
	}
	return b, nil
}

// nullIfEmpty maps empty strings to NULL so unique nullable columns do not
// collide on "".
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
