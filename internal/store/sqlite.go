package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/prospect-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := sqlDB.Exec(pragma); err != nil {
			sqlDB.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: sqlDB}, nil
}

const sqliteMigration = `
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
	created_at     DATETIME NOT NULL,
	updated_at     DATETIME NOT NULL
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
	connected        BOOLEAN NOT NULL DEFAULT 0,
	connection_date  DATETIME,
	conversation     TEXT NOT NULL DEFAULT '[]',
	response_count   INTEGER NOT NULL DEFAULT 0,
	last_interaction DATETIME,
	created_at       DATETIME NOT NULL,
	updated_at       DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_prospects_status ON prospects(status);
CREATE INDEX IF NOT EXISTS idx_prospects_company ON prospects(company);
CREATE INDEX IF NOT EXISTS idx_prospects_last_interaction ON prospects(last_interaction);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) UpsertOrganization(ctx context.Context, org *model.Organization) (string, error) {
	id := org.ID
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now().UTC()

	var orgID string
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO organizations (id, name, domain, industry, employee_count, location,
			linkedin_url, website_url, revenue, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (domain) DO UPDATE SET
			name = excluded.name,
			industry = CASE WHEN excluded.industry != '' THEN excluded.industry ELSE organizations.industry END,
			employee_count = excluded.employee_count,
			location = CASE WHEN excluded.location != '' THEN excluded.location ELSE organizations.location END,
			linkedin_url = CASE WHEN excluded.linkedin_url != '' THEN excluded.linkedin_url ELSE organizations.linkedin_url END,
			website_url = CASE WHEN excluded.website_url != '' THEN excluded.website_url ELSE organizations.website_url END,
			revenue = CASE WHEN excluded.revenue != '' THEN excluded.revenue ELSE organizations.revenue END,
			updated_at = excluded.updated_at
		RETURNING id`,
		id, org.Name, org.Domain, org.Industry, org.EmployeeCount, org.Location,
		org.LinkedInURL, org.WebsiteURL, org.Revenue, now, now,
	).Scan(&orgID)
	if err != nil {
		return "", eris.Wrapf(err, "sqlite: upsert organization %s", org.Domain)
	}
	return orgID, nil
}

func (s *SQLiteStore) CreateProspect(ctx context.Context, p *model.Prospect) (*model.Prospect, error) {
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

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO prospects (id, first_name, last_name, title, company, email, phone,
			linkedin_url, industry, location, contact_id, campaign_id, organization_id,
			status, connected, connection_date, conversation, response_count,
			last_interaction, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		out.ID, out.FirstName, out.LastName, out.Title, out.Company, out.Email, out.Phone,
		nullIfEmpty(out.LinkedInURL), out.Industry, out.Location,
		nullIfEmpty(out.ContactID), out.CampaignID, nullIfEmpty(out.OrganizationID),
		string(out.Status), out.Connected, nullTime(out.ConnectionDate), string(convJSON),
		out.ResponseCount, nullTime(out.LastInteraction), out.CreatedAt, out.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert prospect")
	}
	return &out, nil
}

func (s *SQLiteStore) UpdateProspect(ctx context.Context, p *model.Prospect) (*model.Prospect, error) {
	out := *p
	out.UpdatedAt = time.Now().UTC()

	res, err := s.db.ExecContext(ctx,
		`UPDATE prospects SET first_name = ?, last_name = ?, title = ?, company = ?,
			email = ?, phone = ?, linkedin_url = ?, industry = ?, location = ?,
			contact_id = ?, organization_id = ?, updated_at = ?
		WHERE id = ?`,
		out.FirstName, out.LastName, out.Title, out.Company,
		out.Email, out.Phone, nullIfEmpty(out.LinkedInURL), out.Industry, out.Location,
		nullIfEmpty(out.ContactID), nullIfEmpty(out.OrganizationID), out.UpdatedAt,
		out.ID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: update prospect %s", out.ID)
	}
	if err := checkRowsAffected(res, "prospect", out.ID); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *SQLiteStore) GetProspect(ctx context.Context, id string) (*model.Prospect, error) {
	return s.getProspectBy(ctx, "id", id)
}

func (s *SQLiteStore) GetProspectByContactID(ctx context.Context, contactID string) (*model.Prospect, error) {
	if contactID == "" {
		return nil, nil
	}
	return s.getProspectBy(ctx, "contact_id", contactID)
}

func (s *SQLiteStore) GetProspectByLinkedInURL(ctx context.Context, url string) (*model.Prospect, error) {
	if url == "" {
		return nil, nil
	}
	return s.getProspectBy(ctx, "linkedin_url", url)
}

const sqliteProspectColumns = `id, first_name, last_name, title, company, email, phone,
	linkedin_url, industry, location, contact_id, campaign_id, organization_id,
	status, connected, connection_date, conversation, response_count,
	last_interaction, created_at, updated_at`

func (s *SQLiteStore) getProspectBy(ctx context.Context, column, value string) (*model.Prospect, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sqliteProspectColumns+` FROM prospects WHERE `+column+` = ?`, value)
	p, err := scanSQLiteProspect(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get prospect by %s", column)
	}
	return p, nil
}

func (s *SQLiteStore) ListProspects(ctx context.Context, f model.ProspectFilter) ([]model.Prospect, error) {
	query := `SELECT ` + sqliteProspectColumns + ` FROM prospects WHERE 1=1`
	var args []any

	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(f.Status))
	}
	if f.Company != "" {
		query += ` AND company LIKE ? COLLATE NOCASE`
		args = append(args, "%"+f.Company+"%")
	}
	if f.Industry != "" {
		query += ` AND industry = ?`
		args = append(args, f.Industry)
	}
	if f.HasEmail {
		query += ` AND email IS NOT NULL AND email != '' AND email NOT LIKE 'dummy%@gmail.com'`
	}
	query += ` ORDER BY created_at DESC`

	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list prospects")
	}
	defer rows.Close()
	return scanSQLiteProspects(rows)
}

func (s *SQLiteStore) ListByStatusWithLinkedIn(ctx context.Context, status model.ProspectStatus, limit int) ([]model.Prospect, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sqliteProspectColumns+` FROM prospects
		WHERE status = ? AND linkedin_url IS NOT NULL
		ORDER BY created_at ASC LIMIT ?`,
		string(status), limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list by status")
	}
	defer rows.Close()
	return scanSQLiteProspects(rows)
}

func (s *SQLiteStore) UpdateProspectStatus(ctx context.Context, id string, u model.StatusUpdate) error {
	if !u.Status.Valid() {
		return eris.Errorf("sqlite: invalid status %q", u.Status)
	}
	now := time.Now().UTC()

	query := `UPDATE prospects SET status = ?, last_interaction = ?, updated_at = ?`
	args := []any{string(u.Status), now, now}
	if u.CampaignID != "" {
		query += `, campaign_id = ?`
		args = append(args, u.CampaignID)
	}
	if u.Connected != nil {
		query += `, connected = ?`
		args = append(args, *u.Connected)
		if *u.Connected {
			query += `, connection_date = ?`
			args = append(args, now)
		}
	}
	query += ` WHERE id = ?`
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update status %s", id)
	}
	return checkRowsAffected(res, "prospect", id)
}

func (s *SQLiteStore) AddConversationMessage(ctx context.Context, id string, msg model.ConversationMessage) error {
	p, err := s.GetProspect(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return eris.Errorf("sqlite: prospect %s not found", id)
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
	_, err = s.db.ExecContext(ctx,
		`UPDATE prospects SET conversation = ?, response_count = ?,
			last_interaction = ?, updated_at = ? WHERE id = ?`,
		string(convJSON), responseCount, now, now, id)
	return eris.Wrapf(err, "sqlite: add conversation message %s", id)
}

func (s *SQLiteStore) ListNeedingFollowUp(ctx context.Context) ([]model.Prospect, error) {
	cutoff := time.Now().UTC().Add(-FollowUpWindow)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sqliteProspectColumns+` FROM prospects
		WHERE status = ? AND last_interaction IS NOT NULL AND last_interaction < ?
		ORDER BY last_interaction ASC`,
		string(model.StatusMessaged), cutoff)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list needing follow-up")
	}
	defer rows.Close()
	return scanSQLiteProspects(rows)
}

func (s *SQLiteStore) Stats(ctx context.Context) (*model.ProspectStats, error) {
	stats := &model.ProspectStats{ByStatus: make(map[string]int)}

	if err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM prospects`).Scan(&stats.Total); err != nil {
		return nil, eris.Wrap(err, "sqlite: count prospects")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT status, count(*) FROM prospects GROUP BY status`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: status breakdown")
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan status breakdown")
		}
		stats.ByStatus[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: status breakdown rows")
	}

	if err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(AVG(response_count), 0) FROM prospects WHERE response_count > 0`,
	).Scan(&stats.AvgResponseCount); err != nil {
		return nil, eris.Wrap(err, "sqlite: average response count")
	}

	return stats, nil
}

func scanSQLiteProspect(row rowScanner) (*model.Prospect, error) {
	var p model.Prospect
	var title, company, email, phone, linkedinURL, industry, location,
		contactID, campaignID, organizationID sql.NullString
	var connectionDate, lastInteraction sql.NullTime
	var convJSON string

	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &title, &company, &email, &phone,
		&linkedinURL, &industry, &location, &contactID, &campaignID, &organizationID,
		&p.Status, &p.Connected, &connectionDate, &convJSON, &p.ResponseCount,
		&lastInteraction, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	p.Title = title.String
	p.Company = company.String
	p.Email = email.String
	p.Phone = phone.String
	p.LinkedInURL = linkedinURL.String
	p.Industry = industry.String
	p.Location = location.String
	p.ContactID = contactID.String
	p.CampaignID = campaignID.String
	p.OrganizationID = organizationID.String
	if connectionDate.Valid {
		t := connectionDate.Time
		p.ConnectionDate = &t
	}
	if lastInteraction.Valid {
		t := lastInteraction.Time
		p.LastInteraction = &t
	}

	if convJSON != "" {
		if err := json.Unmarshal([]byte(convJSON), &p.Conversation); err != nil {
			return nil, eris.Wrap(err, "unmarshal conversation")
		}
	}
	return &p, nil
}

func scanSQLiteProspects(rows *sql.Rows) ([]model.Prospect, error) {
	var out []model.Prospect
	for rows.Next() {
		p, err := scanSQLiteProspect(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan prospect")
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate prospects")
	}
	return out, nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func checkRowsAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.New(fmt.Sprintf("sqlite: %s %s not found", kind, id))
	}
	return nil
}
