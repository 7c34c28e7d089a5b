package campaign

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/beaconcdp/beacon/internal/storage/postgres"
)

type Repository struct {
	db *postgres.Client
}

func NewRepository(db *postgres.Client) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, c *Campaign) error {
	query := `
		INSERT INTO campaigns (id, workspace_id, segment_id, name, body, from_number, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	return r.db.DB.QueryRowContext(ctx, query,
		c.ID, c.WorkspaceID, c.SegmentID, c.Name, c.Body, c.FromNumber, c.Status,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Campaign, error) {
	query := `
		SELECT id, workspace_id, segment_id, name, body, from_number, status, sent_count, failed_count, sent_at, created_at, updated_at
		FROM campaigns
		WHERE id = $1`

	c := &Campaign{}
	err := r.db.DB.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.WorkspaceID, &c.SegmentID, &c.Name, &c.Body, &c.FromNumber,
		&c.Status, &c.SentCount, &c.FailedCount, &c.SentAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *Repository) List(ctx context.Context, workspaceID uuid.UUID) ([]*Campaign, error) {
	query := `
		SELECT id, workspace_id, segment_id, name, body, from_number, status, sent_count, failed_count, sent_at, created_at, updated_at
		FROM campaigns
		WHERE workspace_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.DB.QueryContext(ctx, query, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var campaigns []*Campaign
	for rows.Next() {
		c := &Campaign{}
		if err := rows.Scan(
			&c.ID, &c.WorkspaceID, &c.SegmentID, &c.Name, &c.Body, &c.FromNumber,
			&c.Status, &c.SentCount, &c.FailedCount, &c.SentAt, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

func (r *Repository) Update(ctx context.Context, c *Campaign) error {
	query := `
		UPDATE campaigns
		SET segment_id = $2, name = $3, body = $4, from_number = $5, status = $6,
		    sent_count = $7, failed_count = $8, sent_at = $9, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING updated_at`

	return r.db.DB.QueryRowContext(ctx, query,
		c.ID, c.SegmentID, c.Name, c.Body, c.FromNumber, c.Status,
		c.SentCount, c.FailedCount, c.SentAt,
	).Scan(&c.UpdatedAt)
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM campaigns WHERE id = $1`
	_, err := r.db.DB.ExecContext(ctx, query, id)
	return err
}

// Message log methods
func (r *Repository) CreateMessage(ctx context.Context, m *Message) error {
	query := `
		INSERT INTO messages (id, workspace_id, campaign_id, contact_id, "to", body, status, provider_sid, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	return r.db.DB.QueryRowContext(ctx, query,
		m.ID, m.WorkspaceID, m.CampaignID, m.ContactID, m.To, m.Body, m.Status, m.ProviderSID, m.Error,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
}

func (r *Repository) ListMessages(ctx context.Context, campaignID uuid.UUID, limit, offset int) ([]*Message, error) {
	query := `
		SELECT id, workspace_id, campaign_id, contact_id, "to", body, status, provider_sid, error, created_at, updated_at
		FROM messages
		WHERE campaign_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.DB.QueryContext(ctx, query, campaignID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanMessages(rows)
}

func (r *Repository) GetMessageByProviderSID(ctx context.Context, providerSID string) (*Message, error) {
	query := `
		SELECT id, workspace_id, campaign_id, contact_id, "to", body, status, provider_sid, error, created_at, updated_at
		FROM messages
		WHERE provider_sid = $1`

	m := &Message{}
	err := r.db.DB.QueryRowContext(ctx, query, providerSID).Scan(
		&m.ID, &m.WorkspaceID, &m.CampaignID, &m.ContactID, &m.To, &m.Body,
		&m.Status, &m.ProviderSID, &m.Error, &m.CreatedAt, &m.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *Repository) UpdateMessageStatus(ctx context.Context, id uuid.UUID, status, errMsg string) error {
	query := `UPDATE messages SET status = $2, error = $3, updated_at = CURRENT_TIMESTAMP WHERE id = $1`
	_, err := r.db.DB.ExecContext(ctx, query, id, status, errMsg)
	return err
}

func (r *Repository) scanMessages(rows *sql.Rows) ([]*Message, error) {
	var messages []*Message
	for rows.Next() {
		m := &Message{}
		if err := rows.Scan(
			&m.ID, &m.WorkspaceID, &m.CampaignID, &m.ContactID, &m.To, &m.Body,
			&m.Status, &m.ProviderSID, &m.Error, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
