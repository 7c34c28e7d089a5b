package webhook

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/beaconcdp/beacon/internal/core/filter"
	"github.com/beaconcdp/beacon/internal/storage/postgres"
)

type Repository struct {
	db *postgres.Client
}

func NewRepository(db *postgres.Client) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, sub *Subscription) error {
	conditions, err := json.Marshal(sub.Conditions)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO webhook_subscriptions (id, workspace_id, name, url, secret, event_types, conditions, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	return r.db.DB.QueryRowContext(ctx, query,
		sub.ID, sub.WorkspaceID, sub.Name, sub.URL, sub.Secret,
		pq.Array(sub.EventTypes), conditions, sub.Active,
	).Scan(&sub.CreatedAt, &sub.UpdatedAt)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Subscription, error) {
	query := `
		SELECT id, workspace_id, name, url, secret, event_types, conditions, active, created_at, updated_at
		FROM webhook_subscriptions
		WHERE id = $1`

	sub, err := r.scanSubscription(r.db.DB.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (r *Repository) List(ctx context.Context, workspaceID uuid.UUID) ([]*Subscription, error) {
	query := `
		SELECT id, workspace_id, name, url, secret, event_types, conditions, active, created_at, updated_at
		FROM webhook_subscriptions
		WHERE workspace_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.DB.QueryContext(ctx, query, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*Subscription
	for rows.Next() {
		sub, err := r.scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// ListActiveForEvent returns active subscriptions registered for the
// given event type.
func (r *Repository) ListActiveForEvent(ctx context.Context, workspaceID uuid.UUID, eventType string) ([]*Subscription, error) {
	query := `
		SELECT id, workspace_id, name, url, secret, event_types, conditions, active, created_at, updated_at
		FROM webhook_subscriptions
		WHERE workspace_id = $1 AND active = true AND $2 = ANY(event_types)`

	rows, err := r.db.DB.QueryContext(ctx, query, workspaceID, eventType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*Subscription
	for rows.Next() {
		sub, err := r.scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func (r *Repository) Update(ctx context.Context, sub *Subscription) error {
	conditions, err := json.Marshal(sub.Conditions)
	if err != nil {
		return err
	}

	query := `
		UPDATE webhook_subscriptions
		SET name = $2, url = $3, event_types = $4, conditions = $5, active = $6, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING updated_at`

	return r.db.DB.QueryRowContext(ctx, query,
		sub.ID, sub.Name, sub.URL, pq.Array(sub.EventTypes), conditions, sub.Active,
	).Scan(&sub.UpdatedAt)
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM webhook_subscriptions WHERE id = $1`
	_, err := r.db.DB.ExecContext(ctx, query, id)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *Repository) scanSubscription(row scanner) (*Subscription, error) {
	sub := &Subscription{}
	var conditions []byte
	if err := row.Scan(
		&sub.ID, &sub.WorkspaceID, &sub.Name, &sub.URL, &sub.Secret,
		pq.Array(&sub.EventTypes), &conditions, &sub.Active,
		&sub.CreatedAt, &sub.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(conditions) > 0 {
		if err := json.Unmarshal(conditions, &sub.Conditions); err != nil {
			return nil, err
		}
	}
	if sub.Conditions == nil {
		sub.Conditions = []filter.Group{}
	}
	return sub, nil
}
