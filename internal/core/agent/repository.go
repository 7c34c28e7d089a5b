package agent

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/beaconcdp/beacon/internal/storage/postgres"
)

type Repository struct {
	db *postgres.Client
}

func NewRepository(db *postgres.Client) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, a *Agent) error {
	settings, err := json.Marshal(a.Settings)
	if err != nil {
		return err
	}
	schema, err := json.Marshal(a.SettingsSchema)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO agents (id, workspace_id, slug, name, description, model, system_prompt, temperature, tools, settings, settings_schema, enabled)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at`

	return r.db.DB.QueryRowContext(ctx, query,
		a.ID, a.WorkspaceID, a.Slug, a.Name, a.Description, a.Model,
		a.SystemPrompt, a.Temperature, pq.Array(a.Tools), settings, schema, a.Enabled,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Agent, error) {
	query := `
		SELECT id, workspace_id, slug, name, description, model, system_prompt, temperature, tools, settings, settings_schema, enabled, created_at, updated_at
		FROM agents
		WHERE id = $1`

	return r.scanOne(r.db.DB.QueryRowContext(ctx, query, id))
}

func (r *Repository) GetBySlug(ctx context.Context, workspaceID uuid.UUID, slug string) (*Agent, error) {
	query := `
		SELECT id, workspace_id, slug, name, description, model, system_prompt, temperature, tools, settings, settings_schema, enabled, created_at, updated_at
		FROM agents
		WHERE workspace_id = $1 AND slug = $2`

	return r.scanOne(r.db.DB.QueryRowContext(ctx, query, workspaceID, slug))
}

func (r *Repository) List(ctx context.Context, workspaceID uuid.UUID) ([]*Agent, error) {
	query := `
		SELECT id, workspace_id, slug, name, description, model, system_prompt, temperature, tools, settings, settings_schema, enabled, created_at, updated_at
		FROM agents
		WHERE workspace_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.DB.QueryContext(ctx, query, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agents []*Agent
	for rows.Next() {
		a, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		agents = append(agents, a)
	}
	return agents, rows.Err()
}

func (r *Repository) Update(ctx context.Context, a *Agent) error {
	settings, err := json.Marshal(a.Settings)
	if err != nil {
		return err
	}
	schema, err := json.Marshal(a.SettingsSchema)
	if err != nil {
		return err
	}

	query := `
		UPDATE agents
		SET name = $2, description = $3, model = $4, system_prompt = $5, temperature = $6,
		    tools = $7, settings = $8, settings_schema = $9, enabled = $10, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING updated_at`

	return r.db.DB.QueryRowContext(ctx, query,
		a.ID, a.Name, a.Description, a.Model, a.SystemPrompt, a.Temperature,
		pq.Array(a.Tools), settings, schema, a.Enabled,
	).Scan(&a.UpdatedAt)
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM agents WHERE id = $1`
	_, err := r.db.DB.ExecContext(ctx, query, id)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *Repository) scanOne(row scanner) (*Agent, error) {
	a, err := r.scan(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *Repository) scan(row scanner) (*Agent, error) {
	a := &Agent{}
	var settings, schema []byte
	if err := row.Scan(
		&a.ID, &a.WorkspaceID, &a.Slug, &a.Name, &a.Description, &a.Model,
		&a.SystemPrompt, &a.Temperature, pq.Array(&a.Tools), &settings, &schema,
		&a.Enabled, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if a.Tools == nil {
		a.Tools = []string{}
	}
	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &a.Settings); err != nil {
			return nil, err
		}
	}
	if len(schema) > 0 {
		if err := json.Unmarshal(schema, &a.SettingsSchema); err != nil {
			return nil, err
		}
	}
	return a, nil
}
