package segment

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/beaconcdp/beacon/internal/storage/postgres"
)

type Repository struct {
	db *postgres.Client
}

func NewRepository(db *postgres.Client) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, seg *Segment) error {
	definition, err := json.Marshal(seg.Definition)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO segments (id, workspace_id, name, description, kind, definition)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	return r.db.DB.QueryRowContext(ctx, query,
		seg.ID, seg.WorkspaceID, seg.Name, seg.Description, seg.Kind, definition,
	).Scan(&seg.CreatedAt, &seg.UpdatedAt)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Segment, error) {
	query := `
		SELECT id, workspace_id, name, description, kind, definition, created_at, updated_at
		FROM segments
		WHERE id = $1`

	seg := &Segment{}
	var definition []byte
	var description sql.NullString

	err := r.db.DB.QueryRowContext(ctx, query, id).Scan(
		&seg.ID, &seg.WorkspaceID, &seg.Name, &description, &seg.Kind, &definition,
		&seg.CreatedAt, &seg.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	seg.Description = description.String
	if err := json.Unmarshal(definition, &seg.Definition); err != nil {
		return nil, err
	}
	return seg, nil
}

func (r *Repository) List(ctx context.Context, workspaceID uuid.UUID) ([]*Segment, error) {
	query := `
		SELECT id, workspace_id, name, description, kind, definition, created_at, updated_at
		FROM segments
		WHERE workspace_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.DB.QueryContext(ctx, query, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var segments []*Segment
	for rows.Next() {
		seg := &Segment{}
		var definition []byte
		var description sql.NullString

		if err := rows.Scan(
			&seg.ID, &seg.WorkspaceID, &seg.Name, &description, &seg.Kind, &definition,
			&seg.CreatedAt, &seg.UpdatedAt,
		); err != nil {
			return nil, err
		}

		seg.Description = description.String
		json.Unmarshal(definition, &seg.Definition)
		segments = append(segments, seg)
	}
	return segments, rows.Err()
}

func (r *Repository) Update(ctx context.Context, seg *Segment) error {
	definition, err := json.Marshal(seg.Definition)
	if err != nil {
		return err
	}

	query := `
		UPDATE segments
		SET name = $2, description = $3, definition = $4, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING updated_at`

	return r.db.DB.QueryRowContext(ctx, query,
		seg.ID, seg.Name, seg.Description, definition,
	).Scan(&seg.UpdatedAt)
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM segments WHERE id = $1`
	_, err := r.db.DB.ExecContext(ctx, query, id)
	return err
}

// Membership methods for static lists
func (r *Repository) AddMember(ctx context.Context, segmentID, contactID uuid.UUID) error {
	query := `
		INSERT INTO segment_members (segment_id, contact_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`
	_, err := r.db.DB.ExecContext(ctx, query, segmentID, contactID)
	return err
}

func (r *Repository) RemoveMember(ctx context.Context, segmentID, contactID uuid.UUID) error {
	query := `DELETE FROM segment_members WHERE segment_id = $1 AND contact_id = $2`
	_, err := r.db.DB.ExecContext(ctx, query, segmentID, contactID)
	return err
}

func (r *Repository) ListMemberIDs(ctx context.Context, segmentID uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT contact_id FROM segment_members WHERE segment_id = $1 ORDER BY added_at`
	rows, err := r.db.DB.QueryContext(ctx, query, segmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
