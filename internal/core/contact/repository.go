package contact

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

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

func (r *Repository) Create(ctx context.Context, c *Contact) error {
	attributes, err := json.Marshal(c.Attributes)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO contacts (id, workspace_id, phone, email, first_name, last_name, attributes, tags, subscribed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	return r.db.DB.QueryRowContext(ctx, query,
		c.ID, c.WorkspaceID, c.Phone, c.Email, c.FirstName, c.LastName,
		attributes, pq.Array(c.Tags), c.Subscribed,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Contact, error) {
	query := `
		SELECT id, workspace_id, phone, email, first_name, last_name, attributes, tags, subscribed, created_at, updated_at
		FROM contacts
		WHERE id = $1`

	return r.scanContact(r.db.DB.QueryRowContext(ctx, query, id))
}

func (r *Repository) GetByPhone(ctx context.Context, workspaceID uuid.UUID, phone string) (*Contact, error) {
	query := `
		SELECT id, workspace_id, phone, email, first_name, last_name, attributes, tags, subscribed, created_at, updated_at
		FROM contacts
		WHERE workspace_id = $1 AND phone = $2`

	return r.scanContact(r.db.DB.QueryRowContext(ctx, query, workspaceID, phone))
}

func (r *Repository) List(ctx context.Context, workspaceID uuid.UUID, limit, offset int) ([]*Contact, int, error) {
	countQuery := `SELECT COUNT(*) FROM contacts WHERE workspace_id = $1`
	var total int
	if err := r.db.DB.QueryRowContext(ctx, countQuery, workspaceID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, workspace_id, phone, email, first_name, last_name, attributes, tags, subscribed, created_at, updated_at
		FROM contacts
		WHERE workspace_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.DB.QueryContext(ctx, query, workspaceID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	contacts, err := r.scanContacts(rows)
	return contacts, total, err
}

// ListAll fetches every contact in a workspace, for in-memory segment
// evaluation. Callers rely on workspaces staying within client-side
// filtering scale (low thousands of rows).
func (r *Repository) ListAll(ctx context.Context, workspaceID uuid.UUID) ([]*Contact, error) {
	query := `
		SELECT id, workspace_id, phone, email, first_name, last_name, attributes, tags, subscribed, created_at, updated_at
		FROM contacts
		WHERE workspace_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.DB.QueryContext(ctx, query, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanContacts(rows)
}

func (r *Repository) Search(ctx context.Context, workspaceID uuid.UUID, req *SearchRequest) ([]*Contact, int, error) {
	whereClause := []string{"workspace_id = $1"}
	args := []interface{}{workspaceID}
	argIndex := 2

	for _, f := range req.Filters {
		clause, newArgs, idx := r.buildFilterClause(f, argIndex)
		if clause != "" {
			whereClause = append(whereClause, clause)
			args = append(args, newArgs...)
			argIndex = idx
		}
	}

	where := strings.Join(whereClause, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM contacts WHERE %s", where)
	var total int
	if err := r.db.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	orderClause := "created_at DESC"
	if req.OrderBy != "" {
		dir := "ASC"
		if strings.ToUpper(req.OrderDir) == "DESC" {
			dir = "DESC"
		}
		switch req.OrderBy {
		case "created_at", "updated_at", "phone", "email", "first_name", "last_name":
			orderClause = fmt.Sprintf("%s %s", req.OrderBy, dir)
		default:
			// Order by JSONB attribute
			orderClause = fmt.Sprintf("attributes->>'%s' %s", req.OrderBy, dir)
		}
	}

	limit := req.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := fmt.Sprintf(`
		SELECT id, workspace_id, phone, email, first_name, last_name, attributes, tags, subscribed, created_at, updated_at
		FROM contacts
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`, where, orderClause, argIndex, argIndex+1)

	args = append(args, limit, req.Offset)

	rows, err := r.db.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	contacts, err := r.scanContacts(rows)
	return contacts, total, err
}

func (r *Repository) buildFilterClause(f SearchFilter, argIndex int) (string, []interface{}, int) {
	var clause string
	var args []interface{}

	// Attribute path - supports nested properties like "billing.plan"
	propPath := fmt.Sprintf("attributes->'%s'", strings.Replace(f.Property, ".", "'->'", -1))

	switch f.Operator {
	case "eq":
		valueJSON, _ := json.Marshal(f.Value)
		clause = fmt.Sprintf("%s = $%d", propPath, argIndex)
		args = append(args, string(valueJSON))
		argIndex++
	case "neq":
		valueJSON, _ := json.Marshal(f.Value)
		clause = fmt.Sprintf("%s != $%d", propPath, argIndex)
		args = append(args, string(valueJSON))
		argIndex++
	case "gt":
		clause = fmt.Sprintf("(%s)::numeric > $%d", propPath, argIndex)
		args = append(args, f.Value)
		argIndex++
	case "gte":
		clause = fmt.Sprintf("(%s)::numeric >= $%d", propPath, argIndex)
		args = append(args, f.Value)
		argIndex++
	case "lt":
		clause = fmt.Sprintf("(%s)::numeric < $%d", propPath, argIndex)
		args = append(args, f.Value)
		argIndex++
	case "lte":
		clause = fmt.Sprintf("(%s)::numeric <= $%d", propPath, argIndex)
		args = append(args, f.Value)
		argIndex++
	case "contains":
		clause = fmt.Sprintf("%s::text ILIKE $%d", propPath, argIndex)
		args = append(args, "%"+fmt.Sprint(f.Value)+"%")
		argIndex++
	case "exists":
		if f.Value == true {
			clause = fmt.Sprintf("attributes ? '%s'", f.Property)
		} else {
			clause = fmt.Sprintf("NOT (attributes ? '%s')", f.Property)
		}
	case "in":
		if arr, ok := f.Value.([]interface{}); ok {
			placeholders := make([]string, len(arr))
			for i, v := range arr {
				valueJSON, _ := json.Marshal(v)
				placeholders[i] = fmt.Sprintf("$%d", argIndex)
				args = append(args, string(valueJSON))
				argIndex++
			}
			clause = fmt.Sprintf("%s IN (%s)", propPath, strings.Join(placeholders, ","))
		}
	}

	return clause, args, argIndex
}

func (r *Repository) Update(ctx context.Context, c *Contact) error {
	attributes, err := json.Marshal(c.Attributes)
	if err != nil {
		return err
	}

	query := `
		UPDATE contacts
		SET phone = $2, email = $3, first_name = $4, last_name = $5, attributes = $6, tags = $7, subscribed = $8, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING updated_at`

	return r.db.DB.QueryRowContext(ctx, query,
		c.ID, c.Phone, c.Email, c.FirstName, c.LastName, attributes, pq.Array(c.Tags), c.Subscribed,
	).Scan(&c.UpdatedAt)
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM contacts WHERE id = $1`
	_, err := r.db.DB.ExecContext(ctx, query, id)
	return err
}

func (r *Repository) scanContact(row *sql.Row) (*Contact, error) {
	c := &Contact{}
	var attributes []byte
	var phone, email, firstName, lastName sql.NullString

	err := row.Scan(
		&c.ID, &c.WorkspaceID, &phone, &email, &firstName, &lastName,
		&attributes, pq.Array(&c.Tags), &c.Subscribed, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	c.Phone = phone.String
	c.Email = email.String
	c.FirstName = firstName.String
	c.LastName = lastName.String
	json.Unmarshal(attributes, &c.Attributes)
	return c, nil
}

func (r *Repository) scanContacts(rows *sql.Rows) ([]*Contact, error) {
	var contacts []*Contact
	for rows.Next() {
		c := &Contact{}
		var attributes []byte
		var phone, email, firstName, lastName sql.NullString

		if err := rows.Scan(
			&c.ID, &c.WorkspaceID, &phone, &email, &firstName, &lastName,
			&attributes, pq.Array(&c.Tags), &c.Subscribed, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}

		c.Phone = phone.String
		c.Email = email.String
		c.FirstName = firstName.String
		c.LastName = lastName.String
		json.Unmarshal(attributes, &c.Attributes)
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

// Attribute definition methods
func (r *Repository) CreateAttribute(ctx context.Context, def *AttributeDefinition) error {
	options, _ := json.Marshal(def.Options)
	query := `
		INSERT INTO attribute_definitions (id, workspace_id, key, label, type, options, required)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`
	return r.db.DB.QueryRowContext(ctx, query,
		def.ID, def.WorkspaceID, def.Key, def.Label, def.Type, options, def.Required,
	).Scan(&def.CreatedAt)
}

func (r *Repository) GetAttributeByKey(ctx context.Context, workspaceID uuid.UUID, key string) (*AttributeDefinition, error) {
	query := `
		SELECT id, workspace_id, key, label, type, options, required, created_at
		FROM attribute_definitions
		WHERE workspace_id = $1 AND key = $2`

	def := &AttributeDefinition{}
	var options []byte
	err := r.db.DB.QueryRowContext(ctx, query, workspaceID, key).Scan(
		&def.ID, &def.WorkspaceID, &def.Key, &def.Label, &def.Type, &options, &def.Required, &def.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	json.Unmarshal(options, &def.Options)
	return def, nil
}

func (r *Repository) ListAttributes(ctx context.Context, workspaceID uuid.UUID) ([]*AttributeDefinition, error) {
	query := `
		SELECT id, workspace_id, key, label, type, options, required, created_at
		FROM attribute_definitions
		WHERE workspace_id = $1
		ORDER BY key`

	rows, err := r.db.DB.QueryContext(ctx, query, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var defs []*AttributeDefinition
	for rows.Next() {
		def := &AttributeDefinition{}
		var options []byte
		if err := rows.Scan(
			&def.ID, &def.WorkspaceID, &def.Key, &def.Label, &def.Type, &options, &def.Required, &def.CreatedAt,
		); err != nil {
			return nil, err
		}
		json.Unmarshal(options, &def.Options)
		defs = append(defs, def)
	}
	return defs, rows.Err()
}

func (r *Repository) DeleteAttribute(ctx context.Context, workspaceID uuid.UUID, key string) error {
	query := `DELETE FROM attribute_definitions WHERE workspace_id = $1 AND key = $2`
	_, err := r.db.DB.ExecContext(ctx, query, workspaceID, key)
	return err
}
