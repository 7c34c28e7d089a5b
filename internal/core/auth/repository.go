package auth

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

// User methods
func (r *Repository) CreateUser(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, email, password_hash, name, status, is_platform_admin)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`
	return r.db.DB.QueryRowContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.Name, user.Status, user.IsPlatformAdmin,
	).Scan(&user.CreatedAt)
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, email, password_hash, name, status, is_platform_admin,
		       admin_promoted_at, admin_promoted_by, created_at
		FROM users WHERE email = $1`
	return r.scanUser(r.db.DB.QueryRowContext(ctx, query, email))
}

func (r *Repository) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := `
		SELECT id, email, password_hash, name, status, is_platform_admin,
		       admin_promoted_at, admin_promoted_by, created_at
		FROM users WHERE id = $1`
	return r.scanUser(r.db.DB.QueryRowContext(ctx, query, id))
}

func (r *Repository) ListUsers(ctx context.Context, limit, offset int) ([]*User, int, error) {
	var total int
	if err := r.db.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, email, password_hash, name, status, is_platform_admin,
		       admin_promoted_at, admin_promoted_by, created_at
		FROM users
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`
	rows, err := r.db.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		user := &User{}
		if err := rows.Scan(
			&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.Status,
			&user.IsPlatformAdmin, &user.AdminPromotedAt, &user.AdminPromotedBy, &user.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		users = append(users, user)
	}
	return users, total, rows.Err()
}

func (r *Repository) UpdateUser(ctx context.Context, user *User) error {
	query := `UPDATE users SET email = $2, name = $3, status = $4 WHERE id = $1`
	_, err := r.db.DB.ExecContext(ctx, query, user.ID, user.Email, user.Name, user.Status)
	return err
}

// Platform admin promotion runs in a transaction so the last-admin check
// and the update cannot race.
func (r *Repository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return r.db.DB.BeginTx(ctx, nil)
}

func (r *Repository) CountPlatformAdminsForUpdate(ctx context.Context, tx *sql.Tx) (int, error) {
	var count int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE is_platform_admin = TRUE FOR UPDATE`,
	).Scan(&count)
	return count, err
}

func (r *Repository) UpdateUserAdminStatus(ctx context.Context, tx *sql.Tx, userID uuid.UUID, isAdmin bool, promotedBy *uuid.UUID) error {
	var err error
	if isAdmin {
		_, err = tx.ExecContext(ctx, `
			UPDATE users
			SET is_platform_admin = TRUE, admin_promoted_at = CURRENT_TIMESTAMP, admin_promoted_by = $2
			WHERE id = $1`, userID, promotedBy)
	} else {
		_, err = tx.ExecContext(ctx, `
			UPDATE users
			SET is_platform_admin = FALSE, admin_promoted_at = NULL, admin_promoted_by = NULL
			WHERE id = $1`, userID)
	}
	return err
}

func (r *Repository) scanUser(row *sql.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.Status,
		&user.IsPlatformAdmin, &user.AdminPromotedAt, &user.AdminPromotedBy, &user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Workspace methods
func (r *Repository) CreateWorkspace(ctx context.Context, ws *Workspace) error {
	query := `
		INSERT INTO workspaces (id, name, slug)
		VALUES ($1, $2, $3)
		RETURNING created_at`
	return r.db.DB.QueryRowContext(ctx, query,
		ws.ID, ws.Name, ws.Slug,
	).Scan(&ws.CreatedAt)
}

func (r *Repository) GetWorkspaceByID(ctx context.Context, id uuid.UUID) (*Workspace, error) {
	query := `SELECT id, name, slug, created_at FROM workspaces WHERE id = $1`
	ws := &Workspace{}
	err := r.db.DB.QueryRowContext(ctx, query, id).Scan(
		&ws.ID, &ws.Name, &ws.Slug, &ws.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return ws, err
}

func (r *Repository) GetWorkspaceBySlug(ctx context.Context, slug string) (*Workspace, error) {
	query := `SELECT id, name, slug, created_at FROM workspaces WHERE slug = $1`
	ws := &Workspace{}
	err := r.db.DB.QueryRowContext(ctx, query, slug).Scan(
		&ws.ID, &ws.Name, &ws.Slug, &ws.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return ws, err
}

func (r *Repository) GetWorkspacesByUserID(ctx context.Context, userID uuid.UUID) ([]*Workspace, error) {
	query := `
		SELECT w.id, w.name, w.slug, w.created_at
		FROM workspaces w
		INNER JOIN memberships m ON w.id = m.workspace_id
		WHERE m.user_id = $1
		ORDER BY w.created_at DESC`
	rows, err := r.db.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workspaces []*Workspace
	for rows.Next() {
		ws := &Workspace{}
		if err := rows.Scan(&ws.ID, &ws.Name, &ws.Slug, &ws.CreatedAt); err != nil {
			return nil, err
		}
		workspaces = append(workspaces, ws)
	}
	return workspaces, rows.Err()
}

func (r *Repository) ListWorkspaces(ctx context.Context, limit, offset int) ([]*Workspace, int, error) {
	var total int
	if err := r.db.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM workspaces`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, name, slug, created_at FROM workspaces ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var workspaces []*Workspace
	for rows.Next() {
		ws := &Workspace{}
		if err := rows.Scan(&ws.ID, &ws.Name, &ws.Slug, &ws.CreatedAt); err != nil {
			return nil, 0, err
		}
		workspaces = append(workspaces, ws)
	}
	return workspaces, total, rows.Err()
}

func (r *Repository) UpdateWorkspace(ctx context.Context, ws *Workspace) error {
	query := `UPDATE workspaces SET name = $2, slug = $3 WHERE id = $1`
	_, err := r.db.DB.ExecContext(ctx, query, ws.ID, ws.Name, ws.Slug)
	return err
}

func (r *Repository) DeleteWorkspace(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM workspaces WHERE id = $1`
	_, err := r.db.DB.ExecContext(ctx, query, id)
	return err
}

// Role methods
func (r *Repository) CreateRole(ctx context.Context, role *Role) error {
	permissions, _ := json.Marshal(role.Permissions)
	query := `
		INSERT INTO roles (id, workspace_id, name, permissions)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`
	return r.db.DB.QueryRowContext(ctx, query,
		role.ID, role.WorkspaceID, role.Name, permissions,
	).Scan(&role.CreatedAt)
}

func (r *Repository) GetRoleByID(ctx context.Context, id uuid.UUID) (*Role, error) {
	query := `SELECT id, workspace_id, name, permissions, created_at FROM roles WHERE id = $1`
	role := &Role{}
	var permissions []byte
	err := r.db.DB.QueryRowContext(ctx, query, id).Scan(
		&role.ID, &role.WorkspaceID, &role.Name, &permissions, &role.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(permissions, &role.Permissions); err != nil {
		return nil, err
	}
	return role, nil
}

func (r *Repository) GetRolesByWorkspaceID(ctx context.Context, workspaceID uuid.UUID) ([]*Role, error) {
	query := `SELECT id, workspace_id, name, permissions, created_at FROM roles WHERE workspace_id = $1 ORDER BY name`
	rows, err := r.db.DB.QueryContext(ctx, query, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []*Role
	for rows.Next() {
		role := &Role{}
		var permissions []byte
		if err := rows.Scan(&role.ID, &role.WorkspaceID, &role.Name, &permissions, &role.CreatedAt); err != nil {
			return nil, err
		}
		json.Unmarshal(permissions, &role.Permissions)
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// Membership methods
func (r *Repository) CreateMembership(ctx context.Context, membership *Membership) error {
	query := `
		INSERT INTO memberships (id, workspace_id, user_id, role_id)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`
	return r.db.DB.QueryRowContext(ctx, query,
		membership.ID, membership.WorkspaceID, membership.UserID, membership.RoleID,
	).Scan(&membership.CreatedAt)
}

func (r *Repository) GetMembership(ctx context.Context, workspaceID, userID uuid.UUID) (*Membership, error) {
	query := `SELECT id, workspace_id, user_id, role_id, created_at FROM memberships WHERE workspace_id = $1 AND user_id = $2`
	m := &Membership{}
	err := r.db.DB.QueryRowContext(ctx, query, workspaceID, userID).Scan(
		&m.ID, &m.WorkspaceID, &m.UserID, &m.RoleID, &m.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return m, err
}

func (r *Repository) GetMembershipsByWorkspaceID(ctx context.Context, workspaceID uuid.UUID) ([]*Membership, error) {
	query := `SELECT id, workspace_id, user_id, role_id, created_at FROM memberships WHERE workspace_id = $1`
	rows, err := r.db.DB.QueryContext(ctx, query, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memberships []*Membership
	for rows.Next() {
		m := &Membership{}
		if err := rows.Scan(&m.ID, &m.WorkspaceID, &m.UserID, &m.RoleID, &m.CreatedAt); err != nil {
			return nil, err
		}
		memberships = append(memberships, m)
	}
	return memberships, rows.Err()
}

func (r *Repository) DeleteMembership(ctx context.Context, workspaceID, userID uuid.UUID) error {
	query := `DELETE FROM memberships WHERE workspace_id = $1 AND user_id = $2`
	_, err := r.db.DB.ExecContext(ctx, query, workspaceID, userID)
	return err
}

// API Key methods
func (r *Repository) CreateAPIKey(ctx context.Context, key *APIKey) error {
	permissions, _ := json.Marshal(key.Permissions)
	query := `
		INSERT INTO api_keys (id, workspace_id, user_id, name, key_hash, permissions, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`
	return r.db.DB.QueryRowContext(ctx, query,
		key.ID, key.WorkspaceID, key.UserID, key.Name, key.KeyHash, permissions, key.ExpiresAt,
	).Scan(&key.CreatedAt)
}

func (r *Repository) GetAPIKeyByHash(ctx context.Context, keyHash string) (*APIKey, error) {
	query := `SELECT id, workspace_id, user_id, name, key_hash, permissions, expires_at, last_used_at, created_at
		FROM api_keys WHERE key_hash = $1`
	key := &APIKey{}
	var permissions []byte
	err := r.db.DB.QueryRowContext(ctx, query, keyHash).Scan(
		&key.ID, &key.WorkspaceID, &key.UserID, &key.Name, &key.KeyHash,
		&permissions, &key.ExpiresAt, &key.LastUsedAt, &key.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	json.Unmarshal(permissions, &key.Permissions)
	return key, nil
}

func (r *Repository) GetAPIKeysByWorkspaceID(ctx context.Context, workspaceID uuid.UUID) ([]*APIKey, error) {
	query := `SELECT id, workspace_id, user_id, name, permissions, expires_at, last_used_at, created_at
		FROM api_keys WHERE workspace_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.DB.QueryContext(ctx, query, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []*APIKey
	for rows.Next() {
		key := &APIKey{}
		var permissions []byte
		if err := rows.Scan(&key.ID, &key.WorkspaceID, &key.UserID, &key.Name,
			&permissions, &key.ExpiresAt, &key.LastUsedAt, &key.CreatedAt); err != nil {
			return nil, err
		}
		json.Unmarshal(permissions, &key.Permissions)
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

func (r *Repository) UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE api_keys SET last_used_at = CURRENT_TIMESTAMP WHERE id = $1`
	_, err := r.db.DB.ExecContext(ctx, query, id)
	return err
}

func (r *Repository) DeleteAPIKey(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM api_keys WHERE id = $1`
	_, err := r.db.DB.ExecContext(ctx, query, id)
	return err
}

// Audit log methods
func (r *Repository) CreateAuditLog(ctx context.Context, entry *AuditLog) error {
	query := `
		INSERT INTO audit_logs (id, workspace_id, user_id, actor_type, entity_type, entity_id, action, ip_address, user_agent, result_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at`
	return r.db.DB.QueryRowContext(ctx, query,
		entry.ID, entry.WorkspaceID, entry.UserID, entry.ActorType, entry.EntityType,
		entry.EntityID, entry.Action, entry.IPAddress, entry.UserAgent, entry.ResultStatus,
	).Scan(&entry.CreatedAt)
}

func (r *Repository) ListAuditLogs(ctx context.Context, limit, offset int) ([]*AuditLog, error) {
	query := `
		SELECT id, workspace_id, user_id, actor_type, entity_type, entity_id, action, ip_address, user_agent, result_status, created_at
		FROM audit_logs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`
	rows, err := r.db.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*AuditLog
	for rows.Next() {
		entry := &AuditLog{}
		if err := rows.Scan(
			&entry.ID, &entry.WorkspaceID, &entry.UserID, &entry.ActorType, &entry.EntityType,
			&entry.EntityID, &entry.Action, &entry.IPAddress, &entry.UserAgent, &entry.ResultStatus, &entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
