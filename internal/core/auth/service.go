package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/beaconcdp/beacon/config"
	"github.com/beaconcdp/beacon/internal/core/filter"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserExists         = errors.New("user with this email already exists")
	ErrWorkspaceExists    = errors.New("workspace with this slug already exists")
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrLastPlatformAdmin  = errors.New("cannot demote the last platform admin")
	ErrAlreadyAdmin       = errors.New("user is already a platform admin")
	ErrNotAdmin           = errors.New("user is not a platform admin")
)

type Service struct {
	repo   *Repository
	config *config.JWTConfig
}

func NewService(repo *Repository, cfg *config.JWTConfig) *Service {
	return &Service{repo: repo, config: cfg}
}

type JWTClaims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	// Pointer so tokens minted before the field existed still parse.
	IsPlatformAdmin *bool `json:"is_platform_admin,omitempty"`
	jwt.RegisteredClaims
}

// User authentication
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	existing, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &User{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: string(hash),
		Name:         req.Name,
		Status:       "active",
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{Token: token, User: user}, nil
}

func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{Token: token, User: user}, nil
}

func (s *Service) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetUserByID(ctx, id)
}

func (s *Service) generateToken(user *User) (string, error) {
	claims := JWTClaims{
		UserID:          user.ID,
		Email:           user.Email,
		IsPlatformAdmin: &user.IsPlatformAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.config.ExpirationDuration())),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.Secret))
}

func (s *Service) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrUnauthorized
}

// Workspace management
func (s *Service) CreateWorkspace(ctx context.Context, userID uuid.UUID, req *CreateWorkspaceRequest) (*Workspace, error) {
	existing, err := s.repo.GetWorkspaceBySlug(ctx, req.Slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrWorkspaceExists
	}

	ws := &Workspace{
		ID:   uuid.New(),
		Name: req.Name,
		Slug: req.Slug,
	}

	if err := s.repo.CreateWorkspace(ctx, ws); err != nil {
		return nil, err
	}

	// Create default roles
	adminRole := &Role{
		ID:          uuid.New(),
		WorkspaceID: ws.ID,
		Name:        "admin",
		Permissions: AdminPermissions,
	}
	if err := s.repo.CreateRole(ctx, adminRole); err != nil {
		return nil, err
	}

	editorRole := &Role{
		ID:          uuid.New(),
		WorkspaceID: ws.ID,
		Name:        "editor",
		Permissions: EditorPermissions,
	}
	if err := s.repo.CreateRole(ctx, editorRole); err != nil {
		return nil, err
	}

	viewerRole := &Role{
		ID:          uuid.New(),
		WorkspaceID: ws.ID,
		Name:        "viewer",
		Permissions: ViewerPermissions,
	}
	if err := s.repo.CreateRole(ctx, viewerRole); err != nil {
		return nil, err
	}

	// Add creator as admin
	membership := &Membership{
		ID:          uuid.New(),
		WorkspaceID: ws.ID,
		UserID:      userID,
		RoleID:      adminRole.ID,
	}
	if err := s.repo.CreateMembership(ctx, membership); err != nil {
		return nil, err
	}

	return ws, nil
}

func (s *Service) GetWorkspace(ctx context.Context, id uuid.UUID) (*Workspace, error) {
	ws, err := s.repo.GetWorkspaceByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ws == nil {
		return nil, ErrNotFound
	}
	return ws, nil
}

func (s *Service) GetWorkspacesByUser(ctx context.Context, userID uuid.UUID) ([]*Workspace, error) {
	return s.repo.GetWorkspacesByUserID(ctx, userID)
}

func (s *Service) ListWorkspaces(ctx context.Context, limit, offset int) ([]*Workspace, int, error) {
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	return s.repo.ListWorkspaces(ctx, limit, offset)
}

func (s *Service) UpdateWorkspace(ctx context.Context, ws *Workspace) error {
	return s.repo.UpdateWorkspace(ctx, ws)
}

func (s *Service) DeleteWorkspace(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteWorkspace(ctx, id)
}

// Role management
func (s *Service) GetRoles(ctx context.Context, workspaceID uuid.UUID) ([]*Role, error) {
	return s.repo.GetRolesByWorkspaceID(ctx, workspaceID)
}

func (s *Service) GetRole(ctx context.Context, id uuid.UUID) (*Role, error) {
	role, err := s.repo.GetRoleByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, ErrNotFound
	}
	return role, nil
}

func (s *Service) CreateRole(ctx context.Context, workspaceID uuid.UUID, name string, permissions []string) (*Role, error) {
	role := &Role{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		Name:        name,
		Permissions: permissions,
	}
	if err := s.repo.CreateRole(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

// Membership management
func (s *Service) GetMembership(ctx context.Context, workspaceID, userID uuid.UUID) (*Membership, error) {
	return s.repo.GetMembership(ctx, workspaceID, userID)
}

func (s *Service) GetMemberships(ctx context.Context, workspaceID uuid.UUID) ([]*Membership, error) {
	return s.repo.GetMembershipsByWorkspaceID(ctx, workspaceID)
}

func (s *Service) AddMember(ctx context.Context, workspaceID uuid.UUID, userEmail string, roleID uuid.UUID) (*Membership, error) {
	user, err := s.repo.GetUserByEmail(ctx, userEmail)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	membership := &Membership{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		UserID:      user.ID,
		RoleID:      roleID,
	}
	if err := s.repo.CreateMembership(ctx, membership); err != nil {
		return nil, err
	}
	return membership, nil
}

func (s *Service) RemoveMember(ctx context.Context, workspaceID, userID uuid.UUID) error {
	return s.repo.DeleteMembership(ctx, workspaceID, userID)
}

func (s *Service) GetUserPermissions(ctx context.Context, workspaceID, userID uuid.UUID) ([]string, error) {
	membership, err := s.repo.GetMembership(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}
	if membership == nil {
		return nil, ErrForbidden
	}

	role, err := s.repo.GetRoleByID(ctx, membership.RoleID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, ErrForbidden
	}

	return role.Permissions, nil
}

func (s *Service) HasPermission(ctx context.Context, workspaceID, userID uuid.UUID, permission string) (bool, error) {
	permissions, err := s.GetUserPermissions(ctx, workspaceID, userID)
	if err != nil {
		return false, err
	}

	for _, p := range permissions {
		if p == permission {
			return true, nil
		}
	}
	return false, nil
}

// API Key management
func (s *Service) CreateAPIKey(ctx context.Context, workspaceID uuid.UUID, userID *uuid.UUID, req *CreateAPIKeyRequest) (*CreateAPIKeyResponse, error) {
	rawKey := make([]byte, 32)
	if _, err := rand.Read(rawKey); err != nil {
		return nil, err
	}
	keyString := "bk_" + hex.EncodeToString(rawKey)

	hash := sha256.Sum256([]byte(keyString))
	keyHash := hex.EncodeToString(hash[:])

	var expiresAt *time.Time
	if req.ExpiresAt != nil {
		t, err := time.Parse(time.RFC3339, *req.ExpiresAt)
		if err != nil {
			return nil, fmt.Errorf("invalid expiration date format: %w", err)
		}
		expiresAt = &t
	}

	apiKey := &APIKey{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		UserID:      userID,
		Name:        req.Name,
		KeyHash:     keyHash,
		Permissions: req.Permissions,
		ExpiresAt:   expiresAt,
	}

	if err := s.repo.CreateAPIKey(ctx, apiKey); err != nil {
		return nil, err
	}

	return &CreateAPIKeyResponse{
		APIKey: apiKey,
		Key:    keyString,
	}, nil
}

func (s *Service) ValidateAPIKey(ctx context.Context, keyString string) (*APIKey, error) {
	hash := sha256.Sum256([]byte(keyString))
	keyHash := hex.EncodeToString(hash[:])

	apiKey, err := s.repo.GetAPIKeyByHash(ctx, keyHash)
	if err != nil {
		return nil, err
	}
	if apiKey == nil {
		return nil, ErrUnauthorized
	}

	if apiKey.ExpiresAt != nil && apiKey.ExpiresAt.Before(time.Now()) {
		return nil, ErrUnauthorized
	}

	// Update last used
	go s.repo.UpdateAPIKeyLastUsed(context.Background(), apiKey.ID)

	return apiKey, nil
}

func (s *Service) GetAPIKeys(ctx context.Context, workspaceID uuid.UUID) ([]*APIKey, error) {
	return s.repo.GetAPIKeysByWorkspaceID(ctx, workspaceID)
}

func (s *Service) DeleteAPIKey(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteAPIKey(ctx, id)
}

// Platform admin management
func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]*User, int, error) {
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	return s.repo.ListUsers(ctx, limit, offset)
}

func (s *Service) UpdateUser(ctx context.Context, user *User) error {
	return s.repo.UpdateUser(ctx, user)
}

func (s *Service) PromoteToPlatformAdmin(ctx context.Context, actorID, targetID uuid.UUID) error {
	actor, err := s.repo.GetUserByID(ctx, actorID)
	if err != nil {
		return err
	}
	if actor == nil || !actor.IsPlatformAdmin {
		return ErrUnauthorized
	}

	target, err := s.repo.GetUserByID(ctx, targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return ErrNotFound
	}
	if target.IsPlatformAdmin {
		return ErrAlreadyAdmin
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.repo.UpdateUserAdminStatus(ctx, tx, targetID, true, &actorID); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Service) DemoteFromPlatformAdmin(ctx context.Context, actorID, targetID uuid.UUID) error {
	actor, err := s.repo.GetUserByID(ctx, actorID)
	if err != nil {
		return err
	}
	if actor == nil || !actor.IsPlatformAdmin {
		return ErrUnauthorized
	}

	target, err := s.repo.GetUserByID(ctx, targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return ErrNotFound
	}
	if !target.IsPlatformAdmin {
		return ErrNotAdmin
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	count, err := s.repo.CountPlatformAdminsForUpdate(ctx, tx)
	if err != nil {
		return err
	}
	if count <= 1 {
		return ErrLastPlatformAdmin
	}

	if err := s.repo.UpdateUserAdminStatus(ctx, tx, targetID, false, nil); err != nil {
		return err
	}
	return tx.Commit()
}

// Audit logs
func (s *Service) RecordAudit(ctx context.Context, entry *AuditLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return s.repo.CreateAuditLog(ctx, entry)
}

// AuditLogFields describes the filterable attributes of an audit log row
// for the admin log query endpoint.
var AuditLogFields = filter.Registry{
	{Key: "actor_type", Label: "Actor Type", Type: filter.FieldTypeEnum, Options: []filter.FieldOption{
		{Value: "user", Label: "User"},
		{Value: "api_key", Label: "API Key"},
		{Value: "system", Label: "System"},
	}},
	{Key: "entity_type", Label: "Entity Type", Type: filter.FieldTypeString},
	{Key: "entity_id", Label: "Entity ID", Type: filter.FieldTypeString},
	{Key: "action", Label: "Action", Type: filter.FieldTypeString},
	{Key: "result_status", Label: "Result", Type: filter.FieldTypeString},
	{Key: "ip_address", Label: "IP Address", Type: filter.FieldTypeString},
	{Key: "created_at", Label: "Created", Type: filter.FieldTypeDate},
}

// QueryAuditLogs fetches a bounded window of audit logs and applies the
// caller's filter expression in memory.
func (s *Service) QueryAuditLogs(ctx context.Context, limit, offset int, groups []filter.Group) ([]*AuditLog, error) {
	if limit <= 0 || limit > 1000 {
		limit = 200
	}

	entries, err := s.repo.ListAuditLogs(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return entries, nil
	}

	matched := make([]*AuditLog, 0, len(entries))
	for _, entry := range entries {
		if filter.Evaluate(groups, auditLogRecord(entry), AuditLogFields) {
			matched = append(matched, entry)
		}
	}
	return matched, nil
}

func auditLogRecord(entry *AuditLog) filter.Record {
	rec := filter.Record{
		"actor_type":  entry.ActorType,
		"entity_type": entry.EntityType,
		"entity_id":   entry.EntityID,
		"action":      entry.Action,
		"created_at":  entry.CreatedAt,
	}
	if entry.ResultStatus != nil {
		rec["result_status"] = *entry.ResultStatus
	}
	if entry.IPAddress != nil {
		rec["ip_address"] = *entry.IPAddress
	}
	return rec
}
