package auth

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID              uuid.UUID  `json:"id"`
	Email           string     `json:"email"`
	PasswordHash    string     `json:"-"`
	Name            string     `json:"name"`
	Status          string     `json:"status"`
	IsPlatformAdmin bool       `json:"is_platform_admin"`
	AdminPromotedAt *time.Time `json:"admin_promoted_at,omitempty"`
	AdminPromotedBy *uuid.UUID `json:"admin_promoted_by,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Workspace is the tenant boundary: contacts, segments, campaigns, and
// webhooks all belong to exactly one workspace.
type Workspace struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

type Role struct {
	ID          uuid.UUID `json:"id"`
	WorkspaceID uuid.UUID `json:"workspace_id"`
	Name        string    `json:"name"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
}

type Membership struct {
	ID          uuid.UUID `json:"id"`
	WorkspaceID uuid.UUID `json:"workspace_id"`
	UserID      uuid.UUID `json:"user_id"`
	RoleID      uuid.UUID `json:"role_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type APIKey struct {
	ID          uuid.UUID  `json:"id"`
	WorkspaceID uuid.UUID  `json:"workspace_id"`
	UserID      *uuid.UUID `json:"user_id,omitempty"`
	Name        string     `json:"name"`
	KeyHash     string     `json:"-"`
	Permissions []string   `json:"permissions"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type AuditLog struct {
	ID           uuid.UUID  `json:"id"`
	WorkspaceID  *uuid.UUID `json:"workspace_id,omitempty"`
	UserID       *uuid.UUID `json:"user_id,omitempty"`
	ActorType    string     `json:"actor_type"`
	EntityType   string     `json:"entity_type"`
	EntityID     string     `json:"entity_id"`
	Action       string     `json:"action"`
	IPAddress    *string    `json:"ip_address,omitempty"`
	UserAgent    *string    `json:"user_agent,omitempty"`
	ResultStatus *string    `json:"result_status,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Request/Response types
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

type CreateWorkspaceRequest struct {
	Name string `json:"name" binding:"required"`
	Slug string `json:"slug" binding:"required"`
}

type AddMemberRequest struct {
	Email  string `json:"email" binding:"required,email"`
	RoleID string `json:"role_id" binding:"required"`
}

type CreateRoleRequest struct {
	Name        string   `json:"name" binding:"required"`
	Permissions []string `json:"permissions" binding:"required"`
}

type CreateAPIKeyRequest struct {
	Name        string   `json:"name" binding:"required"`
	Permissions []string `json:"permissions"`
	ExpiresAt   *string  `json:"expires_at"`
}

type CreateAPIKeyResponse struct {
	APIKey *APIKey `json:"api_key"`
	Key    string  `json:"key"`
}

// Permission constants
const (
	PermWorkspaceManage = "workspace:manage"
	PermContactRead     = "contact:read"
	PermContactWrite    = "contact:write"
	PermContactDelete   = "contact:delete"
	PermSegmentRead     = "segment:read"
	PermSegmentWrite    = "segment:write"
	PermSegmentDelete   = "segment:delete"
	PermCampaignRead    = "campaign:read"
	PermCampaignWrite   = "campaign:write"
	PermCampaignSend    = "campaign:send"
	PermWebhookRead     = "webhook:read"
	PermWebhookWrite    = "webhook:write"
	PermAgentRead       = "agent:read"
	PermAgentWrite      = "agent:write"
)

var AllPermissions = []string{
	PermWorkspaceManage,
	PermContactRead, PermContactWrite, PermContactDelete,
	PermSegmentRead, PermSegmentWrite, PermSegmentDelete,
	PermCampaignRead, PermCampaignWrite, PermCampaignSend,
	PermWebhookRead, PermWebhookWrite,
	PermAgentRead, PermAgentWrite,
}

var AdminPermissions = append([]string{}, AllPermissions...)

var EditorPermissions = []string{
	PermContactRead, PermContactWrite,
	PermSegmentRead, PermSegmentWrite,
	PermCampaignRead, PermCampaignWrite, PermCampaignSend,
	PermWebhookRead, PermWebhookWrite,
	PermAgentRead, PermAgentWrite,
}

var ViewerPermissions = []string{
	PermContactRead,
	PermSegmentRead,
	PermCampaignRead,
	PermWebhookRead,
	PermAgentRead,
}
