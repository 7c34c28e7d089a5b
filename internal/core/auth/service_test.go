package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/beaconcdp/beacon/config"
	"github.com/beaconcdp/beacon/internal/core/filter"
)

func newTestService() *Service {
	return NewService(nil, &config.JWTConfig{
		Secret:          "test-secret",
		ExpirationHours: 1,
	})
}

func TestTokenRoundTrip(t *testing.T) {
	s := newTestService()
	user := &User{
		ID:              uuid.New(),
		Email:           "alice@example.com",
		IsPlatformAdmin: true,
	}

	token, err := s.generateToken(user)
	if err != nil {
		t.Fatalf("generateToken: %v", err)
	}

	claims, err := s.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}

	if claims.UserID != user.ID {
		t.Errorf("user id = %v, expected %v", claims.UserID, user.ID)
	}
	if claims.Email != user.Email {
		t.Errorf("email = %s", claims.Email)
	}
	if claims.IsPlatformAdmin == nil || !*claims.IsPlatformAdmin {
		t.Error("is_platform_admin not carried in claims")
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	s := newTestService()
	user := &User{ID: uuid.New(), Email: "alice@example.com"}

	token, err := s.generateToken(user)
	if err != nil {
		t.Fatalf("generateToken: %v", err)
	}

	other := NewService(nil, &config.JWTConfig{Secret: "different", ExpirationHours: 1})
	if _, err := other.ValidateToken(token); err == nil {
		t.Error("token signed with another secret should fail validation")
	}
}

func TestValidateTokenExpired(t *testing.T) {
	s := NewService(nil, &config.JWTConfig{Secret: "test-secret", ExpirationHours: -1})
	user := &User{ID: uuid.New(), Email: "alice@example.com"}

	token, err := s.generateToken(user)
	if err != nil {
		t.Fatalf("generateToken: %v", err)
	}

	if _, err := newTestService().ValidateToken(token); err == nil {
		t.Error("expired token should fail validation")
	}
}

func TestValidateTokenGarbage(t *testing.T) {
	s := newTestService()
	if _, err := s.ValidateToken("not-a-jwt"); err == nil {
		t.Error("malformed token should fail validation")
	}
}

func TestRolePermissionSets(t *testing.T) {
	if len(AllPermissions) == 0 {
		t.Fatal("AllPermissions is empty")
	}

	isSubset := func(sub, super []string) bool {
		set := map[string]bool{}
		for _, p := range super {
			set[p] = true
		}
		for _, p := range sub {
			if !set[p] {
				return false
			}
		}
		return true
	}

	if !isSubset(EditorPermissions, AllPermissions) {
		t.Error("editor permissions must be a subset of all permissions")
	}
	if !isSubset(ViewerPermissions, EditorPermissions) {
		t.Error("viewer permissions must be a subset of editor permissions")
	}

	for _, p := range ViewerPermissions {
		if p == PermWorkspaceManage {
			t.Error("viewers must not manage workspaces")
		}
	}
}

func TestAuditLogRecord(t *testing.T) {
	userID := uuid.New()
	ip := "10.0.0.1"
	status := "success"
	entry := &AuditLog{
		UserID:       &userID,
		ActorType:    "user",
		EntityType:   "campaign",
		EntityID:     "abc",
		Action:       "campaign.send",
		IPAddress:    &ip,
		ResultStatus: &status,
		CreatedAt:    time.Now(),
	}

	rec := auditLogRecord(entry)

	groups := []filter.Group{{
		Conditions: []filter.Condition{
			{Field: "action", Operator: filter.OpContains, Value: "send"},
			{Field: "entity_type", Operator: filter.OpEquals, Value: "Campaign"},
		},
	}}

	if !filter.Evaluate(groups, rec, AuditLogFields) {
		t.Error("audit entry should match its own action and entity type")
	}

	noMatch := []filter.Group{{
		Conditions: []filter.Condition{
			{Field: "action", Operator: filter.OpEquals, Value: "user.login"},
		},
	}}
	if filter.Evaluate(noMatch, rec, AuditLogFields) {
		t.Error("audit entry should not match a different action")
	}
}
