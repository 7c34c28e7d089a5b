package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/beaconcdp/beacon/internal/core/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Helper to create test context
func createTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)
	return c, w
}

func TestGetUserID_Valid(t *testing.T) {
	c, _ := createTestContext()
	expectedID := uuid.New()
	c.Set(ContextUserID, expectedID)

	id, ok := GetUserID(c)
	if !ok {
		t.Error("GetUserID should return true when user_id is set")
	}
	if id != expectedID {
		t.Errorf("GetUserID returned %v, expected %v", id, expectedID)
	}
}

func TestGetUserID_NotSet(t *testing.T) {
	c, _ := createTestContext()

	_, ok := GetUserID(c)
	if ok {
		t.Error("GetUserID should return false when user_id is not set")
	}
}

func TestGetWorkspaceID_Valid(t *testing.T) {
	c, _ := createTestContext()
	expectedID := uuid.New()
	c.Set(ContextWorkspaceID, expectedID)

	id, ok := GetWorkspaceID(c)
	if !ok {
		t.Error("GetWorkspaceID should return true when workspace_id is set")
	}
	if id != expectedID {
		t.Errorf("GetWorkspaceID returned %v, expected %v", id, expectedID)
	}
}

func TestGetWorkspaceID_InvalidType(t *testing.T) {
	c, _ := createTestContext()
	c.Set(ContextWorkspaceID, "not-a-uuid")

	_, ok := GetWorkspaceID(c)
	if ok {
		t.Error("GetWorkspaceID should return false for invalid type")
	}
}

func TestGetPermissions(t *testing.T) {
	c, _ := createTestContext()
	c.Set(ContextPermissions, []string{auth.PermContactRead})

	perms := GetPermissions(c)
	if len(perms) != 1 || perms[0] != auth.PermContactRead {
		t.Errorf("GetPermissions returned %v", perms)
	}
}

func TestGetPermissions_NotSet(t *testing.T) {
	c, _ := createTestContext()

	if perms := GetPermissions(c); perms != nil {
		t.Errorf("GetPermissions should return nil when not set, got %v", perms)
	}
}

func TestRequirePermission_Allowed(t *testing.T) {
	m := NewAuthMiddleware(nil)
	c, w := createTestContext()
	c.Set(ContextPermissions, []string{auth.PermContactRead, auth.PermContactWrite})

	m.RequirePermission(auth.PermContactWrite)(c)

	if c.IsAborted() {
		t.Errorf("request should not be aborted, status %d", w.Code)
	}
}

func TestRequirePermission_Denied(t *testing.T) {
	m := NewAuthMiddleware(nil)
	c, w := createTestContext()
	c.Set(ContextPermissions, []string{auth.PermContactRead})

	m.RequirePermission(auth.PermContactDelete)(c)

	if !c.IsAborted() {
		t.Error("request should be aborted without the permission")
	}
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, expected %d", w.Code, http.StatusForbidden)
	}
}

func TestRequirePermission_NoPermissionsSet(t *testing.T) {
	m := NewAuthMiddleware(nil)
	c, w := createTestContext()

	m.RequirePermission(auth.PermContactRead)(c)

	if !c.IsAborted() {
		t.Error("request should be aborted when no permissions are set")
	}
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, expected %d", w.Code, http.StatusForbidden)
	}
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	m := NewAuthMiddleware(nil)
	c, w := createTestContext()

	m.Authenticate()(c)

	if !c.IsAborted() {
		t.Error("request without authorization should be aborted")
	}
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, expected %d", w.Code, http.StatusUnauthorized)
	}
}

func TestAuthenticate_MalformedHeader(t *testing.T) {
	m := NewAuthMiddleware(nil)
	c, w := createTestContext()
	c.Request.Header.Set("Authorization", "garbage")

	m.Authenticate()(c)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, expected %d", w.Code, http.StatusUnauthorized)
	}
}

func TestAuthenticate_UnsupportedScheme(t *testing.T) {
	m := NewAuthMiddleware(nil)
	c, w := createTestContext()
	c.Request.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

	m.Authenticate()(c)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, expected %d", w.Code, http.StatusUnauthorized)
	}
}

func TestAuditMiddleware(t *testing.T) {
	c, _ := createTestContext()
	c.Request.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	c.Request.Header.Set("User-Agent", "test-agent/1.0")

	AuditMiddleware()(c)

	if ip := GetIPAddress(c); ip != "203.0.113.7" {
		t.Errorf("ip = %q, expected first forwarded address", ip)
	}
	if ua := GetUserAgent(c); ua != "test-agent/1.0" {
		t.Errorf("user agent = %q", ua)
	}
}
