package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestAuthMiddleware_NoToken(t *testing.T) {
	secret := []byte("test-secret")
	policy := NewDefaultPolicy(nil, nil)
	mw := NewMiddleware(secret, policy)
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/credits", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestAuthMiddleware_CobradorForbiddenCreditCreate(t *testing.T) {
	secret := []byte("test-secret")
	token := mustToken(t, secret, "tenant-a", "cobrador")
	policy := NewDefaultPolicy(nil, nil)
	mw := NewMiddleware(secret, policy)
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/credits", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
}

func TestAuthMiddleware_CobradorRecordsPayment(t *testing.T) {
	secret := []byte("test-secret")
	token := mustToken(t, secret, "tenant-a", "cobrador")
	policy := NewDefaultPolicy(nil, nil)
	mw := NewMiddleware(secret, policy)
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/credits/credit-1/payments", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestAuthMiddleware_AdminForbiddenBillingConsole(t *testing.T) {
	secret := []byte("test-secret")
	token := mustToken(t, secret, "tenant-a", "admin")
	policy := NewDefaultPolicy(nil, nil)
	mw := NewMiddleware(secret, policy)
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/billing/subscriptions", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
}

func TestAuthMiddleware_IdentityInContext(t *testing.T) {
	secret := []byte("test-secret")
	token := mustToken(t, secret, "tenant-a", "manager")
	policy := NewDefaultPolicy(nil, nil)
	mw := NewMiddleware(secret, policy)
	var gotTenant string
	var gotRole Role
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTenant = TenantIDFromContext(r.Context())
		gotRole = RoleFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if gotTenant != "tenant-a" {
		t.Fatalf("expected tenant-a in context, got %q", gotTenant)
	}
	if gotRole != RoleManager {
		t.Fatalf("expected manager role in context, got %q", gotRole)
	}
}

func TestAuthMiddleware_MalformedToken(t *testing.T) {
	secret := []byte("test-secret")
	policy := NewDefaultPolicy(nil, nil)
	mw := NewMiddleware(secret, policy)
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/credits", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "invalid token") {
		t.Fatalf("expected invalid token body, got %q", resp.Body.String())
	}
}

func TestAuthMiddleware_SuperadminTenantScope(t *testing.T) {
	secret := []byte("test-secret")
	token := mustToken(t, secret, "", "superadmin")
	policy := NewDefaultPolicy(nil, nil)
	mw := NewMiddleware(secret, policy)
	var gotTenant string
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTenant = TenantIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/credits", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Tenant-Id", "tenant-b")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if gotTenant != "tenant-b" {
		t.Fatalf("expected scoped tenant-b, got %q", gotTenant)
	}
}

func TestAuthMiddleware_TenantScopeIgnoredForManagers(t *testing.T) {
	secret := []byte("test-secret")
	token := mustToken(t, secret, "tenant-a", "manager")
	policy := NewDefaultPolicy(nil, nil)
	mw := NewMiddleware(secret, policy)
	var gotTenant string
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTenant = TenantIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/credits", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Tenant-Id", "tenant-b")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if gotTenant != "tenant-a" {
		t.Fatalf("expected token tenant-a, got %q", gotTenant)
	}
}

func TestPolicy_ReportsRequireManager(t *testing.T) {
	policy := NewDefaultPolicy(nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/portfolio", nil)
	role, ok := policy.RequiredRole(req)
	if !ok {
		t.Fatalf("expected reports to be role-gated")
	}
	if role != RoleManager {
		t.Fatalf("expected manager gate, got %q", role)
	}
}

func mustToken(t *testing.T, secret []byte, tenantID, role string) string {
	t.Helper()
	claims := Claims{
		TenantID: tenantID,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}
