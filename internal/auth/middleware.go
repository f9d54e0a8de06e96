package auth

import (
	"net/http"
	"strings"
)

// Middleware validates bearer tokens and enforces the role policy.
type Middleware struct {
	Secret []byte
	Policy Policy
}

// NewMiddleware constructs an auth middleware.
func NewMiddleware(secret []byte, policy Policy) *Middleware {
	return &Middleware{Secret: secret, Policy: policy}
}

// tenantScopeHeader lets a superadmin scope a request to one tenant, e.g.
// when inspecting a tenant's portfolio from the billing console. Other roles
// always act under the tenant in their token.
const tenantScopeHeader = "X-Tenant-Id"

// Wrap applies authentication and RBAC to the handler.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Policy.IsExempt(r) {
			next.ServeHTTP(w, r)
			return
		}

		required, ok := m.Policy.RequiredRole(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		token := extractBearer(r)
		if token == "" {
			deny(w, http.StatusUnauthorized, ErrUnauthorized)
			return
		}
		claims, err := ParseJWT(token, m.Secret)
		if err != nil {
			deny(w, http.StatusUnauthorized, ErrInvalidToken)
			return
		}
		role, _ := NormalizeRole(claims.Role)
		if !RoleAtLeast(role, required) {
			deny(w, http.StatusForbidden, ErrForbidden)
			return
		}

		tenantID := claims.TenantID
		if role == RoleSuperadmin {
			if scope := r.Header.Get(tenantScopeHeader); scope != "" {
				tenantID = scope
			}
		}
		ctx := WithIdentity(r.Context(), tenantID, role, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func deny(w http.ResponseWriter, status int, err error) {
	http.Error(w, err.Error(), status)
}

func extractBearer(r *http.Request) string {
	if r == nil {
		return ""
	}
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
