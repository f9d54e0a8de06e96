package auth

import (
	"net/http"
	"strings"
)

// Policy determines required roles by request.
type Policy struct {
	ExemptPaths    map[string]struct{}
	ExemptPrefixes []string
}

// NewDefaultPolicy builds a default policy with exemptions.
func NewDefaultPolicy(exemptPaths []string, exemptPrefixes []string) Policy {
	set := make(map[string]struct{}, len(exemptPaths))
	for _, path := range exemptPaths {
		set[path] = struct{}{}
	}
	return Policy{ExemptPaths: set, ExemptPrefixes: exemptPrefixes}
}

// IsExempt returns true when a request should skip auth/RBAC.
func (p Policy) IsExempt(r *http.Request) bool {
	if r == nil {
		return true
	}
	if _, ok := p.ExemptPaths[r.URL.Path]; ok {
		return true
	}
	for _, prefix := range p.ExemptPrefixes {
		if strings.HasPrefix(r.URL.Path, prefix) {
			return true
		}
	}
	return false
}

// RequiredRole resolves required role for the request. Cobradores can read
// credits and clients and record payments; portfolio reports and schedule
// mutations need a manager, and credit approval/voiding needs an admin. The
// billing console is platform operator territory.
func (p Policy) RequiredRole(r *http.Request) (Role, bool) {
	if r == nil {
		return "", false
	}
	path := r.URL.Path
	method := r.Method

	switch {
	case strings.HasPrefix(path, "/api/v1/billing"):
		return RoleSuperadmin, true
	case path == "/api/v1/credits":
		if method == http.MethodPost {
			return RoleManager, true
		}
		return RoleCobrador, true
	case strings.HasPrefix(path, "/api/v1/credits/"):
		if strings.HasSuffix(path, "/payments") && method == http.MethodPost {
			return RoleCobrador, true
		}
		if strings.HasSuffix(path, "/status") {
			return RoleAdmin, true
		}
		if method == http.MethodGet {
			return RoleCobrador, true
		}
		return RoleManager, true
	case path == "/api/v1/clients" || strings.HasPrefix(path, "/api/v1/clients/"):
		if method == http.MethodGet {
			return RoleCobrador, true
		}
		return RoleManager, true
	case path == "/api/v1/collectors" || strings.HasPrefix(path, "/api/v1/collectors/"):
		if method == http.MethodGet {
			return RoleManager, true
		}
		return RoleAdmin, true
	case strings.HasPrefix(path, "/api/v1/reports"):
		return RoleManager, true
	}

	if strings.HasPrefix(path, "/api/") {
		if method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions {
			return RoleCobrador, true
		}
		return RoleManager, true
	}
	return "", false
}
