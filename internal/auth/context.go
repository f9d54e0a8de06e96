package auth

import "context"

// identity is the verified caller attached to a request context.
type identity struct {
	tenantID string
	role     Role
	subject  string
}

type identityKey struct{}

// WithIdentity stores the verified caller in context.
func WithIdentity(ctx context.Context, tenantID string, role Role, subject string) context.Context {
	return context.WithValue(ctx, identityKey{}, identity{
		tenantID: tenantID,
		role:     role,
		subject:  subject,
	})
}

func identityFromContext(ctx context.Context) identity {
	if ctx == nil {
		return identity{}
	}
	id, _ := ctx.Value(identityKey{}).(identity)
	return id
}

// TenantIDFromContext returns the caller's tenant id, empty when unauthenticated.
func TenantIDFromContext(ctx context.Context) string {
	return identityFromContext(ctx).tenantID
}

// RoleFromContext returns the caller's role, empty when unauthenticated.
func RoleFromContext(ctx context.Context) Role {
	return identityFromContext(ctx).role
}

// SubjectFromContext returns the caller's subject, empty when unauthenticated.
func SubjectFromContext(ctx context.Context) string {
	return identityFromContext(ctx).subject
}
