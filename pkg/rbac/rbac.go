// Package rbac defines the role model and the authenticated principal
// carried through request contexts.
package rbac

import (
	"context"
	"fmt"
)

// Role is a closed set: admin and worker. Admin subsumes every worker
// permission.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleWorker Role = "worker"
)

// ParseRole validates a raw role string against the closed set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleWorker:
		return Role(s), nil
	default:
		return "", fmt.Errorf("rbac: unknown role %q", s)
	}
}

// Allows reports whether role satisfies any of the allowed roles.
// Admin passes every check; worker passes only worker checks.
func Allows(role Role, allowed ...Role) bool {
	if role == RoleAdmin {
		return true
	}
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}

// Principal is the identity snapshot captured at login. It is stored in the
// session and does not change when the backing user record changes.
type Principal struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

type ctxKey struct{}

// WithPrincipal attaches the authenticated principal to the context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// FromCtx retrieves the authenticated principal, if any.
func FromCtx(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	return p, ok
}
