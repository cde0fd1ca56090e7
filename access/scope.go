// Package access carries the tenant scope through every request and
// decides per-user event visibility.
package access

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"grc/apperr"
)

// Context keys set by the auth middleware.
const (
	CtxUserID   = "userID"
	CtxUserName = "userName"
	CtxUserRole = "userRole"
	CtxOrgID    = "orgID"
)

// Scope identifies the caller: the tenant every query is confined to
// plus the acting user. Passed by value; never stored globally.
type Scope struct {
	OrgID    primitive.ObjectID
	UserID   primitive.ObjectID
	UserName string
	Role     string
}

// FromContext extracts the scope the auth middleware attached. A
// missing or malformed tenant fails with the missing-tenant kind.
func FromContext(ctx context.Context) (Scope, error) {
	orgStr, ok := ctx.Value(CtxOrgID).(string)
	if !ok || orgStr == "" {
		return Scope{}, apperr.MissingTenant("no tenant in request context")
	}
	orgID, err := primitive.ObjectIDFromHex(orgStr)
	if err != nil {
		return Scope{}, apperr.MissingTenant("malformed tenant id in request context")
	}

	scope := Scope{OrgID: orgID}
	if userStr, ok := ctx.Value(CtxUserID).(string); ok {
		if userID, err := primitive.ObjectIDFromHex(userStr); err == nil {
			scope.UserID = userID
		}
	}
	if name, ok := ctx.Value(CtxUserName).(string); ok {
		scope.UserName = name
	}
	if role, ok := ctx.Value(CtxUserRole).(string); ok {
		scope.Role = role
	}
	return scope, nil
}

// WithScope attaches a scope to a context, mirroring what the auth
// middleware does. Used by background jobs and tests.
func WithScope(ctx context.Context, s Scope) context.Context {
	ctx = context.WithValue(ctx, CtxOrgID, s.OrgID.Hex())
	ctx = context.WithValue(ctx, CtxUserID, s.UserID.Hex())
	ctx = context.WithValue(ctx, CtxUserName, s.UserName)
	ctx = context.WithValue(ctx, CtxUserRole, s.Role)
	return ctx
}
