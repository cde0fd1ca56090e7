package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"grc/access"
	"grc/store"
	"grc/utils"
)

var st store.Store

// Init hands the middleware its store. Called once from main before the
// router is built.
func Init(s store.Store) {
	st = s
}

// AuthMiddleware validates the bearer token, re-checks the user against
// the store, and stamps the request context with the tenant scope every
// handler reads through access.FromContext.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// WebSocket upgrades authenticate via query token in the handler
		if r.Header.Get("Upgrade") == "websocket" {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.RespondWithError(w, http.StatusUnauthorized, "Missing or invalid Authorization header")
			return
		}

		claims, err := utils.ValidateJWT(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			log.Debug().Err(err).Msg("jwt validation failed")
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID format")
			return
		}
		orgID, err := primitive.ObjectIDFromHex(claims.OrganizationID)
		if err != nil || orgID.IsZero() {
			utils.RespondWithError(w, http.StatusBadRequest, "Token has no organization")
			return
		}

		user, err := st.FindUser(r.Context(), orgID, userID)
		if err != nil {
			log.Debug().Err(err).Str("userID", claims.UserID).Msg("token user not found")
			utils.RespondWithError(w, http.StatusUnauthorized, "User not found")
			return
		}

		ctx := context.WithValue(r.Context(), access.CtxUserID, user.ID.Hex())
		ctx = context.WithValue(ctx, access.CtxUserName, user.DisplayName())
		ctx = context.WithValue(ctx, access.CtxUserRole, user.Role)
		ctx = context.WithValue(ctx, access.CtxOrgID, user.OrganizationID.Hex())

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
