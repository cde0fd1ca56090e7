// handlers/auth_handler.go
package handlers

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"grc/access"
	"grc/utils"
)

// Login handles user authentication
func Login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := utils.ParseJSON(r, &creds); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	creds.Email = strings.TrimSpace(creds.Email)
	if creds.Email == "" || !strings.Contains(creds.Email, "@") {
		utils.RespondWithError(w, http.StatusBadRequest, "Valid email is required")
		return
	}
	if creds.Password == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Password is required")
		return
	}

	user, err := st.FindUserByEmail(r.Context(), creds.Email)
	if err != nil || !utils.CheckPasswordHash(creds.Password, user.PasswordHash) {
		log.Debug().Str("email", creds.Email).Msg("login rejected")
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := utils.GenerateJWT(user.ID.Hex(), user.DisplayName(), user.Role, user.OrganizationID.Hex())
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not create session")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user": map[string]string{
			"id":             user.ID.Hex(),
			"name":           user.DisplayName(),
			"email":          user.Email,
			"role":           user.Role,
			"organizationId": user.OrganizationID.Hex(),
		},
	})
}

// ValidateToken confirms a bearer token still maps to a live user.
func ValidateToken(w http.ResponseWriter, r *http.Request) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		utils.RespondWithError(w, http.StatusUnauthorized, "Missing or invalid Authorization header")
		return
	}
	claims, err := utils.ValidateJWT(strings.TrimPrefix(authHeader, "Bearer "))
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"valid":          true,
		"userID":         claims.UserID,
		"name":           claims.Name,
		"role":           claims.Role,
		"organizationId": claims.OrganizationID,
	})
}

// GetCurrentUser returns the authenticated user's profile.
func GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	scope, err := access.FromContext(r.Context())
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}

	user, err := st.FindUser(r.Context(), scope.OrgID, scope.UserID)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{
		"id":             user.ID.Hex(),
		"name":           user.DisplayName(),
		"email":          user.Email,
		"role":           user.Role,
		"organizationId": user.OrganizationID.Hex(),
	})
}
