package auth

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"project/database"
	"project/models"
	"project/utils"
)

type logoutPayload struct {
	RefreshToken string `json:"refresh_token"`
}

// LogoutHandler revokes the presented refresh token and blacklists the access
// token's jti for the remainder of its lifetime. The body is optional: a
// logout with only the bearer token still revokes the access token.
func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	var payload logoutPayload
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&payload)
	}

	if payload.RefreshToken != "" {
		database.DB.Model(&models.RefreshToken{}).
			Where("id = ?", payload.RefreshToken).
			Update("revoked", true)
	}

	if authz := r.Header.Get("Authorization"); strings.HasPrefix(authz, "Bearer ") {
		tokenStr := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
		if _, claims, err := utils.ValidateAccessToken(tokenStr); err == nil {
			if jti, ok := claims["jti"].(string); ok && jti != "" {
				ttl := 15 * time.Minute
				if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
					if remaining := time.Until(exp.Time); remaining > 0 {
						ttl = remaining
					}
				}
				_ = utils.RevokeJTI(jti, ttl)
			}
		}
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Logged out"})
}

// LogoutAllHandler revokes every refresh token the authenticated user holds,
// ending all of their sessions.
func LogoutAllHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	res := database.DB.Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Update("revoked", true)
	if res.Error != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Something went wrong"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "All sessions ended",
		Data:    map[string]interface{}{"sessions_revoked": res.RowsAffected},
	})
}
