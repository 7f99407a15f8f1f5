package auth

import (
	"log"
	"net/http"

	"project/database"
	"project/middleware"
	"project/models"
	"project/utils"
)

type refreshPayload struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshHandler rotates a refresh token: the presented token is revoked and a
// fresh access/refresh pair is issued.
func RefreshHandler(w http.ResponseWriter, r *http.Request) {
	var payload refreshPayload
	if err := middleware.ValidateJSON(w, r, &payload); err != nil {
		return
	}

	rt, err := utils.ValidateRefreshToken(payload.RefreshToken)
	if err != nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Invalid or expired refresh token"})
		return
	}

	var user models.User
	if err := database.DB.First(&user, rt.UserID).Error; err != nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Invalid or expired refresh token"})
		return
	}
	if user.Status == "Suspended" {
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Account suspended, contact support"})
		return
	}

	if err := database.DB.Model(&models.RefreshToken{}).Where("id = ?", rt.ID).Update("revoked", true).Error; err != nil {
		log.Printf("[refresh] revoke failed for token %s: %v", rt.ID, err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Something went wrong"})
		return
	}

	accessToken, err := utils.GenerateAccessToken(user.ID, "user")
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Something went wrong"})
		return
	}
	newRefresh, err := utils.GenerateRefreshToken(user.ID)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Something went wrong"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Token refreshed",
		Data: map[string]interface{}{
			"access_token":  accessToken,
			"refresh_token": newRefresh,
		},
	})
}
