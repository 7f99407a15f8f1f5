package admins

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"project/database"
	"project/middleware"
	"project/models"
	"project/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type adminLoginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginHandler authenticates an admin and issues a short-lived access token.
// Admin sessions carry no refresh token; admins log in again when it expires.
func LoginHandler(w http.ResponseWriter, r *http.Request) {
	var payload adminLoginPayload
	if err := middleware.ValidateJSON(w, r, &payload); err != nil {
		return
	}
	payload.Email = strings.ToLower(strings.TrimSpace(payload.Email))

	var admin models.Admin
	if err := database.DB.Where("email = ?", payload.Email).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$invalidinvalidinvalidinvalidinvalidinval"), []byte(payload.Password))
			utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Invalid email or password"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Something went wrong"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(payload.Password)); err != nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Invalid email or password"})
		return
	}
	if !admin.IsActive {
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Account disabled"})
		return
	}

	token, err := utils.GenerateAccessTokenWithExpiry(admin.ID, admin.Role, time.Hour)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Something went wrong"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Login successful",
		Data: map[string]interface{}{
			"admin":        admin,
			"access_token": token,
		},
	})
}
