package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"project/database"
	"project/ledger"
	"project/middleware"
	"project/models"
	"project/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type registerPayload struct {
	Name            string `json:"name" validate:"required,nameok"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,pwdmin"`
	ConfirmPassword string `json:"password_confirmation" validate:"required,eqfield=Password"`
	ReferralCode    string `json:"referral_code"`
}

const referralCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// newReferralCode generates candidate referral codes; a variable so tests can
// force collisions.
var newReferralCode = func(n int) string {
	buf := make([]byte, n)
	_, _ = rand.Read(buf)
	out := make([]byte, n)
	for i, c := range buf {
		out[i] = referralCodeAlphabet[int(c)%len(referralCodeAlphabet)]
	}
	return string(out)
}

var errReferralCodesExhausted = errors.New("referral code generation exhausted")

func isDuplicateKeyError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint")
}

// RegisterHandler creates a user account. The user row, the signup bonus and
// the optional referral bonus commit in one database transaction so a partial
// registration can never leave a bonus behind.
func RegisterHandler(w http.ResponseWriter, r *http.Request) {
	setting, err := models.GetSetting(database.DB)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Something went wrong"})
		return
	}
	if setting.Maintenance {
		utils.WriteJSON(w, http.StatusServiceUnavailable, utils.APIResponse{Success: false, Message: "Service under maintenance, please try again later"})
		return
	}
	if setting.ClosedRegister {
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Registration is currently closed"})
		return
	}

	var payload registerPayload
	if err := middleware.ValidateJSON(w, r, &payload); err != nil {
		return
	}
	payload.Email = strings.ToLower(strings.TrimSpace(payload.Email))
	payload.Name = strings.TrimSpace(payload.Name)

	var existing models.User
	if err := database.DB.Where("email = ?", payload.Email).First(&existing).Error; err == nil {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Email is already registered"})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Something went wrong"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Something went wrong"})
		return
	}

	// Resolve the referrer before opening the transaction. An unknown code is
	// not an error: registration proceeds, no referral bonus is paid.
	var referrer *models.User
	if code := strings.TrimSpace(payload.ReferralCode); code != "" {
		var ref models.User
		if err := database.DB.Where("referral_code = ?", strings.ToUpper(code)).First(&ref).Error; err == nil {
			referrer = &ref
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Something went wrong"})
			return
		}
	}

	user := models.User{
		Name:     payload.Name,
		Email:    payload.Email,
		Password: string(hashed),
	}
	if referrer != nil {
		user.ReferredBy = &referrer.ID
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		for attempt := 0; ; attempt++ {
			user.ReferralCode = newReferralCode(8)
			err := tx.Create(&user).Error
			if err == nil {
				break
			}
			if strings.Contains(err.Error(), "referral_code") {
				if attempt < 5 {
					continue
				}
				return errReferralCodesExhausted
			}
			return err
		}

		if setting.SignupBonus > 0 {
			bonusType := models.BonusSignup
			msg := "Signup bonus"
			if err := ledger.Record(tx, &models.Transaction{
				UserID:    user.ID,
				Type:      models.TxBonus,
				BonusType: &bonusType,
				Amount:    setting.SignupBonus,
				Message:   &msg,
				Status:    models.TxCompleted,
			}); err != nil {
				return fmt.Errorf("signup bonus: %w", err)
			}
		}

		if referrer != nil && setting.ReferralBonus > 0 {
			bonusType := models.BonusReferral
			msg := fmt.Sprintf("Referral bonus for inviting %s", user.Name)
			if err := ledger.Record(tx, &models.Transaction{
				UserID:    referrer.ID,
				Type:      models.TxBonus,
				BonusType: &bonusType,
				Amount:    setting.ReferralBonus,
				Message:   &msg,
				Status:    models.TxCompleted,
			}); err != nil {
				return fmt.Errorf("referral bonus: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		log.Printf("[register] failed for %s: %v", payload.Email, err)
		if errors.Is(err, errReferralCodesExhausted) {
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Registration failed, please try again"})
			return
		}
		// a concurrent registration can slip past the pre-check; only an
		// email-key violation maps to conflict
		if isDuplicateKeyError(err) && strings.Contains(err.Error(), "email") {
			utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Email is already registered"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Registration failed"})
		return
	}

	// re-read so the response carries the bonus-credited wallet balances
	if err := database.DB.First(&user, user.ID).Error; err != nil {
		log.Printf("[register] reload failed for user %d: %v", user.ID, err)
	}

	accessToken, err := utils.GenerateAccessToken(user.ID, "user")
	if err != nil {
		log.Printf("[register] token issue failed for user %d: %v", user.ID, err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Something went wrong"})
		return
	}
	refreshToken, err := utils.GenerateRefreshToken(user.ID)
	if err != nil {
		log.Printf("[register] refresh token failed for user %d: %v", user.ID, err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Something went wrong"})
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "Registration successful",
		Data: map[string]interface{}{
			"user":          user,
			"access_token":  accessToken,
			"refresh_token": refreshToken,
		},
	})
}
