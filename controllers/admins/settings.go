package admins

import (
	"net/http"

	"project/database"
	"project/middleware"
	"project/models"
	"project/utils"

	"gorm.io/gorm"
)

// GetSettingsHandler returns the platform settings row.
func GetSettingsHandler(w http.ResponseWriter, r *http.Request) {
	setting, err := models.GetSetting(database.DB)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Something went wrong"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Settings fetched", Data: setting})
}

type settingsPayload struct {
	Name           string  `json:"name"`
	Company        string  `json:"company"`
	SignupBonus    float64 `json:"signup_bonus"`
	ReferralBonus  float64 `json:"referral_bonus"`
	MinWithdraw    float64 `json:"min_withdraw"`
	MaxWithdraw    float64 `json:"max_withdraw"`
	Maintenance    bool    `json:"maintenance"`
	ClosedRegister bool    `json:"closed_register"`
}

// UpdateSettingsHandler replaces the platform settings. Changes take effect
// on the next request that reads them; running investments are unaffected.
func UpdateSettingsHandler(w http.ResponseWriter, r *http.Request) {
	var payload settingsPayload
	if err := middleware.ValidateJSON(w, r, &payload); err != nil {
		return
	}
	if payload.SignupBonus < 0 || payload.ReferralBonus < 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Bonuses cannot be negative"})
		return
	}
	if payload.MinWithdraw < 0 || payload.MaxWithdraw < payload.MinWithdraw {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Withdrawal limits are invalid"})
		return
	}

	var setting models.Setting
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Take(&setting).Error; err != nil && err != gorm.ErrRecordNotFound {
			return err
		}
		setting.Name = payload.Name
		setting.Company = payload.Company
		setting.SignupBonus = payload.SignupBonus
		setting.ReferralBonus = payload.ReferralBonus
		setting.MinWithdraw = payload.MinWithdraw
		setting.MaxWithdraw = payload.MaxWithdraw
		setting.Maintenance = payload.Maintenance
		setting.ClosedRegister = payload.ClosedRegister
		return tx.Save(&setting).Error
	})
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Could not update settings"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Settings updated", Data: setting})
}
