package users

import (
	"net/http"

	"project/database"
	"project/models"
	"project/utils"
)

type referralEntry struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	JoinedAt string `json:"joined_at"`
}

// ReferralsHandler lists the users the caller referred and the total referral
// bonus earned from them.
func ReferralsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	var referred []models.User
	if err := database.DB.Where("referred_by = ?", userID).Order("created_at DESC").Find(&referred).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Something went wrong"})
		return
	}

	entries := make([]referralEntry, 0, len(referred))
	for _, u := range referred {
		entries = append(entries, referralEntry{
			ID:       u.ID,
			Name:     u.Name,
			JoinedAt: u.CreatedAt.Format("2006-01-02"),
		})
	}

	var totalBonus float64
	row := database.DB.Model(&models.Transaction{}).
		Where("user_id = ? AND type = ? AND bonus_type = ? AND status = ?",
			userID, models.TxBonus, models.BonusReferral, models.TxCompleted).
		Select("COALESCE(SUM(amount), 0)").Row()
	_ = row.Scan(&totalBonus)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Referrals fetched",
		Data: map[string]interface{}{
			"referrals":   entries,
			"count":       len(entries),
			"total_bonus": totalBonus,
		},
	})
}
