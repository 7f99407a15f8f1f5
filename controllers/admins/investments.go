package admins

import (
	"net/http"
	"strconv"

	"project/database"
	"project/models"
	"project/utils"
)

// ListInvestmentsHandler returns investments across all users with optional
// status/user filters and pagination.
func ListInvestmentsHandler(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 200 {
		limit = 50
	}

	q := database.DB.Model(&models.Investment{})
	if status := r.URL.Query().Get("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if userID := r.URL.Query().Get("user_id"); userID != "" {
		q = q.Where("user_id = ?", userID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Something went wrong"})
		return
	}

	var investments []models.Investment
	if err := q.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&investments).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Something went wrong"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Investments fetched",
		Data: map[string]interface{}{
			"investments": investments,
			"page":        page,
			"limit":       limit,
			"total":       total,
		},
	})
}
