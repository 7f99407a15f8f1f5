package admins

import (
	"errors"
	"net/http"
	"strconv"

	"project/database"
	"project/middleware"
	"project/models"
	"project/utils"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// ListUsersHandler returns registered users with optional search and
// pagination.
func ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 200 {
		limit = 50
	}

	q := database.DB.Model(&models.User{})
	if search := r.URL.Query().Get("search"); search != "" {
		like := "%" + search + "%"
		q = q.Where("name LIKE ? OR email LIKE ?", like, like)
	}
	if status := r.URL.Query().Get("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Something went wrong"})
		return
	}

	var usersList []models.User
	if err := q.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&usersList).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Something went wrong"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Users fetched",
		Data: map[string]interface{}{
			"users": usersList,
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetUserHandler returns one user with wallet balances and recent activity.
func GetUserHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid user id"})
		return
	}

	var user models.User
	if err := database.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "User not found"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Something went wrong"})
		return
	}

	var recentTx []models.Transaction
	_ = database.DB.Where("user_id = ?", user.ID).Order("created_at DESC").Limit(10).Find(&recentTx).Error

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "User fetched",
		Data: map[string]interface{}{
			"user":                user,
			"recent_transactions": recentTx,
		},
	})
}

type userStatusPayload struct {
	Status string `json:"status" validate:"required"`
}

// SetUserStatusHandler suspends or reactivates an account. Suspended users
// cannot log in or refresh sessions.
func SetUserStatusHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid user id"})
		return
	}

	var payload userStatusPayload
	if err := middleware.ValidateJSON(w, r, &payload); err != nil {
		return
	}
	if payload.Status != "Active" && payload.Status != "Suspended" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Status must be Active or Suspended"})
		return
	}

	res := database.DB.Model(&models.User{}).Where("id = ?", id).Update("status", payload.Status)
	if res.Error != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Something went wrong"})
		return
	}
	if res.RowsAffected == 0 {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "User not found"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "User status updated"})
}
