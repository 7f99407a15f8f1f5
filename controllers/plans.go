package controllers

import (
	"net/http"

	"project/database"
	"project/models"
	"project/utils"
)

// ListActivePlansHandler returns the active plan catalog. This endpoint is
// public so the marketing site can render plans without a session.
func ListActivePlansHandler(w http.ResponseWriter, r *http.Request) {
	var plans []models.Plan
	if err := database.DB.Where("status = ?", "Active").Order("min_amount ASC").Find(&plans).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Something went wrong"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Plans fetched", Data: plans})
}
