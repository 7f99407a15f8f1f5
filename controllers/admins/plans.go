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

type planPayload struct {
	Name         string  `json:"name" validate:"required"`
	MinAmount    float64 `json:"min_amount"`
	MaxAmount    float64 `json:"max_amount"`
	RoiRate      float64 `json:"roi_rate"`
	RoiInterval  string  `json:"roi_interval"`
	RoiType      string  `json:"roi_type"`
	NumOfPeriods int     `json:"num_of_periods"`
	Status       string  `json:"status"`
}

func (p *planPayload) validate() string {
	if p.MinAmount <= 0 || p.MaxAmount < p.MinAmount {
		return "min_amount must be positive and max_amount must be at least min_amount"
	}
	if p.RoiRate <= 0 {
		return "roi_rate must be greater than zero"
	}
	if p.NumOfPeriods < 1 {
		return "num_of_periods must be at least 1"
	}
	switch p.RoiInterval {
	case models.IntervalHourly, models.IntervalDaily, models.IntervalWeekly, models.IntervalMonthly:
	default:
		return "roi_interval must be hourly, daily, weekly or monthly"
	}
	switch p.RoiType {
	case models.RoiFlat, models.RoiCompounded:
	default:
		return "roi_type must be flat or compounded"
	}
	if p.Status != "" && p.Status != "Active" && p.Status != "Deactivated" {
		return "status must be Active or Deactivated"
	}
	return ""
}

// ListPlansHandler returns every plan, including deactivated ones.
func ListPlansHandler(w http.ResponseWriter, r *http.Request) {
	var plans []models.Plan
	if err := database.DB.Order("id ASC").Find(&plans).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Something went wrong"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Plans fetched", Data: plans})
}

// GetPlanHandler returns a single plan by id.
func GetPlanHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid plan id"})
		return
	}

	var plan models.Plan
	if err := database.DB.First(&plan, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Plan not found"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Something went wrong"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Plan fetched", Data: plan})
}

// CreatePlanHandler adds a plan to the catalog. DurationInDays is derived
// from the interval and period count rather than taken from the payload.
func CreatePlanHandler(w http.ResponseWriter, r *http.Request) {
	var payload planPayload
	if err := middleware.ValidateJSON(w, r, &payload); err != nil {
		return
	}
	if msg := payload.validate(); msg != "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: msg})
		return
	}

	status := payload.Status
	if status == "" {
		status = "Active"
	}
	plan := models.Plan{
		Name:           payload.Name,
		MinAmount:      payload.MinAmount,
		MaxAmount:      payload.MaxAmount,
		RoiRate:        payload.RoiRate,
		RoiInterval:    payload.RoiInterval,
		RoiType:        payload.RoiType,
		NumOfPeriods:   payload.NumOfPeriods,
		DurationInDays: models.DurationDays(payload.RoiInterval, payload.NumOfPeriods),
		Status:         status,
	}
	if err := database.DB.Create(&plan).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Could not create plan"})
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Plan created", Data: plan})
}

// UpdatePlanHandler edits a plan. Running investments are unaffected because
// their ROI terms were snapshotted at creation.
func UpdatePlanHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid plan id"})
		return
	}

	var payload planPayload
	if err := middleware.ValidateJSON(w, r, &payload); err != nil {
		return
	}
	if msg := payload.validate(); msg != "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: msg})
		return
	}

	var plan models.Plan
	if err := database.DB.First(&plan, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Plan not found"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Something went wrong"})
		return
	}

	plan.Name = payload.Name
	plan.MinAmount = payload.MinAmount
	plan.MaxAmount = payload.MaxAmount
	plan.RoiRate = payload.RoiRate
	plan.RoiInterval = payload.RoiInterval
	plan.RoiType = payload.RoiType
	plan.NumOfPeriods = payload.NumOfPeriods
	plan.DurationInDays = models.DurationDays(payload.RoiInterval, payload.NumOfPeriods)
	if payload.Status != "" {
		plan.Status = payload.Status
	}

	if err := database.DB.Save(&plan).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Could not update plan"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Plan updated", Data: plan})
}

// DeactivatePlanHandler retires a plan from the catalog. The row is kept so
// existing investments retain their plan reference.
func DeactivatePlanHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid plan id"})
		return
	}

	res := database.DB.Model(&models.Plan{}).Where("id = ?", id).Update("status", "Deactivated")
	if res.Error != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Something went wrong"})
		return
	}
	if res.RowsAffected == 0 {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Plan not found"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Plan deactivated"})
}
