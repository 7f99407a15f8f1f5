package users

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"project/database"
	"project/ledger"
	"project/middleware"
	"project/models"
	"project/utils"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type createInvestmentPayload struct {
	PlanID uint    `json:"plan_id"`
	Amount float64 `json:"amount"`
}

var errInsufficientBalance = errors.New("insufficient_balance")

// CreateInvestmentHandler commits funds from the main wallet into a plan. The
// wallet deduction, the investment row and its audit transaction commit in a
// single database transaction. The plan's ROI terms are snapshotted onto the
// investment so later plan edits never change a running investment.
func CreateInvestmentHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	var payload createInvestmentPayload
	if err := middleware.ValidateJSON(w, r, &payload); err != nil {
		return
	}
	if payload.PlanID == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "plan_id is required"})
		return
	}

	var plan models.Plan
	if err := database.DB.Where("id = ? AND status = ?", payload.PlanID, "Active").First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Plan not found"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Something went wrong"})
		return
	}

	amount := utils.Round2(payload.Amount)
	if amount < plan.MinAmount || amount > plan.MaxAmount {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Amount is outside the plan's limits"})
		return
	}

	now := time.Now()
	investment := models.Investment{
		UserID:        userID,
		PlanID:        plan.ID,
		Amount:        amount,
		InitialAmount: amount,
		RoiRate:       plan.RoiRate,
		RoiInterval:   plan.RoiInterval,
		RoiType:       plan.RoiType,
		StartDate:     now,
		EndDate:       now.Add(models.IntervalDuration(plan.RoiInterval) * time.Duration(plan.NumOfPeriods)),
		Reference:     utils.GenerateInvestmentReference(userID),
		Status:        models.InvestmentActive,
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		// Conditional deduction: only succeeds when the balance covers the
		// amount, so concurrent purchases cannot overdraw.
		res := tx.Model(&models.User{}).
			Where("id = ? AND main_wallet >= ?", userID, amount).
			UpdateColumn("main_wallet", gorm.Expr("main_wallet - ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errInsufficientBalance
		}

		if err := tx.Create(&investment).Error; err != nil {
			return err
		}

		planID := plan.ID
		msg := "Investment in " + plan.Name
		return ledger.Record(tx, &models.Transaction{
			UserID:  userID,
			PlanID:  &planID,
			Type:    models.TxInvestment,
			Amount:  amount,
			Message: &msg,
			Status:  models.TxCompleted,
		})
	})
	if err != nil {
		if errors.Is(err, errInsufficientBalance) {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Insufficient balance"})
			return
		}
		log.Printf("[investment] create failed for user %d plan %d: %v", userID, plan.ID, err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Could not create investment"})
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Investment created", Data: investment})
}

// ListInvestmentsHandler returns the caller's investments, newest first.
func ListInvestmentsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	q := database.DB.Where("user_id = ?", userID)
	if status := r.URL.Query().Get("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var investments []models.Investment
	if err := q.Order("created_at DESC").Find(&investments).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Something went wrong"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Investments fetched", Data: investments})
}

// GetInvestmentHandler returns one of the caller's investments by id.
func GetInvestmentHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid investment id"})
		return
	}

	var investment models.Investment
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&investment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Investment not found"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Something went wrong"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Investment fetched", Data: investment})
}
