package admins

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"project/database"
	"project/ledger"
	"project/middleware"
	"project/models"
	"project/utils"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// ListTransactionsHandler returns transactions across all users, newest
// first, with optional filters and pagination.
func ListTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 200 {
		limit = 50
	}

	q := database.DB.Model(&models.Transaction{})
	if typ := r.URL.Query().Get("type"); typ != "" {
		q = q.Where("type = ?", typ)
	}
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

	var txs []models.Transaction
	if err := q.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&txs).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Something went wrong"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Transactions fetched",
		Data: map[string]interface{}{
			"transactions": txs,
			"page":         page,
			"limit":        limit,
			"total":        total,
		},
	})
}

type settlePayload struct {
	Status string `json:"status" validate:"required"`
}

// SettleTransactionHandler moves a pending transaction into a terminal state.
// Completing a deposit credits the main wallet; completing a withdrawal
// performs the balance-checked deduction. Terminal transactions cannot be
// settled again.
func SettleTransactionHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid transaction id"})
		return
	}

	var payload settlePayload
	if err := middleware.ValidateJSON(w, r, &payload); err != nil {
		return
	}
	if payload.Status != models.TxCompleted && payload.Status != models.TxFailed {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Status must be Completed or Failed"})
		return
	}

	var trx models.Transaction
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&trx, id).Error; err != nil {
			return err
		}
		return ledger.Settle(tx, &trx, payload.Status)
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Transaction not found"})
		case errors.Is(err, ledger.ErrTerminalState):
			utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Transaction is already settled"})
		case errors.Is(err, ledger.ErrInsufficientFunds):
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "User balance cannot cover this withdrawal"})
		default:
			log.Printf("[settle] transaction %d -> %s failed: %v", id, payload.Status, err)
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Settlement failed"})
		}
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Transaction settled", Data: trx})
}
