package users

import (
	"net/http"
	"strconv"

	"project/database"
	"project/ledger"
	"project/middleware"
	"project/models"
	"project/utils"

	"gorm.io/gorm"
)

type createTransactionPayload struct {
	Type   string  `json:"type" validate:"required"`
	Amount float64 `json:"amount"`
}

// CreateTransactionHandler opens a Pending deposit or withdrawal. Pending
// rows never touch wallets; the balance moves when an admin settles the
// transaction as Completed.
func CreateTransactionHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	var payload createTransactionPayload
	if err := middleware.ValidateJSON(w, r, &payload); err != nil {
		return
	}

	if payload.Type != models.TxDeposit && payload.Type != models.TxWithdrawal {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Type must be deposit or withdrawal"})
		return
	}
	if payload.Amount <= 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Amount must be greater than zero"})
		return
	}
	amount := utils.Round2(payload.Amount)

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	if payload.Type == models.TxWithdrawal {
		setting, err := models.GetSetting(database.DB)
		if err != nil {
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Something went wrong"})
			return
		}
		if user.KycStatus != "verified" {
			utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "KYC verification is required for withdrawals"})
			return
		}
		if amount < setting.MinWithdraw {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Amount is below the minimum withdrawal"})
			return
		}
		if amount > setting.MaxWithdraw {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Amount exceeds the maximum withdrawal"})
			return
		}
		// Early rejection only. The settlement re-checks the balance
		// atomically, so this is a UX guard, not the funds check.
		if user.MainWallet < amount {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Insufficient balance"})
			return
		}
	}

	trx := models.Transaction{
		UserID: userID,
		Type:   payload.Type,
		Amount: amount,
		Status: models.TxPending,
	}
	if err := database.DB.Transaction(func(tx *gorm.DB) error {
		return ledger.Record(tx, &trx)
	}); err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Could not create transaction"})
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Transaction submitted", Data: trx})
}

// ListTransactionsHandler returns the caller's transaction history, newest
// first, with optional type/status filters and pagination.
func ListTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	q := database.DB.Model(&models.Transaction{}).Where("user_id = ?", userID)
	if typ := r.URL.Query().Get("type"); typ != "" {
		q = q.Where("type = ?", typ)
	}
	if status := r.URL.Query().Get("status"); status != "" {
		q = q.Where("status = ?", status)
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

// BalancesHandler returns the caller's wallet balances.
func BalancesHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Balances fetched",
		Data: map[string]interface{}{
			"main_wallet":     user.MainWallet,
			"profit_wallet":   user.ProfitWallet,
			"account_balance": utils.Round2(user.MainWallet + user.ProfitWallet),
		},
	})
}
