package models

import "time"

// Transaction statuses. Pending is the only non-terminal state.
const (
	TxPending   = "Pending"
	TxCompleted = "Completed"
	TxFailed    = "Failed"
)

// Transaction types.
const (
	TxDeposit    = "deposit"
	TxWithdrawal = "withdrawal"
	TxInvestment = "investment"
	TxProfit     = "profit"
	TxRoi        = "roi"
	TxBonus      = "bonus"
)

// Bonus subtypes for type=bonus transactions.
const (
	BonusSignup   = "signup"
	BonusReferral = "referral"
)

type Transaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	PlanID    *uint     `gorm:"index" json:"plan_id,omitempty"`
	Type      string    `gorm:"type:varchar(20);not null" json:"type"`
	BonusType *string   `gorm:"type:varchar(20)" json:"bonus_type,omitempty"`
	Amount    float64   `gorm:"type:decimal(15,2);not null" json:"amount"`
	Reference string    `gorm:"type:varchar(191);not null;uniqueIndex" json:"reference"`
	Message   *string   `gorm:"type:text" json:"message,omitempty"`
	Status    string    `gorm:"type:varchar(20);not null;default:'Pending'" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// IsTerminal reports whether the transaction has settled. Terminal
// transactions are immutable.
func (t *Transaction) IsTerminal() bool {
	return t.Status == TxCompleted || t.Status == TxFailed
}
