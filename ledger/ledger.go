// Package ledger owns every wallet mutation. Transactions are the only thing
// that moves money: a transaction entering the Completed state is the single
// point at which a wallet balance changes, whether the transaction was created
// already settled (investment, profit, bonus) or settled later by an admin
// status transition (deposit, withdrawal). Funneling both paths through Settle
// and Record is what prevents double-crediting.
package ledger

import (
	"errors"
	"fmt"
	"strings"

	"project/models"
	"project/utils"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

var (
	// ErrTerminalState is returned when a settled transaction is mutated again.
	ErrTerminalState = errors.New("transaction already settled")
	// ErrInsufficientFunds is returned when a withdrawal settlement cannot be
	// covered by the main wallet.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrNoWallet is returned when the owning user row no longer exists.
	ErrNoWallet = errors.New("wallet owner not found")
)

// Apply maps a completed transaction's type to a signed increment on exactly
// one wallet column and applies it as an atomic single-row update. Investment
// transactions are a no-op here: the principal moves at investment creation
// and completion. Unknown types are a no-op.
func Apply(tx *gorm.DB, trx *models.Transaction) error {
	switch trx.Type {
	case models.TxDeposit:
		return credit(tx, trx.UserID, "main_wallet", trx.Amount)
	case models.TxWithdrawal:
		return debitMain(tx, trx.UserID, trx.Amount)
	case models.TxProfit, models.TxRoi, models.TxBonus:
		return credit(tx, trx.UserID, "profit_wallet", trx.Amount)
	default:
		return nil
	}
}

func credit(tx *gorm.DB, userID uint, column string, amount float64) error {
	res := tx.Model(&models.User{}).Where("id = ?", userID).
		UpdateColumn(column, gorm.Expr(column+" + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNoWallet
	}
	return nil
}

// debitMain deducts from the main wallet only when the balance covers the
// amount, so a concurrent settle can fail but never overdraw.
func debitMain(tx *gorm.DB, userID uint, amount float64) error {
	res := tx.Model(&models.User{}).
		Where("id = ? AND main_wallet >= ?", userID, amount).
		UpdateColumn("main_wallet", gorm.Expr("main_wallet - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNoWallet
		}
		return ErrInsufficientFunds
	}
	return nil
}

// Settle transitions a pending transaction into a terminal state and, for
// Completed, applies the wallet mutation. The status flip is conditional on
// the row still being Pending so two concurrent settles cannot both credit.
// Callers run this inside a DB transaction.
func Settle(tx *gorm.DB, trx *models.Transaction, status string) error {
	if trx.IsTerminal() {
		return ErrTerminalState
	}
	if status != models.TxCompleted && status != models.TxFailed {
		return fmt.Errorf("invalid settlement status %q", status)
	}

	res := tx.Model(&models.Transaction{}).
		Where("id = ? AND status = ?", trx.ID, models.TxPending).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrTerminalState
	}
	trx.Status = status

	if status == models.TxCompleted {
		return Apply(tx, trx)
	}
	return nil
}

// newReference generates transaction references; a variable so tests can
// force collisions.
var newReference = utils.GenerateReference

// Record inserts a transaction and, when it is created already Completed,
// applies the wallet mutation through the same funnel as Settle. A missing
// reference is generated; a duplicate generated reference regenerates and
// retries, while a caller-supplied duplicate is an error.
func Record(tx *gorm.DB, trx *models.Transaction) error {
	if trx.Status == "" {
		trx.Status = models.TxPending
	}
	generated := trx.Reference == ""
	if generated {
		trx.Reference = newReference()
	}

	const maxAttempts = 5
	for attempt := 0; ; attempt++ {
		err := tx.Create(trx).Error
		if err == nil {
			break
		}
		if generated && attempt < maxAttempts && isDuplicateKey(err) {
			trx.Reference = newReference()
			continue
		}
		return err
	}

	if trx.Status == models.TxCompleted {
		return Apply(tx, trx)
	}
	return nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == 1062 {
		return true
	}
	// sqlite (tests) reports unique violations by message only
	return strings.Contains(err.Error(), "UNIQUE constraint")
}
