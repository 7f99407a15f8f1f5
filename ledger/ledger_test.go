package ledger

import (
	"fmt"
	"strings"
	"testing"

	"project/database"
	"project/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	database.DB = db
	return db
}

func seedUser(t *testing.T, db *gorm.DB, main, profit float64) *models.User {
	t.Helper()
	user := &models.User{
		Name:         "Test User",
		Email:        fmt.Sprintf("%s@example.com", strings.ToLower(strings.ReplaceAll(t.Name(), "/", "."))),
		Password:     "hashed",
		ReferralCode: strings.ToUpper(strings.ReplaceAll(t.Name(), "/", ""))[:8],
		MainWallet:   main,
		ProfitWallet: profit,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestRecordCompletedDepositCreditsMainWallet(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, 0, 0)

	trx := models.Transaction{UserID: user.ID, Type: models.TxDeposit, Amount: 75, Status: models.TxCompleted}
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return Record(tx, &trx)
	}))
	require.NotEmpty(t, trx.Reference)

	var got models.User
	require.NoError(t, db.First(&got, user.ID).Error)
	require.Equal(t, 75.0, got.MainWallet)
}

func TestRecordPendingDoesNotTouchWallet(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, 10, 0)

	trx := models.Transaction{UserID: user.ID, Type: models.TxDeposit, Amount: 50}
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return Record(tx, &trx)
	}))
	require.Equal(t, models.TxPending, trx.Status)

	var got models.User
	require.NoError(t, db.First(&got, user.ID).Error)
	require.Equal(t, 10.0, got.MainWallet)
}

func TestSettleDepositCompleted(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, 0, 0)

	trx := models.Transaction{UserID: user.ID, Type: models.TxDeposit, Amount: 50}
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error { return Record(tx, &trx) }))

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return Settle(tx, &trx, models.TxCompleted)
	}))

	var got models.User
	require.NoError(t, db.First(&got, user.ID).Error)
	require.Equal(t, 50.0, got.MainWallet)

	var stored models.Transaction
	require.NoError(t, db.First(&stored, trx.ID).Error)
	require.Equal(t, models.TxCompleted, stored.Status)
}

func TestSettleIsTerminalOnlyOnce(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, 0, 0)

	trx := models.Transaction{UserID: user.ID, Type: models.TxDeposit, Amount: 50}
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error { return Record(tx, &trx) }))
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error { return Settle(tx, &trx, models.TxCompleted) }))

	err := db.Transaction(func(tx *gorm.DB) error { return Settle(tx, &trx, models.TxCompleted) })
	require.ErrorIs(t, err, ErrTerminalState)

	// the wallet was credited exactly once
	var got models.User
	require.NoError(t, db.First(&got, user.ID).Error)
	require.Equal(t, 50.0, got.MainWallet)
}

func TestSettleFailedLeavesWalletUntouched(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, 30, 0)

	trx := models.Transaction{UserID: user.ID, Type: models.TxDeposit, Amount: 50}
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error { return Record(tx, &trx) }))
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error { return Settle(tx, &trx, models.TxFailed) }))

	var got models.User
	require.NoError(t, db.First(&got, user.ID).Error)
	require.Equal(t, 30.0, got.MainWallet)

	var stored models.Transaction
	require.NoError(t, db.First(&stored, trx.ID).Error)
	require.Equal(t, models.TxFailed, stored.Status)
}

func TestSettleWithdrawalInsufficientRollsBack(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, 20, 0)

	trx := models.Transaction{UserID: user.ID, Type: models.TxWithdrawal, Amount: 50}
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error { return Record(tx, &trx) }))

	err := db.Transaction(func(tx *gorm.DB) error { return Settle(tx, &trx, models.TxCompleted) })
	require.ErrorIs(t, err, ErrInsufficientFunds)

	// the rollback keeps the transaction Pending and the wallet intact
	var stored models.Transaction
	require.NoError(t, db.First(&stored, trx.ID).Error)
	require.Equal(t, models.TxPending, stored.Status)

	var got models.User
	require.NoError(t, db.First(&got, user.ID).Error)
	require.Equal(t, 20.0, got.MainWallet)
}

func TestSettleWithdrawalDebitsMainWallet(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, 100, 0)

	trx := models.Transaction{UserID: user.ID, Type: models.TxWithdrawal, Amount: 60}
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error { return Record(tx, &trx) }))
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error { return Settle(tx, &trx, models.TxCompleted) }))

	var got models.User
	require.NoError(t, db.First(&got, user.ID).Error)
	require.Equal(t, 40.0, got.MainWallet)
}

func TestRecordBonusCreditsProfitWallet(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, 0, 5)

	bonusType := models.BonusSignup
	trx := models.Transaction{UserID: user.ID, Type: models.TxBonus, BonusType: &bonusType, Amount: 20, Status: models.TxCompleted}
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error { return Record(tx, &trx) }))

	var got models.User
	require.NoError(t, db.First(&got, user.ID).Error)
	require.Equal(t, 25.0, got.ProfitWallet)
	require.Equal(t, 0.0, got.MainWallet)
}

func TestRecordKeepsCallerReference(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, 0, 0)

	trx := models.Transaction{UserID: user.ID, Type: models.TxDeposit, Amount: 10, Reference: "TXN-FIXED-001"}
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error { return Record(tx, &trx) }))
	require.Equal(t, "TXN-FIXED-001", trx.Reference)
}

func TestRecordRegeneratesOnReferenceCollision(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, 0, 0)

	existing := models.Transaction{UserID: user.ID, Type: models.TxDeposit, Amount: 5, Reference: "TXN-COLLIDE"}
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error { return Record(tx, &existing) }))

	orig := newReference
	defer func() { newReference = orig }()
	calls := 0
	newReference = func() string {
		calls++
		if calls == 1 {
			return "TXN-COLLIDE"
		}
		return fmt.Sprintf("TXN-FRESH-%d", calls)
	}

	trx := models.Transaction{UserID: user.ID, Type: models.TxDeposit, Amount: 10}
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error { return Record(tx, &trx) }))

	// the colliding reference was regenerated, not reused
	require.Equal(t, "TXN-FRESH-2", trx.Reference)
	require.Equal(t, 2, calls)

	var count int64
	require.NoError(t, db.Model(&models.Transaction{}).Where("user_id = ?", user.ID).Count(&count).Error)
	require.Equal(t, int64(2), count)
}

func TestRecordCallerDuplicateReferenceErrors(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, 0, 0)

	first := models.Transaction{UserID: user.ID, Type: models.TxDeposit, Amount: 5, Reference: "TXN-DUP"}
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error { return Record(tx, &first) }))

	// a caller-supplied duplicate must surface the error instead of
	// silently regenerating
	second := models.Transaction{UserID: user.ID, Type: models.TxDeposit, Amount: 7, Reference: "TXN-DUP"}
	err := db.Transaction(func(tx *gorm.DB) error { return Record(tx, &second) })
	require.Error(t, err)
	require.Equal(t, "TXN-DUP", second.Reference)
}
