package scheduler

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"project/database"
	"project/models"
	"project/utils"

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

func seedUser(t *testing.T, db *gorm.DB, main float64) *models.User {
	t.Helper()
	user := &models.User{
		Name:         "Investor",
		Email:        fmt.Sprintf("%s@example.com", strings.ToLower(strings.ReplaceAll(t.Name(), "/", "."))),
		Password:     "hashed",
		ReferralCode: strings.ToUpper(strings.ReplaceAll(t.Name(), "/", ""))[:8],
		MainWallet:   main,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedInvestment(t *testing.T, db *gorm.DB, userID uint, amount float64, rate float64, roiType string, start time.Time, periods int) *models.Investment {
	t.Helper()
	inv := &models.Investment{
		UserID:        userID,
		PlanID:        1,
		Amount:        amount,
		InitialAmount: amount,
		RoiRate:       rate,
		RoiInterval:   models.IntervalDaily,
		RoiType:       roiType,
		StartDate:     start,
		EndDate:       start.Add(time.Duration(periods) * 24 * time.Hour),
		Reference:     utils.GenerateInvestmentReference(userID),
		Status:        models.InvestmentActive,
	}
	require.NoError(t, db.Create(inv).Error)
	return inv
}

func jobAt(db *gorm.DB, now time.Time) *AccrualJob {
	job := NewAccrualJob(db, nil)
	job.Now = func() time.Time { return now }
	return job
}

func TestSweepFlatAccrual(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, 0)
	start := time.Now().Add(-3*24*time.Hour - time.Hour)
	inv := seedInvestment(t, db, user.ID, 100, 5, models.RoiFlat, start, 30)

	job := jobAt(db, time.Now())
	processed, err := job.Sweep(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, processed)

	// 3 whole daily periods at 5% of the initial 100
	var got models.User
	require.NoError(t, db.First(&got, user.ID).Error)
	require.Equal(t, 15.0, got.ProfitWallet)

	var stored models.Investment
	require.NoError(t, db.First(&stored, inv.ID).Error)
	require.Equal(t, 3, stored.PeriodsCredited)
	require.Equal(t, models.InvestmentActive, stored.Status)
	require.NotNil(t, stored.LastCredited)

	var profitTx models.Transaction
	require.NoError(t, db.Where("user_id = ? AND type = ?", user.ID, models.TxProfit).First(&profitTx).Error)
	require.Equal(t, 15.0, profitTx.Amount)
	require.Equal(t, models.TxCompleted, profitTx.Status)
}

func TestSweepIsIdempotentWithinPeriod(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, 0)
	start := time.Now().Add(-2*24*time.Hour - time.Hour)
	seedInvestment(t, db, user.ID, 100, 5, models.RoiFlat, start, 30)

	now := time.Now()
	job := jobAt(db, now)
	_, err := job.Sweep(context.Background())
	require.NoError(t, err)

	// second sweep at the same instant owes nothing
	processed, err := job.Sweep(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, processed)

	var got models.User
	require.NoError(t, db.First(&got, user.ID).Error)
	require.Equal(t, 10.0, got.ProfitWallet)

	var count int64
	require.NoError(t, db.Model(&models.Transaction{}).Where("user_id = ? AND type = ?", user.ID, models.TxProfit).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestSweepCompoundedAccrual(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, 0)
	start := time.Now().Add(-2*24*time.Hour - time.Hour)
	inv := seedInvestment(t, db, user.ID, 100, 10, models.RoiCompounded, start, 30)

	job := jobAt(db, time.Now())
	_, err := job.Sweep(context.Background())
	require.NoError(t, err)

	// period 1: 10% of 100 = 10, period 2: 10% of 110 = 11
	var got models.User
	require.NoError(t, db.First(&got, user.ID).Error)
	require.Equal(t, 21.0, got.ProfitWallet)

	var stored models.Investment
	require.NoError(t, db.First(&stored, inv.ID).Error)
	require.Equal(t, 121.0, stored.Amount)
	require.Equal(t, 100.0, stored.InitialAmount)
}

func TestSweepCompletionReturnsPrincipal(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, 50)
	start := time.Now().Add(-5 * 24 * time.Hour)
	inv := seedInvestment(t, db, user.ID, 100, 5, models.RoiFlat, start, 3)

	job := jobAt(db, time.Now())
	processed, err := job.Sweep(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, processed)

	var stored models.Investment
	require.NoError(t, db.First(&stored, inv.ID).Error)
	require.Equal(t, models.InvestmentCompleted, stored.Status)
	require.Equal(t, 3, stored.PeriodsCredited)

	// principal back to main, 3 periods of profit to profit wallet
	var got models.User
	require.NoError(t, db.First(&got, user.ID).Error)
	require.Equal(t, 150.0, got.MainWallet)
	require.Equal(t, 15.0, got.ProfitWallet)

	var principalTx models.Transaction
	require.NoError(t, db.Where("user_id = ? AND type = ?", user.ID, models.TxInvestment).First(&principalTx).Error)
	require.Equal(t, 100.0, principalTx.Amount)

	// a later sweep leaves the completed investment alone
	processed, err = job.Sweep(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, processed)
}

func TestSweepBeforeFirstPeriodDoesNothing(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, 0)
	start := time.Now().Add(-time.Hour)
	seedInvestment(t, db, user.ID, 100, 5, models.RoiFlat, start, 30)

	job := jobAt(db, time.Now())
	processed, err := job.Sweep(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, processed)

	var got models.User
	require.NoError(t, db.First(&got, user.ID).Error)
	require.Equal(t, 0.0, got.ProfitWallet)
}
