package users

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
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

func seedPlan(t *testing.T, db *gorm.DB, status string) *models.Plan {
	t.Helper()
	plan := &models.Plan{
		Name:           "Starter",
		MinAmount:      50,
		MaxAmount:      500,
		RoiRate:        5,
		RoiInterval:    models.IntervalDaily,
		RoiType:        models.RoiFlat,
		NumOfPeriods:   30,
		DurationInDays: 30,
		Status:         status,
	}
	require.NoError(t, db.Create(plan).Error)
	return plan
}

func postInvestment(t *testing.T, userID uint, body map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/v1/users/investments", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(context.WithValue(req.Context(), utils.UserIDKey, userID))
	rec := httptest.NewRecorder()
	CreateInvestmentHandler(rec, req)
	return rec
}

func TestCreateInvestmentDeductsWallet(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, 100)
	plan := seedPlan(t, db, "Active")

	rec := postInvestment(t, user.ID, map[string]interface{}{"plan_id": plan.ID, "amount": 100})
	require.Equal(t, http.StatusCreated, rec.Code)

	var got models.User
	require.NoError(t, db.First(&got, user.ID).Error)
	require.Equal(t, 0.0, got.MainWallet)

	var inv models.Investment
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&inv).Error)
	require.Equal(t, 100.0, inv.Amount)
	require.Equal(t, 100.0, inv.InitialAmount)
	require.Equal(t, plan.RoiRate, inv.RoiRate)
	require.Equal(t, models.InvestmentActive, inv.Status)

	// daily plan with 30 periods ends 30 days after start
	require.WithinDuration(t, inv.StartDate.Add(30*24*time.Hour), inv.EndDate, time.Second)

	var trx models.Transaction
	require.NoError(t, db.Where("user_id = ? AND type = ?", user.ID, models.TxInvestment).First(&trx).Error)
	require.Equal(t, 100.0, trx.Amount)
	require.Equal(t, models.TxCompleted, trx.Status)
}

func TestCreateInvestmentInsufficientBalance(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, 100)
	plan := seedPlan(t, db, "Active")

	rec := postInvestment(t, user.ID, map[string]interface{}{"plan_id": plan.ID, "amount": 200})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// nothing changed
	var got models.User
	require.NoError(t, db.First(&got, user.ID).Error)
	require.Equal(t, 100.0, got.MainWallet)

	var count int64
	require.NoError(t, db.Model(&models.Investment{}).Where("user_id = ?", user.ID).Count(&count).Error)
	require.Equal(t, int64(0), count)
}

func TestCreateInvestmentInactivePlanNotFound(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, 100)
	plan := seedPlan(t, db, "Deactivated")

	rec := postInvestment(t, user.ID, map[string]interface{}{"plan_id": plan.ID, "amount": 100})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateInvestmentOutsidePlanLimits(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, 1000)
	plan := seedPlan(t, db, "Active")

	below := postInvestment(t, user.ID, map[string]interface{}{"plan_id": plan.ID, "amount": 10})
	require.Equal(t, http.StatusBadRequest, below.Code)

	above := postInvestment(t, user.ID, map[string]interface{}{"plan_id": plan.ID, "amount": 600})
	require.Equal(t, http.StatusBadRequest, above.Code)
}
