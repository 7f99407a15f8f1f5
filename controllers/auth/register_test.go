package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
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
	t.Setenv("JWT_SECRET", "test-secret")
	return db
}

func postRegister(t *testing.T, body map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/v1/register", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	RegisterHandler(rec, req)
	return rec
}

func TestRegisterCreatesUserWithSignupBonus(t *testing.T) {
	db := newTestDB(t)

	rec := postRegister(t, map[string]string{
		"name":                  "Alice Example",
		"email":                 "alice@example.com",
		"password":              "secret123",
		"password_confirmation": "secret123",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var user models.User
	require.NoError(t, db.Where("email = ?", "alice@example.com").First(&user).Error)
	require.NotEmpty(t, user.ReferralCode)
	require.Nil(t, user.ReferredBy)

	// the default signup bonus lands in the profit wallet
	require.Equal(t, 20.0, user.ProfitWallet)

	var bonusTx models.Transaction
	require.NoError(t, db.Where("user_id = ? AND type = ?", user.ID, models.TxBonus).First(&bonusTx).Error)
	require.Equal(t, models.TxCompleted, bonusTx.Status)
	require.Equal(t, models.BonusSignup, *bonusTx.BonusType)

	// the response body reflects the credited wallet, not the pre-bonus state
	var resp struct {
		Data struct {
			User models.User `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 20.0, resp.Data.User.ProfitWallet)
}

func TestRegisterRetriesReferralCodeCollision(t *testing.T) {
	db := newTestDB(t)

	taken := models.User{
		Name:         "Holder",
		Email:        "holder@example.com",
		Password:     "hashed",
		ReferralCode: "TAKEN123",
	}
	require.NoError(t, db.Create(&taken).Error)

	orig := newReferralCode
	defer func() { newReferralCode = orig }()
	calls := 0
	newReferralCode = func(n int) string {
		calls++
		if calls == 1 {
			return "TAKEN123"
		}
		return "FRESH456"
	}

	rec := postRegister(t, map[string]string{
		"name":                  "Grace Example",
		"email":                 "grace@example.com",
		"password":              "secret123",
		"password_confirmation": "secret123",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, 2, calls)

	var user models.User
	require.NoError(t, db.Where("email = ?", "grace@example.com").First(&user).Error)
	require.Equal(t, "FRESH456", user.ReferralCode)
}

func TestRegisterReferralCodeExhaustionIsNotAConflict(t *testing.T) {
	db := newTestDB(t)

	taken := models.User{
		Name:         "Holder",
		Email:        "holder2@example.com",
		Password:     "hashed",
		ReferralCode: "TAKEN999",
	}
	require.NoError(t, db.Create(&taken).Error)

	orig := newReferralCode
	defer func() { newReferralCode = orig }()
	newReferralCode = func(n int) string { return "TAKEN999" }

	rec := postRegister(t, map[string]string{
		"name":                  "Henry Example",
		"email":                 "henry@example.com",
		"password":              "secret123",
		"password_confirmation": "secret123",
	})
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	// the transaction rolled back: no half-registered user
	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("email = ?", "henry@example.com").Count(&count).Error)
	require.Equal(t, int64(0), count)
}

func TestRegisterWithReferralCreditsReferrer(t *testing.T) {
	db := newTestDB(t)

	referrer := models.User{
		Name:         "Referrer",
		Email:        "referrer@example.com",
		Password:     "hashed",
		ReferralCode: "FRIEND42",
	}
	require.NoError(t, db.Create(&referrer).Error)

	rec := postRegister(t, map[string]string{
		"name":                  "Bob Example",
		"email":                 "bob@example.com",
		"password":              "secret123",
		"password_confirmation": "secret123",
		"referral_code":         "friend42",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var user models.User
	require.NoError(t, db.Where("email = ?", "bob@example.com").First(&user).Error)
	require.NotNil(t, user.ReferredBy)
	require.Equal(t, referrer.ID, *user.ReferredBy)

	var gotReferrer models.User
	require.NoError(t, db.First(&gotReferrer, referrer.ID).Error)
	require.Equal(t, 20.0, gotReferrer.ProfitWallet)

	var bonusTx models.Transaction
	require.NoError(t, db.Where("user_id = ? AND type = ?", referrer.ID, models.TxBonus).First(&bonusTx).Error)
	require.Equal(t, models.BonusReferral, *bonusTx.BonusType)
}

func TestRegisterUnknownReferralCodeProceedsWithoutBonus(t *testing.T) {
	db := newTestDB(t)

	rec := postRegister(t, map[string]string{
		"name":                  "Carol Example",
		"email":                 "carol@example.com",
		"password":              "secret123",
		"password_confirmation": "secret123",
		"referral_code":         "NOSUCH99",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var user models.User
	require.NoError(t, db.Where("email = ?", "carol@example.com").First(&user).Error)
	require.Nil(t, user.ReferredBy)

	// only the signup bonus exists
	var count int64
	require.NoError(t, db.Model(&models.Transaction{}).Where("type = ?", models.TxBonus).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	db := newTestDB(t)

	first := postRegister(t, map[string]string{
		"name":                  "Dave Example",
		"email":                 "dave@example.com",
		"password":              "secret123",
		"password_confirmation": "secret123",
	})
	require.Equal(t, http.StatusCreated, first.Code)

	second := postRegister(t, map[string]string{
		"name":                  "Dave Again",
		"email":                 "dave@example.com",
		"password":              "secret123",
		"password_confirmation": "secret123",
	})
	require.Equal(t, http.StatusConflict, second.Code)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("email = ?", "dave@example.com").Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestRegisterPasswordMismatchRejected(t *testing.T) {
	newTestDB(t)

	rec := postRegister(t, map[string]string{
		"name":                  "Eve Example",
		"email":                 "eve@example.com",
		"password":              "secret123",
		"password_confirmation": "different",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterClosedRegistration(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&models.Setting{ClosedRegister: true, SignupBonus: 20, ReferralBonus: 20, MinWithdraw: 10, MaxWithdraw: 100000}).Error)

	rec := postRegister(t, map[string]string{
		"name":                  "Frank Example",
		"email":                 "frank@example.com",
		"password":              "secret123",
		"password_confirmation": "secret123",
	})
	require.Equal(t, http.StatusForbidden, rec.Code)
}
