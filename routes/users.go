package routes

import (
	"net/http"
	"time"

	"project/controllers/auth"
	"project/controllers/users"
	"project/middleware"

	"github.com/gorilla/mux"
)

// RegisterUserRoutes mounts the authenticated user surface under /users.
func RegisterUserRoutes(v1 *mux.Router) {
	u := v1.PathPrefix("/users").Subrouter()
	u.Use(middleware.AuthMiddleware)

	userLimiter := middleware.NewIPRateLimiter(120, time.Minute)
	u.Use(middleware.UserRateLimitMiddleware(userLimiter))

	u.HandleFunc("/me", users.ProfileHandler).Methods(http.MethodGet)
	u.HandleFunc("/logout-all", auth.LogoutAllHandler).Methods(http.MethodPost)
	u.HandleFunc("/referrals", users.ReferralsHandler).Methods(http.MethodGet)

	u.HandleFunc("/transactions", users.CreateTransactionHandler).Methods(http.MethodPost)
	u.HandleFunc("/transactions", users.ListTransactionsHandler).Methods(http.MethodGet)
	u.HandleFunc("/transactions/balances", users.BalancesHandler).Methods(http.MethodGet)

	u.HandleFunc("/investments", users.CreateInvestmentHandler).Methods(http.MethodPost)
	u.HandleFunc("/investments", users.ListInvestmentsHandler).Methods(http.MethodGet)
	u.HandleFunc("/investments/{id:[0-9]+}", users.GetInvestmentHandler).Methods(http.MethodGet)

	u.HandleFunc("/kyc", users.SubmitKycHandler).Methods(http.MethodPost)
	u.HandleFunc("/kyc", users.KycStatusHandler).Methods(http.MethodGet)
}
