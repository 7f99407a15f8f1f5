package routes

import (
	"net/http"
	"time"

	"project/controllers/admins"
	"project/middleware"

	"github.com/gorilla/mux"
)

// RegisterAdminRoutes mounts the admin surface under /admin.
func RegisterAdminRoutes(v1 *mux.Router) {
	loginLimiter := middleware.NewIPRateLimiter(10, time.Minute)
	login := v1.NewRoute().Subrouter()
	login.Use(middleware.RateLimitMiddleware(loginLimiter))
	login.HandleFunc("/admin/login", admins.LoginHandler).Methods(http.MethodPost)

	a := v1.PathPrefix("/admin").Subrouter()
	a.Use(middleware.AdminAuthMiddleware)

	a.HandleFunc("/transactions", admins.ListTransactionsHandler).Methods(http.MethodGet)
	a.HandleFunc("/transactions/{id:[0-9]+}/status", admins.SettleTransactionHandler).Methods(http.MethodPut)

	a.HandleFunc("/plans", admins.ListPlansHandler).Methods(http.MethodGet)
	a.HandleFunc("/plans", admins.CreatePlanHandler).Methods(http.MethodPost)
	a.HandleFunc("/plans/{id:[0-9]+}", admins.GetPlanHandler).Methods(http.MethodGet)
	a.HandleFunc("/plans/{id:[0-9]+}", admins.UpdatePlanHandler).Methods(http.MethodPut)
	a.HandleFunc("/plans/{id:[0-9]+}", admins.DeactivatePlanHandler).Methods(http.MethodDelete)

	a.HandleFunc("/investments", admins.ListInvestmentsHandler).Methods(http.MethodGet)

	a.HandleFunc("/users", admins.ListUsersHandler).Methods(http.MethodGet)
	a.HandleFunc("/users/{id:[0-9]+}", admins.GetUserHandler).Methods(http.MethodGet)
	a.HandleFunc("/users/{id:[0-9]+}/status", admins.SetUserStatusHandler).Methods(http.MethodPut)

	a.HandleFunc("/kyc", admins.ListKycHandler).Methods(http.MethodGet)
	a.HandleFunc("/kyc/{id:[0-9]+}", admins.ReviewKycHandler).Methods(http.MethodPut)

	a.HandleFunc("/settings", admins.GetSettingsHandler).Methods(http.MethodGet)
	a.HandleFunc("/settings", admins.UpdateSettingsHandler).Methods(http.MethodPut)
}
