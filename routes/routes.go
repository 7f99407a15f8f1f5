package routes

import (
	"net/http"
	"os"
	"strings"
	"time"

	"project/controllers"
	"project/controllers/auth"
	"project/middleware"
	"project/scheduler"
	"project/utils"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// InitRouter builds the full HTTP surface: public endpoints, authenticated
// user routes, admin routes and the cron trigger for the ROI sweep.
func InitRouter(job *scheduler.AccrualJob) http.Handler {
	r := mux.NewRouter()

	r.Use(middleware.RecoveryMiddleware)
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.RequestLogMiddleware)
	r.Use(middleware.SecurityHeadersMiddleware)
	r.Use(middleware.TimeoutMiddleware)
	r.Use(middleware.MaxBodyMiddleware)

	globalLimiter := middleware.NewIPRateLimiter(300, time.Minute)
	r.Use(middleware.RateLimitMiddleware(globalLimiter))

	r.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()

	// Public
	v1.HandleFunc("/plans", controllers.ListActivePlansHandler).Methods(http.MethodGet)
	v1.HandleFunc("/cron/roi-accrual", controllers.RoiAccrualCronHandler(job)).Methods(http.MethodPost)

	// Auth endpoints carry a tighter limit against credential stuffing.
	authLimiter := middleware.NewIPRateLimiter(20, time.Minute)
	authRoutes := v1.NewRoute().Subrouter()
	authRoutes.Use(middleware.RateLimitMiddleware(authLimiter))
	authRoutes.HandleFunc("/register", auth.RegisterHandler).Methods(http.MethodPost)
	authRoutes.HandleFunc("/login", auth.LoginHandler).Methods(http.MethodPost)
	authRoutes.HandleFunc("/refresh", auth.RefreshHandler).Methods(http.MethodPost)
	authRoutes.HandleFunc("/logout", auth.LogoutHandler).Methods(http.MethodPost)

	RegisterUserRoutes(v1)
	RegisterAdminRoutes(v1)

	return corsWrapper(r)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "ok"})
}

func corsWrapper(h http.Handler) http.Handler {
	origins := []string{"*"}
	if raw := os.Getenv("CORS_ORIGINS"); raw != "" {
		origins = origins[:0]
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}
	return handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Request-ID"}),
	)(h)
}
