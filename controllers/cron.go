package controllers

import (
	"log"
	"net/http"
	"os"

	"project/scheduler"
	"project/utils"
)

// RoiAccrualCronHandler triggers an ROI sweep over active investments. The
// endpoint is meant for an external cron scheduler and is guarded by the
// X-CRON-KEY header; the sweep itself is idempotent, so an overlapping or
// repeated call cannot double-credit.
func RoiAccrualCronHandler(job *scheduler.AccrualJob) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cronKey := os.Getenv("CRON_KEY")
		if cronKey == "" || r.Header.Get("X-CRON-KEY") != cronKey {
			utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
			return
		}

		credited, err := job.Sweep(r.Context())
		if err != nil {
			log.Printf("[accrual] cron sweep failed: %v", err)
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Sweep failed"})
			return
		}

		utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
			Success: true,
			Message: "Sweep completed",
			Data:    map[string]interface{}{"investments_credited": credited},
		})
	}
}
