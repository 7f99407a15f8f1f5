package admins

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"project/database"
	"project/middleware"
	"project/models"
	"project/utils"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// ListKycHandler returns KYC submissions, defaulting to pending ones.
func ListKycHandler(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		status = models.KycPending
	}

	var submissions []models.KycSubmission
	if err := database.DB.Where("status = ?", status).Order("created_at ASC").Find(&submissions).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Something went wrong"})
		return
	}

	// Attach short-lived signed URLs so reviewers can open the documents.
	type reviewEntry struct {
		models.KycSubmission
		SignedURL string `json:"signed_url,omitempty"`
	}
	entries := make([]reviewEntry, 0, len(submissions))
	for _, s := range submissions {
		entry := reviewEntry{KycSubmission: s}
		if url, err := utils.GenerateSignedURL(s.DocumentURL, 900); err == nil {
			entry.SignedURL = url
		}
		entries = append(entries, entry)
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "KYC submissions fetched", Data: entries})
}

type kycReviewPayload struct {
	Status string  `json:"status" validate:"required"`
	Note   *string `json:"note"`
}

// ReviewKycHandler approves or rejects a pending submission and mirrors the
// decision onto the user's kyc_status.
func ReviewKycHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid submission id"})
		return
	}

	var payload kycReviewPayload
	if err := middleware.ValidateJSON(w, r, &payload); err != nil {
		return
	}
	if payload.Status != models.KycApproved && payload.Status != models.KycRejected {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Status must be Approved or Rejected"})
		return
	}

	userStatus := "verified"
	if payload.Status == models.KycRejected {
		userStatus = "rejected"
	}

	var submission models.KycSubmission
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&submission, id).Error; err != nil {
			return err
		}
		if submission.Status != models.KycPending {
			return errors.New("already_reviewed")
		}
		submission.Status = payload.Status
		submission.Note = payload.Note
		if err := tx.Save(&submission).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", submission.UserID).
			Update("kyc_status", userStatus).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Submission not found"})
		case err.Error() == "already_reviewed":
			utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Submission has already been reviewed"})
		default:
			log.Printf("[kyc] review of submission %d failed: %v", id, err)
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Something went wrong"})
		}
		return
	}

	log.Printf("[kyc] submission %d %s (note: %s)", id, submission.Status, utils.GetStringValue(submission.Note))

	// A rejected document has no further use; best effort, the review stands
	// even if the object lingers.
	if submission.Status == models.KycRejected {
		if err := utils.DeleteFromS3(submission.DocumentURL); err != nil {
			log.Printf("[kyc] could not delete document %s: %v", submission.DocumentURL, err)
		}
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "KYC submission reviewed", Data: submission})
}
