package users

import (
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"project/database"
	"project/models"
	"project/utils"

	"gorm.io/gorm"
)

var allowedKycExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".pdf":  true,
}

// SubmitKycHandler accepts a multipart KYC document upload, stores the file
// in S3 and records a pending submission for admin review.
func SubmitKycHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	if user.KycStatus == "verified" {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "KYC is already verified"})
		return
	}
	if user.KycStatus == "pending" {
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "A KYC submission is already under review"})
		return
	}

	if err := r.ParseMultipartForm(5 << 20); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid upload"})
		return
	}

	docType := strings.TrimSpace(r.FormValue("document_type"))
	if docType == "" {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "document_type is required"})
		return
	}

	file, header, err := r.FormFile("document")
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "document file is required"})
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedKycExtensions[ext] {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Only jpg, png and pdf documents are accepted"})
		return
	}

	objectName := fmt.Sprintf("kyc/%d/%d%s", userID, time.Now().UnixNano(), ext)
	if err := utils.UploadToS3(objectName, file); err != nil {
		log.Printf("[kyc] upload failed for user %d: %v", userID, err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Could not store document, please try again"})
		return
	}

	submission := models.KycSubmission{
		UserID:       userID,
		DocumentType: docType,
		DocumentURL:  objectName,
		Status:       models.KycPending,
	}
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&submission).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", userID).
			Update("kyc_status", "pending").Error
	})
	if err != nil {
		log.Printf("[kyc] submission record failed for user %d: %v", userID, err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Something went wrong"})
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "KYC document submitted for review", Data: submission})
}

// KycStatusHandler returns the caller's KYC state and submission history.
func KycStatusHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserID(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	var submissions []models.KycSubmission
	if err := database.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&submissions).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Something went wrong"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "KYC status fetched",
		Data: map[string]interface{}{
			"kyc_status":  user.KycStatus,
			"submissions": submissions,
		},
	})
}
