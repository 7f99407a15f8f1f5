package models

import "time"

// KYC submission statuses.
const (
	KycPending  = "Pending"
	KycApproved = "Approved"
	KycRejected = "Rejected"
)

type KycSubmission struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	DocumentType string    `gorm:"size:50;not null" json:"document_type"`
	DocumentURL  string    `gorm:"size:512;not null" json:"document_url"`
	Status       string    `gorm:"type:varchar(20);default:'Pending'" json:"status"`
	Note         *string   `gorm:"type:text" json:"note,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (KycSubmission) TableName() string {
	return "kyc_submissions"
}
