package models

import "time"

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Email        string    `gorm:"size:191;uniqueIndex;not null" json:"email"`
	Password     string    `gorm:"size:255;not null" json:"-"`
	ReferralCode string    `gorm:"size:20;uniqueIndex;not null" json:"referral_code"`
	ReferredBy   *uint     `gorm:"column:referred_by" json:"referred_by"`
	MainWallet   float64   `gorm:"type:decimal(15,2);default:0" json:"main_wallet"`
	ProfitWallet float64   `gorm:"type:decimal(15,2);default:0" json:"profit_wallet"`
	KycStatus    string    `gorm:"type:varchar(20);default:'unverified'" json:"kyc_status"`
	Status       string    `gorm:"type:varchar(20);default:'Active'" json:"status"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

func (User) TableName() string {
	return "users"
}
