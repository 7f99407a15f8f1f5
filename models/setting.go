package models

import (
	"errors"

	"gorm.io/gorm"
)

type Setting struct {
	ID             int     `gorm:"primaryKey" json:"id"`
	Name           string  `json:"name"`
	Company        string  `json:"company"`
	SignupBonus    float64 `gorm:"type:decimal(15,2);default:20" json:"signup_bonus"`
	ReferralBonus  float64 `gorm:"type:decimal(15,2);default:20" json:"referral_bonus"`
	MinWithdraw    float64 `gorm:"type:decimal(15,2);default:10" json:"min_withdraw"`
	MaxWithdraw    float64 `gorm:"type:decimal(15,2);default:100000" json:"max_withdraw"`
	Maintenance    bool    `gorm:"default:false" json:"maintenance"`
	ClosedRegister bool    `gorm:"default:false" json:"closed_register"`
}

func (Setting) TableName() string {
	return "settings"
}

// GetSetting loads the single settings row, falling back to defaults when the
// table is empty so handlers never fail on a fresh database.
func GetSetting(db *gorm.DB) (*Setting, error) {
	var s Setting
	err := db.Take(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &Setting{SignupBonus: 20, ReferralBonus: 20, MinWithdraw: 10, MaxWithdraw: 100000}, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
