package models

import "time"

// RevokedToken blacklists an access token jti when Redis is not configured.
// Rows are safe to prune once older than the access token lifetime.
type RevokedToken struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	RevokedAt time.Time `json:"revoked_at"`
}

func (RevokedToken) TableName() string {
	return "revoked_tokens"
}
