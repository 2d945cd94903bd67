package model

import "time"

// ReferralCode maps a user to the code they hand out to recruits.
// One row per user, immutable after creation.
type ReferralCode struct {
	UserID        string    `gorm:"column:user_id;primaryKey;size:64"`
	OwnReferralID string    `gorm:"column:own_referral_id;size:80;uniqueIndex;not null"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}

func (ReferralCode) TableName() string {
	return "referral_codes"
}
