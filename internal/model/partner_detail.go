package model

import "time"

// PartnerDetail holds per-platform aggregates for a partner. Reward
// figures are accrued by an external settlement process and read by
// the commission allocator.
type PartnerDetail struct {
	ID               uint64     `gorm:"primaryKey;autoIncrement"`
	PartnerID        string     `gorm:"column:partner_id;size:64;uniqueIndex:idx_partner_platform;not null"`
	Platform         string     `gorm:"column:platform;size:64;uniqueIndex:idx_partner_platform;not null"`
	TradingAccountID string     `gorm:"column:trading_account_id;size:128"`
	ReferralLink     string     `gorm:"column:referral_link;size:512"`
	TotalClients     int        `gorm:"column:total_clients;not null;default:0"`
	TotalLots        float64    `gorm:"column:total_lots;not null;default:0"`
	AccruedReward    float64    `gorm:"column:accrued_reward;not null;default:0"`
	LastClaimAt      *time.Time `gorm:"column:last_claim_at"`
	NextClaimAt      *time.Time `gorm:"column:next_claim_at"`
	CreatedAt        time.Time  `gorm:"autoCreateTime"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime"`
}

func (PartnerDetail) TableName() string {
	return "partner_details"
}
