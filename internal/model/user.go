package model

import "time"

type PartnerRank string

// System ranks sit at the top of every referral chain and are excluded
// from structural position counting.
const (
	RankAdmin PartnerRank = "ADMIN"
	RankSale  PartnerRank = "SALE"
	RankNone  PartnerRank = "None"
)

// Tier ranks, assigned once at partner registration by structural
// chain position.
const (
	RankDong     PartnerRank = "Đồng"
	RankBac      PartnerRank = "Bạc"
	RankVang     PartnerRank = "Vàng"
	RankBachKim  PartnerRank = "Bạch Kim"
	RankKimCuong PartnerRank = "Kim Cương"
	RankRuby     PartnerRank = "Ruby"
)

func (r PartnerRank) IsSystem() bool {
	return r == RankAdmin || r == RankSale || r == RankNone
}

type User struct {
	ID           string      `gorm:"primaryKey;size:64"`
	Email        string      `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string      `gorm:"column:password_hash;size:128;not null"`
	ReferralID   *string     `gorm:"column:referral_id;size:80;index"`
	PartnerRank  PartnerRank `gorm:"column:partner_rank;size:32;not null;default:None"`
	IsAutoRanked bool        `gorm:"column:is_auto_ranked;not null;default:false"`
	Status       string      `gorm:"size:32;not null;default:active"`
	CreatedAt    time.Time   `gorm:"autoCreateTime"`
	UpdatedAt    time.Time   `gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
