package model

import "time"

type PartnerType string

const (
	PartnerTypeDTT  PartnerType = "DTT"
	PartnerTypeDLHT PartnerType = "DLHT"
)

type Partner struct {
	UserID        string      `gorm:"column:user_id;primaryKey;size:64"`
	Type          PartnerType `gorm:"column:type;size:16;not null;default:DTT"`
	TypeChangedAt *time.Time  `gorm:"column:type_changed_at"`
	SupportLink   string      `gorm:"column:support_link;size:512"`
	CreatedAt     time.Time   `gorm:"autoCreateTime"`
	UpdatedAt     time.Time   `gorm:"autoUpdateTime"`
}

func (Partner) TableName() string {
	return "partners"
}
