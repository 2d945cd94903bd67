package model

import "time"

type CommissionRole string

const (
	RoleAdmin    CommissionRole = "admin"
	RoleDirect   CommissionRole = "direct"
	RoleIndirect CommissionRole = "indirect"
	RoleSelf     CommissionRole = "self"
)

// CommissionSnapshot is a materialized commission breakdown for one
// (recipient, source) pair. It is a cached view of what the live
// allocator would compute; SnapshotAt is the staleness indicator.
type CommissionSnapshot struct {
	ID                   uint64         `gorm:"primaryKey;autoIncrement"`
	RecipientID          string         `gorm:"column:recipient_id;size:64;index;not null"`
	SourceID             string         `gorm:"column:source_id;size:64;index;not null"`
	Role                 CommissionRole `gorm:"column:role;size:16;not null"`
	Rank                 PartnerRank    `gorm:"column:rank;size:32;not null"`
	Depth                int            `gorm:"column:depth;not null"`
	ChainRootID          string         `gorm:"column:chain_root_id;size:64;not null"`
	YourCut              float64        `gorm:"column:your_cut;not null"`
	CommissionPool       float64        `gorm:"column:commission_pool;not null"`
	TradiFee             float64        `gorm:"column:tradi_fee;not null"`
	RemainingPool        float64        `gorm:"column:remaining_pool;not null"`
	TotalUplinerCount    int            `gorm:"column:total_upliner_count;not null"`
	UplinerShare         float64        `gorm:"column:upliner_share;not null"`
	OwnKeep              float64        `gorm:"column:own_keep;not null"`
	TotalChainCommission float64        `gorm:"column:total_chain_commission;not null"`
	SnapshotAt           time.Time      `gorm:"column:snapshot_at;index;not null"`
}

func (CommissionSnapshot) TableName() string {
	return "chain_commission_snapshots"
}
