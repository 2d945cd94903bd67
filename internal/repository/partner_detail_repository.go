package repository

import (
	"context"

	"github.com/LeeJarvis98/moneyx-partner-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PartnerDetailRepository interface {
	ListByPartner(ctx context.Context, partnerID string) ([]model.PartnerDetail, error)
	// AccrueReward adds to the reward figure for one (partner, platform)
	// row, creating the row when it does not exist yet.
	AccrueReward(ctx context.Context, partnerID, platform string, reward float64) error
	// TotalReward sums accrued rewards across all platforms of a partner.
	TotalReward(ctx context.Context, partnerID string) (float64, error)
}

type partnerDetailRepository struct {
	db *gorm.DB
}

func NewPartnerDetailRepository(db *gorm.DB) PartnerDetailRepository {
	return &partnerDetailRepository{db: db}
}

func (r *partnerDetailRepository) ListByPartner(ctx context.Context, partnerID string) ([]model.PartnerDetail, error) {
	var list []model.PartnerDetail
	if err := r.db.WithContext(ctx).
		Where("partner_id = ?", partnerID).
		Order("platform ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *partnerDetailRepository) AccrueReward(ctx context.Context, partnerID, platform string, reward float64) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "partner_id"}, {Name: "platform"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"accrued_reward": gorm.Expr("accrued_reward + ?", reward)}),
	}).Create(&model.PartnerDetail{PartnerID: partnerID, Platform: platform, AccruedReward: reward}).Error
}

func (r *partnerDetailRepository) TotalReward(ctx context.Context, partnerID string) (float64, error) {
	var total float64
	if err := r.db.WithContext(ctx).
		Model(&model.PartnerDetail{}).
		Where("partner_id = ?", partnerID).
		Select("COALESCE(SUM(accrued_reward), 0)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
