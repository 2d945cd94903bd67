package repository

import (
	"context"
	"time"

	"github.com/LeeJarvis98/moneyx-partner-backend/internal/model"
	"gorm.io/gorm"
)

type PartnerRepository interface {
	Create(ctx context.Context, p *model.Partner) error
	FindByUserID(ctx context.Context, userID string) (*model.Partner, error)
	UpdateType(ctx context.Context, userID string, typ model.PartnerType, changedAt time.Time) error
}

type partnerRepository struct {
	db *gorm.DB
}

func NewPartnerRepository(db *gorm.DB) PartnerRepository {
	return &partnerRepository{db: db}
}

func (r *partnerRepository) Create(ctx context.Context, p *model.Partner) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *partnerRepository) FindByUserID(ctx context.Context, userID string) (*model.Partner, error) {
	var p model.Partner
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *partnerRepository) UpdateType(ctx context.Context, userID string, typ model.PartnerType, changedAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&model.Partner{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"type":            typ,
			"type_changed_at": changedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
