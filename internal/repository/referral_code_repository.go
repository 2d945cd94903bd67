package repository

import (
	"context"

	"github.com/LeeJarvis98/moneyx-partner-backend/internal/model"
	"gorm.io/gorm"
)

type ReferralCodeRepository interface {
	Create(ctx context.Context, rc *model.ReferralCode) error
	FindByUserID(ctx context.Context, userID string) (*model.ReferralCode, error)
	// FindByUserIDs fetches the code rows for a set of users in one query,
	// for level-by-level downline expansion.
	FindByUserIDs(ctx context.Context, userIDs []string) ([]model.ReferralCode, error)
	FindOwnerByCode(ctx context.Context, code string) (*model.ReferralCode, error)
}

type referralCodeRepository struct {
	db *gorm.DB
}

func NewReferralCodeRepository(db *gorm.DB) ReferralCodeRepository {
	return &referralCodeRepository{db: db}
}

func (r *referralCodeRepository) Create(ctx context.Context, rc *model.ReferralCode) error {
	return r.db.WithContext(ctx).Create(rc).Error
}

func (r *referralCodeRepository) FindByUserID(ctx context.Context, userID string) (*model.ReferralCode, error) {
	var rc model.ReferralCode
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&rc).Error; err != nil {
		return nil, err
	}
	return &rc, nil
}

func (r *referralCodeRepository) FindByUserIDs(ctx context.Context, userIDs []string) ([]model.ReferralCode, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var list []model.ReferralCode
	if err := r.db.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *referralCodeRepository) FindOwnerByCode(ctx context.Context, code string) (*model.ReferralCode, error) {
	var rc model.ReferralCode
	if err := r.db.WithContext(ctx).Where("own_referral_id = ?", code).First(&rc).Error; err != nil {
		return nil, err
	}
	return &rc, nil
}
