package repository

import (
	"context"

	"github.com/LeeJarvis98/moneyx-partner-backend/internal/model"
	"gorm.io/gorm"
)

type CommissionSnapshotRepository interface {
	ListByRecipient(ctx context.Context, recipientID string) ([]model.CommissionSnapshot, error)
	FindByPair(ctx context.Context, recipientID, sourceID string) (*model.CommissionSnapshot, error)
	// ReplaceForSource atomically swaps all snapshot rows for a source
	// chain, so readers never observe a half-rebuilt breakdown.
	ReplaceForSource(ctx context.Context, sourceID string, rows []model.CommissionSnapshot) error
}

type commissionSnapshotRepository struct {
	db *gorm.DB
}

func NewCommissionSnapshotRepository(db *gorm.DB) CommissionSnapshotRepository {
	return &commissionSnapshotRepository{db: db}
}

func (r *commissionSnapshotRepository) ListByRecipient(ctx context.Context, recipientID string) ([]model.CommissionSnapshot, error) {
	var list []model.CommissionSnapshot
	if err := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("snapshot_at DESC, id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *commissionSnapshotRepository) FindByPair(ctx context.Context, recipientID, sourceID string) (*model.CommissionSnapshot, error) {
	var s model.CommissionSnapshot
	if err := r.db.WithContext(ctx).
		Where("recipient_id = ? AND source_id = ?", recipientID, sourceID).
		Order("snapshot_at DESC, id DESC").
		First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *commissionSnapshotRepository) ReplaceForSource(ctx context.Context, sourceID string, rows []model.CommissionSnapshot) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("source_id = ?", sourceID).Delete(&model.CommissionSnapshot{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}
