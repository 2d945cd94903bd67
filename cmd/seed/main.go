package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/LeeJarvis98/moneyx-partner-backend/internal/config"
	"github.com/LeeJarvis98/moneyx-partner-backend/internal/db"
	"github.com/LeeJarvis98/moneyx-partner-backend/internal/model"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seeds a demo referral chain: one admin at the top, four tiered
// partners below, each referred by the previous one, with reward
// figures to exercise the commission endpoints against.
type seedPartner struct {
	Email  string
	Rank   model.PartnerRank
	Auto   bool
	Reward float64
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run() error {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	gdb, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	if err := db.Migrate(gdb); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	canSeed, err := shouldSeed(ctx, gdb)
	if err != nil {
		return err
	}
	if !canSeed {
		log.Printf("users already exist; skipping seed (set FORCE_SEED=true to override)")
		return nil
	}

	partners := []seedPartner{
		{Email: "admin@moneyx.vn", Rank: model.RankAdmin},
		{Email: "p1@moneyx.vn", Rank: model.RankKimCuong, Auto: true, Reward: 1200},
		{Email: "p2@moneyx.vn", Rank: model.RankBachKim, Auto: true, Reward: 800},
		{Email: "p3@moneyx.vn", Rank: model.RankVang, Auto: true, Reward: 450},
		{Email: "p4@moneyx.vn", Rank: model.RankBac, Auto: true, Reward: 150},
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("changeme-seed"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var parentCode *string
		for i, p := range partners {
			id := uuid.NewString()
			u := &model.User{
				ID:           id,
				Email:        p.Email,
				PasswordHash: string(hash),
				ReferralID:   parentCode,
				PartnerRank:  p.Rank,
				IsAutoRanked: p.Auto,
				Status:       "active",
			}
			if err := tx.Create(u).Error; err != nil {
				return fmt.Errorf("create user %s: %w", p.Email, err)
			}
			code := fmt.Sprintf("%s-%04d", id, 1000+i)
			if err := tx.Create(&model.ReferralCode{UserID: id, OwnReferralID: code}).Error; err != nil {
				return fmt.Errorf("create code for %s: %w", p.Email, err)
			}
			if p.Rank != model.RankAdmin {
				if err := tx.Create(&model.Partner{UserID: id, Type: model.PartnerTypeDTT}).Error; err != nil {
					return fmt.Errorf("create partner %s: %w", p.Email, err)
				}
				if err := tx.Create(&model.PartnerDetail{
					PartnerID:     id,
					Platform:      "exness",
					AccruedReward: p.Reward,
					TotalClients:  (5 - i) * 3,
					TotalLots:     p.Reward / 10,
				}).Error; err != nil {
					return fmt.Errorf("create detail %s: %w", p.Email, err)
				}
			}
			parentCode = &code
		}
		log.Printf("seeded %d users in one referral chain", len(partners))
		return nil
	})
}

func shouldSeed(ctx context.Context, gdb *gorm.DB) (bool, error) {
	var cnt int64
	if err := gdb.WithContext(ctx).Model(&model.User{}).Count(&cnt).Error; err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	if cnt == 0 {
		return true, nil
	}
	force := os.Getenv("FORCE_SEED")
	return strings.EqualFold(force, "true"), nil
}
