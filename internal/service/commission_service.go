package service

import (
	"context"
	"errors"
	"time"

	"github.com/LeeJarvis98/moneyx-partner-backend/internal/metrics"
	"github.com/LeeJarvis98/moneyx-partner-backend/internal/model"
	"github.com/LeeJarvis98/moneyx-partner-backend/internal/repository"
	"github.com/sirupsen/logrus"
)

// ErrNotInChain means the recipient has no commission relationship
// with the source: they are neither the source nor one of its uplines.
var ErrNotInChain = errors.New("recipient not in source chain")

// CommissionPolicy is external business policy, not algorithm: the
// exact percentages are injected from configuration. The upliner share
// divides evenly across uplines.
type CommissionPolicy struct {
	PoolPercent         float64
	FeePercent          float64
	UplinerSharePercent float64
}

type CommissionBreakdown struct {
	RecipientID          string               `json:"recipientId"`
	SourceID             string               `json:"sourceId"`
	Role                 model.CommissionRole `json:"role"`
	Rank                 model.PartnerRank    `json:"rank"`
	Depth                int                  `json:"depth"`
	ChainRootID          string               `json:"chainRootId"`
	YourCut              float64              `json:"yourCut"`
	CommissionPool       float64              `json:"commissionPool"`
	TradiFee             float64              `json:"tradiFee"`
	RemainingPool        float64              `json:"remainingPool"`
	TotalUplinerCount    int                  `json:"totalUplinerCount"`
	UplinerShare         float64              `json:"uplinerShare"`
	OwnKeep              float64              `json:"ownKeep"`
	TotalChainCommission float64              `json:"totalChainCommission"`
}

type CommissionService interface {
	// ComputeForRecipient walks the source's chain live and computes the
	// recipient's cut of the source's accrued reward.
	ComputeForRecipient(ctx context.Context, recipientIDOrEmail, sourceIDOrEmail string) (*CommissionBreakdown, error)
	// ListSnapshots returns materialized breakdowns for a recipient,
	// newest first. An empty result is valid.
	ListSnapshots(ctx context.Context, recipientIDOrEmail string) ([]model.CommissionSnapshot, error)
	// RebuildForSource rematerializes snapshot rows for every member of
	// the source's chain and returns the row count. The batch process
	// behind stale snapshots.
	RebuildForSource(ctx context.Context, sourceIDOrEmail string) (int, error)
}

type commissionService struct {
	users     repository.UserRepository
	details   repository.PartnerDetailRepository
	snapshots repository.CommissionSnapshotRepository
	chain     ChainService
	policy    CommissionPolicy
	log       *logrus.Logger
}

func NewCommissionService(
	users repository.UserRepository,
	details repository.PartnerDetailRepository,
	snapshots repository.CommissionSnapshotRepository,
	chain ChainService,
	policy CommissionPolicy,
	log *logrus.Logger,
) CommissionService {
	return &commissionService{users: users, details: details, snapshots: snapshots, chain: chain, policy: policy, log: log}
}

// chainSplit is the per-chain part of a breakdown, identical for every
// recipient of the same source.
type chainSplit struct {
	pool         float64
	fee          float64
	remaining    float64
	uplinerCount int
	uplinerShare float64
	perUpliner   float64
	ownKeep      float64
}

func (p CommissionPolicy) split(reward float64, uplinerCount int) chainSplit {
	s := chainSplit{uplinerCount: uplinerCount}
	s.pool = reward * p.PoolPercent / 100
	s.fee = s.pool * p.FeePercent / 100
	s.remaining = s.pool - s.fee
	if uplinerCount > 0 {
		s.uplinerShare = s.remaining * p.UplinerSharePercent / 100
		s.perUpliner = s.uplinerShare / float64(uplinerCount)
	}
	s.ownKeep = s.remaining - s.uplinerShare
	return s
}

// roleFor classifies a chain member relative to the source. depth is
// the member's hop distance from the source; 0 means the source itself.
func roleFor(rank model.PartnerRank, depth int) model.CommissionRole {
	switch {
	case depth == 0:
		return model.RoleSelf
	case rank.IsSystem():
		return model.RoleAdmin
	case depth == 1:
		return model.RoleDirect
	default:
		return model.RoleIndirect
	}
}

// breakdownFor builds the breakdown for the chain member at index idx.
// Both the live path and the snapshot rebuild go through here, which
// is what keeps the two numerically identical.
func (s *commissionService) breakdownFor(chain *ReferralChain, split chainSplit, idx int) CommissionBreakdown {
	m := chain.Members[idx]
	depth := len(chain.Members) - 1 - idx
	role := roleFor(m.Rank, depth)
	cut := split.perUpliner
	if role == model.RoleSelf {
		cut = split.ownKeep
	}
	return CommissionBreakdown{
		RecipientID:          m.UserID,
		SourceID:             chain.UserID,
		Role:                 role,
		Rank:                 m.Rank,
		Depth:                depth,
		ChainRootID:          chain.Root().UserID,
		YourCut:              cut,
		CommissionPool:       split.pool,
		TradiFee:             split.fee,
		RemainingPool:        split.remaining,
		TotalUplinerCount:    split.uplinerCount,
		UplinerShare:         split.uplinerShare,
		OwnKeep:              split.ownKeep,
		TotalChainCommission: split.ownKeep + split.uplinerShare,
	}
}

func (s *commissionService) resolveSource(ctx context.Context, sourceIDOrEmail string) (*ReferralChain, chainSplit, error) {
	chain, err := s.chain.ResolveChain(ctx, sourceIDOrEmail)
	if err != nil {
		return nil, chainSplit{}, err
	}
	reward, err := s.details.TotalReward(ctx, chain.UserID)
	if err != nil {
		return nil, chainSplit{}, err
	}
	return chain, s.policy.split(reward, chain.Length()-1), nil
}

func (s *commissionService) ComputeForRecipient(ctx context.Context, recipientIDOrEmail, sourceIDOrEmail string) (*CommissionBreakdown, error) {
	recipient, err := resolveUserByIDOrEmail(ctx, s.users, recipientIDOrEmail)
	if err != nil {
		return nil, err
	}
	chain, split, err := s.resolveSource(ctx, sourceIDOrEmail)
	if err != nil {
		return nil, err
	}
	for i := range chain.Members {
		if chain.Members[i].UserID == recipient.ID {
			b := s.breakdownFor(chain, split, i)
			return &b, nil
		}
	}
	return nil, ErrNotInChain
}

func (s *commissionService) ListSnapshots(ctx context.Context, recipientIDOrEmail string) ([]model.CommissionSnapshot, error) {
	recipient, err := resolveUserByIDOrEmail(ctx, s.users, recipientIDOrEmail)
	if err != nil {
		return nil, err
	}
	rows, err := s.snapshots.ListByRecipient(ctx, recipient.ID)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []model.CommissionSnapshot{}
	}
	return rows, nil
}

func (s *commissionService) RebuildForSource(ctx context.Context, sourceIDOrEmail string) (int, error) {
	chain, split, err := s.resolveSource(ctx, sourceIDOrEmail)
	if err != nil {
		return 0, err
	}
	now := time.Now().UTC()
	rows := make([]model.CommissionSnapshot, 0, chain.Length())
	for i := range chain.Members {
		b := s.breakdownFor(chain, split, i)
		rows = append(rows, model.CommissionSnapshot{
			RecipientID:          b.RecipientID,
			SourceID:             b.SourceID,
			Role:                 b.Role,
			Rank:                 b.Rank,
			Depth:                b.Depth,
			ChainRootID:          b.ChainRootID,
			YourCut:              b.YourCut,
			CommissionPool:       b.CommissionPool,
			TradiFee:             b.TradiFee,
			RemainingPool:        b.RemainingPool,
			TotalUplinerCount:    b.TotalUplinerCount,
			UplinerShare:         b.UplinerShare,
			OwnKeep:              b.OwnKeep,
			TotalChainCommission: b.TotalChainCommission,
			SnapshotAt:           now,
		})
	}
	if err := s.snapshots.ReplaceForSource(ctx, chain.UserID, rows); err != nil {
		return 0, err
	}
	metrics.SnapshotRebuilds.Inc()
	s.log.WithFields(logrus.Fields{
		"source_id": chain.UserID,
		"rows":      len(rows),
	}).Info("commission snapshots rebuilt")
	return len(rows), nil
}
