package service

import (
	"context"

	"github.com/LeeJarvis98/moneyx-partner-backend/internal/model"
	"github.com/LeeJarvis98/moneyx-partner-backend/internal/repository"
	"github.com/sirupsen/logrus"
)

// autoRankSlots is how many top structural chain positions receive an
// elevated launch-incentive rank automatically.
const autoRankSlots = 4

type RankAssignment struct {
	Rank         model.PartnerRank `json:"rank"`
	IsAutoRanked bool              `json:"isAutoRanked"`
	Position     int               `json:"chainPosition"`
}

type RankService interface {
	// AssignInitialRank computes the structural chain position implied by
	// the referral code entered at signup and persists the resulting
	// rank. Not idempotent across different codes; call once, at partner
	// registration.
	AssignInitialRank(ctx context.Context, userID, referralCodeEntered string) (*RankAssignment, error)
}

type rankService struct {
	users repository.UserRepository
	chain ChainService
	log   *logrus.Logger
}

func NewRankService(users repository.UserRepository, chain ChainService, log *logrus.Logger) RankService {
	return &rankService{users: users, chain: chain, log: log}
}

func (s *rankService) AssignInitialRank(ctx context.Context, userID, referralCodeEntered string) (*RankAssignment, error) {
	standardAbove, err := s.chain.CountStandardPartnersAbove(ctx, referralCodeEntered)
	if err != nil {
		return nil, err
	}
	position := standardAbove + 1
	rank := rankForPosition(position)
	auto := position <= autoRankSlots

	if err := s.users.UpdateRank(ctx, userID, rank, auto); err != nil {
		return nil, err
	}
	// A chain resolved moments ago may carry the pre-registration rank.
	s.chain.InvalidateChain(ctx, userID)
	s.log.WithFields(logrus.Fields{
		"user_id":  userID,
		"position": position,
		"rank":     string(rank),
	}).Info("initial partner rank assigned")
	return &RankAssignment{Rank: rank, IsAutoRanked: auto, Position: position}, nil
}

func rankForPosition(position int) model.PartnerRank {
	switch position {
	case 1:
		return model.RankKimCuong
	case 2:
		return model.RankBachKim
	case 3:
		return model.RankVang
	case 4:
		return model.RankBac
	default:
		return model.RankDong
	}
}
