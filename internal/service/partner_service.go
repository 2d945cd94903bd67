package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/LeeJarvis98/moneyx-partner-backend/internal/license"
	"github.com/LeeJarvis98/moneyx-partner-backend/internal/model"
	"github.com/LeeJarvis98/moneyx-partner-backend/internal/repository"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrAlreadyPartner = errors.New("already a partner")
	ErrCodeExhausted  = errors.New("could not generate a unique referral code")
	ErrTypeCooldown   = errors.New("partner type changed within the last 30 days")
)

// codeGenAttempts is how many collision retries referral code
// generation gets before giving up.
const codeGenAttempts = 10

const typeChangeCooldown = 30 * 24 * time.Hour

type RegistrationResult struct {
	Partner       *model.Partner    `json:"partner"`
	OwnReferralID string            `json:"ownReferralId"`
	Rank          model.PartnerRank `json:"rank"`
	IsAutoRanked  bool              `json:"isAutoRanked"`
}

type PartnerService interface {
	// Register enrolls an existing user into the partner program:
	// generates their referral code, assigns the initial rank from the
	// code they entered at signup, and books the license row.
	Register(ctx context.Context, userID, referralCodeEntered string) (*RegistrationResult, error)
	UpdateType(ctx context.Context, userID string, typ model.PartnerType) (*model.Partner, error)
	Details(ctx context.Context, userID string) ([]model.PartnerDetail, error)
	AccrueReward(ctx context.Context, userID, platform string, reward float64) error
}

type partnerService struct {
	users    repository.UserRepository
	codes    repository.ReferralCodeRepository
	partners repository.PartnerRepository
	details  repository.PartnerDetailRepository
	ranks    RankService
	licenses license.Store
	log      *logrus.Logger
	now      func() time.Time
	randInt  func(n int) int
}

func NewPartnerService(
	users repository.UserRepository,
	codes repository.ReferralCodeRepository,
	partners repository.PartnerRepository,
	details repository.PartnerDetailRepository,
	ranks RankService,
	licenses license.Store,
	log *logrus.Logger,
) PartnerService {
	return &partnerService{
		users:    users,
		codes:    codes,
		partners: partners,
		details:  details,
		ranks:    ranks,
		licenses: licenses,
		log:      log,
		now:      time.Now,
		randInt:  rand.Intn,
	}
}

func (s *partnerService) Register(ctx context.Context, userID, referralCodeEntered string) (*RegistrationResult, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if _, err := s.partners.FindByUserID(ctx, user.ID); err == nil {
		return nil, ErrAlreadyPartner
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// The partner row is written last: it is the marker the
	// already-a-partner guard checks, so everything before it must be
	// safe to redo on a retried registration. Rank assignment is
	// idempotent for the same entered code, and ensureCode picks an
	// existing code row back up instead of generating a second one.
	assignment, err := s.ranks.AssignInitialRank(ctx, user.ID, referralCodeEntered)
	if err != nil {
		return nil, err
	}

	code, err := s.ensureCode(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	p := &model.Partner{UserID: user.ID, Type: model.PartnerTypeDTT}
	if err := s.partners.Create(ctx, p); err != nil {
		return nil, err
	}

	// License bookkeeping is best effort; the spreadsheet being down must
	// not block a signup.
	if err := s.licenses.AddRow(ctx, []string{user.ID, user.Email, code, s.now().UTC().Format(time.RFC3339)}); err != nil {
		s.log.WithError(err).WithField("user_id", user.ID).Warn("license bookkeeping failed")
	}

	return &RegistrationResult{
		Partner:       p,
		OwnReferralID: code,
		Rank:          assignment.Rank,
		IsAutoRanked:  assignment.IsAutoRanked,
	}, nil
}

// ensureCode returns the user's referral code, creating the row only
// when none exists yet.
func (s *partnerService) ensureCode(ctx context.Context, userID string) (string, error) {
	rc, err := s.codes.FindByUserID(ctx, userID)
	if err == nil {
		return rc.OwnReferralID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}
	code, err := s.generateCode(ctx, userID)
	if err != nil {
		return "", err
	}
	if err := s.codes.Create(ctx, &model.ReferralCode{UserID: userID, OwnReferralID: code}); err != nil {
		return "", err
	}
	return code, nil
}

// generateCode produces "<userId>-<4 digits>", retrying on collision.
func (s *partnerService) generateCode(ctx context.Context, userID string) (string, error) {
	for i := 0; i < codeGenAttempts; i++ {
		code := fmt.Sprintf("%s-%04d", userID, s.randInt(10000))
		_, err := s.codes.FindOwnerByCode(ctx, code)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", ErrCodeExhausted
}

func (s *partnerService) UpdateType(ctx context.Context, userID string, typ model.PartnerType) (*model.Partner, error) {
	p, err := s.partners.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	now := s.now()
	if p.TypeChangedAt != nil && now.Sub(*p.TypeChangedAt) < typeChangeCooldown {
		return nil, ErrTypeCooldown
	}
	if p.Type == typ {
		return p, nil
	}
	if err := s.partners.UpdateType(ctx, userID, typ, now); err != nil {
		return nil, err
	}
	p.Type = typ
	p.TypeChangedAt = &now
	return p, nil
}

func (s *partnerService) Details(ctx context.Context, userID string) ([]model.PartnerDetail, error) {
	if _, err := s.partners.FindByUserID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.details.ListByPartner(ctx, userID)
}

func (s *partnerService) AccrueReward(ctx context.Context, userID, platform string, reward float64) error {
	if reward <= 0 {
		return errors.New("reward must be positive")
	}
	if _, err := s.partners.FindByUserID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return s.details.AccrueReward(ctx, userID, platform, reward)
}
