package service

import (
	"context"
	"errors"
	"strings"

	"github.com/LeeJarvis98/moneyx-partner-backend/internal/cache"
	"github.com/LeeJarvis98/moneyx-partner-backend/internal/metrics"
	"github.com/LeeJarvis98/moneyx-partner-backend/internal/model"
	"github.com/LeeJarvis98/moneyx-partner-backend/internal/repository"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("not found")

// maxChainHops bounds every traversal regardless of cycle detection,
// so a corrupted edge set cannot turn one request into an unbounded
// sequence of store round-trips.
const maxChainHops = 50

// maxDownlineDepth bounds downward expansion the same way.
const maxDownlineDepth = 50

type ChainMember struct {
	UserID string            `json:"userId"`
	Email  string            `json:"email"`
	Rank   model.PartnerRank `json:"partnerRank"`
}

// ReferralChain is the ordered ancestor chain of a user, root first,
// target last.
type ReferralChain struct {
	UserID           string        `json:"userId"`
	Members          []ChainMember `json:"chain"`
	Depth            int           `json:"depth"`
	DirectReferrerID string        `json:"directReferrerId"`
}

func (c *ReferralChain) Length() int {
	return len(c.Members)
}

// Root returns the topmost member of the chain.
func (c *ReferralChain) Root() ChainMember {
	return c.Members[0]
}

type DownlineLevel struct {
	Depth   int           `json:"depth"`
	Members []ChainMember `json:"members"`
}

type ChainService interface {
	// ResolveChain accepts a user id or an email and reconstructs the
	// full upline chain of that user, root to target.
	ResolveChain(ctx context.Context, idOrEmail string) (*ReferralChain, error)
	// CountStandardPartnersAbove walks up from a referral code and counts
	// non-system-rank users, stopping at the first system rank.
	CountStandardPartnersAbove(ctx context.Context, referralCode string) (int, error)
	// ResolveDownline expands the referral subtree below a user, level by
	// level, down to maxDepth (capped at maxDownlineDepth).
	ResolveDownline(ctx context.Context, idOrEmail string, maxDepth int) ([]DownlineLevel, error)
	// InvalidateChain drops the cached chain for a user after a rank or
	// edge change, so the next resolution is not served a stale copy.
	InvalidateChain(ctx context.Context, userID string)
}

type chainService struct {
	users repository.UserRepository
	codes repository.ReferralCodeRepository
	cc    *cache.ChainCache
	log   *logrus.Logger
}

func NewChainService(users repository.UserRepository, codes repository.ReferralCodeRepository, cc *cache.ChainCache, log *logrus.Logger) ChainService {
	return &chainService{users: users, codes: codes, cc: cc, log: log}
}

// findUser resolves an identifier that may be a user id or an email.
func (s *chainService) findUser(ctx context.Context, idOrEmail string) (*model.User, error) {
	return resolveUserByIDOrEmail(ctx, s.users, idOrEmail)
}

func resolveUserByIDOrEmail(ctx context.Context, users repository.UserRepository, idOrEmail string) (*model.User, error) {
	u, err := users.FindByID(ctx, idOrEmail)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if !strings.Contains(idOrEmail, "@") {
		return nil, ErrNotFound
	}
	u, err = users.FindByEmail(ctx, idOrEmail)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// walkUp is the single traversal primitive behind ResolveChain and
// CountStandardPartnersAbove. It calls visit for each user starting at
// start; visit returning false stops the walk. A dangling referral
// code or a missing owner row ends the chain without error. Cycles,
// self-referrals and the hop cap end the walk too; those get logged
// and counted but are never surfaced as failures. Store errors abort.
func (s *chainService) walkUp(ctx context.Context, start *model.User, visit func(*model.User) bool) error {
	visited := make(map[string]bool, 8)
	cur := start
	hops := 0
	defer func() { metrics.ChainWalkHops.Observe(float64(hops)) }()

	for ; hops < maxChainHops; hops++ {
		visited[cur.ID] = true
		if !visit(cur) {
			return nil
		}
		if cur.ReferralID == nil || *cur.ReferralID == "" {
			return nil
		}
		owner, err := s.codes.FindOwnerByCode(ctx, *cur.ReferralID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Dangling code: a legitimate chain end.
				return nil
			}
			return err
		}
		if owner.UserID == cur.ID {
			s.guardTripped("self_referral", cur.ID)
			return nil
		}
		if visited[owner.UserID] {
			s.guardTripped("cycle", cur.ID)
			return nil
		}
		next, err := s.users.FindByID(ctx, owner.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Code owned by a deleted user: truncate here.
				return nil
			}
			return err
		}
		cur = next
	}
	s.guardTripped("depth_limit", start.ID)
	return nil
}

func (s *chainService) guardTripped(reason, userID string) {
	metrics.StructuralGuardTrips.WithLabelValues(reason).Inc()
	s.log.WithFields(logrus.Fields{
		"reason":  reason,
		"user_id": userID,
	}).Warn("referral chain walk stopped by structural guard")
}

func (s *chainService) ResolveChain(ctx context.Context, idOrEmail string) (*ReferralChain, error) {
	target, err := s.findUser(ctx, idOrEmail)
	if err != nil {
		return nil, err
	}

	var chain ReferralChain
	if s.cc.Get(ctx, target.ID, &chain) {
		return &chain, nil
	}

	// Collected target-first, reversed below.
	var members []ChainMember
	err = s.walkUp(ctx, target, func(u *model.User) bool {
		members = append(members, ChainMember{UserID: u.ID, Email: u.Email, Rank: u.PartnerRank})
		return true
	})
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(members)-1; i < j; i, j = i+1, j-1 {
		members[i], members[j] = members[j], members[i]
	}

	chain = ReferralChain{
		UserID:  target.ID,
		Members: members,
		Depth:   len(members) - 1,
	}
	if len(members) > 1 {
		chain.DirectReferrerID = members[len(members)-2].UserID
	}
	s.cc.Set(ctx, target.ID, &chain)
	return &chain, nil
}

func (s *chainService) InvalidateChain(ctx context.Context, userID string) {
	s.cc.Invalidate(ctx, userID)
}

func (s *chainService) CountStandardPartnersAbove(ctx context.Context, referralCode string) (int, error) {
	owner, err := s.codes.FindOwnerByCode(ctx, referralCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	start, err := s.users.FindByID(ctx, owner.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}

	count := 0
	err = s.walkUp(ctx, start, func(u *model.User) bool {
		if u.PartnerRank.IsSystem() {
			// System ranks sit at the top of every chain; nothing above
			// them can be a standard partner.
			return false
		}
		count++
		return true
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *chainService) ResolveDownline(ctx context.Context, idOrEmail string, maxDepth int) ([]DownlineLevel, error) {
	root, err := s.findUser(ctx, idOrEmail)
	if err != nil {
		return nil, err
	}
	if maxDepth <= 0 || maxDepth > maxDownlineDepth {
		maxDepth = maxDownlineDepth
	}

	visited := map[string]bool{root.ID: true}
	frontier := []string{root.ID}
	var levels []DownlineLevel

	for depth := 1; depth <= maxDepth && len(frontier) > 0; depth++ {
		codeRows, err := s.codes.FindByUserIDs(ctx, frontier)
		if err != nil {
			return nil, err
		}
		codes := make([]string, 0, len(codeRows))
		for _, rc := range codeRows {
			codes = append(codes, rc.OwnReferralID)
		}
		children, err := s.users.ListByReferralIDs(ctx, codes)
		if err != nil {
			return nil, err
		}

		level := DownlineLevel{Depth: depth}
		frontier = frontier[:0]
		for i := range children {
			c := &children[i]
			if visited[c.ID] {
				s.guardTripped("cycle", c.ID)
				continue
			}
			visited[c.ID] = true
			level.Members = append(level.Members, ChainMember{UserID: c.ID, Email: c.Email, Rank: c.PartnerRank})
			frontier = append(frontier, c.ID)
		}
		if len(level.Members) == 0 {
			break
		}
		levels = append(levels, level)
	}
	return levels, nil
}
