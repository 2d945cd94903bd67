package service

import (
	"context"
	"errors"
	"testing"

	"github.com/LeeJarvis98/moneyx-partner-backend/internal/model"
)

// stubChain returns a fixed standard-partner count and records cache
// invalidations.
type stubChain struct {
	count       int
	err         error
	invalidated []string
}

func (s *stubChain) ResolveChain(ctx context.Context, idOrEmail string) (*ReferralChain, error) {
	return nil, errors.New("not used")
}

func (s *stubChain) CountStandardPartnersAbove(ctx context.Context, code string) (int, error) {
	return s.count, s.err
}

func (s *stubChain) ResolveDownline(ctx context.Context, idOrEmail string, maxDepth int) ([]DownlineLevel, error) {
	return nil, errors.New("not used")
}

func (s *stubChain) InvalidateChain(ctx context.Context, userID string) {
	s.invalidated = append(s.invalidated, userID)
}

func TestAssignInitialRankMapping(t *testing.T) {
	tests := []struct {
		standardAbove int
		wantRank      model.PartnerRank
		wantAuto      bool
	}{
		{0, model.RankKimCuong, true},
		{1, model.RankBachKim, true},
		{2, model.RankVang, true},
		{3, model.RankBac, true},
		{4, model.RankDong, false},
		{5, model.RankDong, false},
		{20, model.RankDong, false},
	}
	for _, tt := range tests {
		users := newFakeUserRepo()
		users.users["u1"] = &model.User{ID: "u1", Email: "u1@example.com", PartnerRank: model.RankNone}
		svc := NewRankService(users, &stubChain{count: tt.standardAbove}, testLogger())

		got, err := svc.AssignInitialRank(context.Background(), "u1", "any-code")
		if err != nil {
			t.Fatalf("standardAbove=%d: unexpected error: %v", tt.standardAbove, err)
		}
		if got.Rank != tt.wantRank || got.IsAutoRanked != tt.wantAuto {
			t.Fatalf("standardAbove=%d: got (%s,%v) want (%s,%v)",
				tt.standardAbove, got.Rank, got.IsAutoRanked, tt.wantRank, tt.wantAuto)
		}
		if got.Position != tt.standardAbove+1 {
			t.Fatalf("standardAbove=%d: position=%d", tt.standardAbove, got.Position)
		}
		// Persisted on the user row.
		u := users.users["u1"]
		if u.PartnerRank != tt.wantRank || u.IsAutoRanked != tt.wantAuto {
			t.Fatalf("standardAbove=%d: persisted (%s,%v)", tt.standardAbove, u.PartnerRank, u.IsAutoRanked)
		}
	}
}

func TestAssignInitialRankInvalidatesCachedChain(t *testing.T) {
	users := newFakeUserRepo()
	users.users["u1"] = &model.User{ID: "u1", PartnerRank: model.RankNone}
	chain := &stubChain{count: 0}
	svc := NewRankService(users, chain, testLogger())

	if _, err := svc.AssignInitialRank(context.Background(), "u1", "code"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chain.invalidated) != 1 || chain.invalidated[0] != "u1" {
		t.Fatalf("invalidated=%v want [u1]", chain.invalidated)
	}
}

func TestAssignInitialRankPersistFailurePropagates(t *testing.T) {
	users := newFakeUserRepo() // no such user, UpdateRank fails
	chain := &stubChain{count: 0}
	svc := NewRankService(users, chain, testLogger())
	if _, err := svc.AssignInitialRank(context.Background(), "missing", "code"); err == nil {
		t.Fatal("expected error when rank persistence fails")
	}
	// Nothing was persisted, so nothing gets invalidated.
	if len(chain.invalidated) != 0 {
		t.Fatalf("invalidated=%v want none", chain.invalidated)
	}
}

func TestAssignInitialRankCountErrorPropagates(t *testing.T) {
	users := newFakeUserRepo()
	users.users["u1"] = &model.User{ID: "u1"}
	boom := errors.New("store down")
	svc := NewRankService(users, &stubChain{err: boom}, testLogger())
	if _, err := svc.AssignInitialRank(context.Background(), "u1", "code"); !errors.Is(err, boom) {
		t.Fatalf("err=%v want store error", err)
	}
}
