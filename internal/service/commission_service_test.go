package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/LeeJarvis98/moneyx-partner-backend/internal/model"
)

var testPolicy = CommissionPolicy{PoolPercent: 80, FeePercent: 5, UplinerSharePercent: 50}

// commissionFixture: admin -> direct -> source with 1000 reward on the
// source. With the test policy: pool 800, fee 40, remaining 760,
// upliner share 380 (190 each), own keep 380.
func commissionFixture() (*fixture, *fakeDetailRepo, *fakeSnapshotRepo, CommissionService) {
	f := buildChain("admin", "direct", "source")
	details := newFakeDetailRepo()
	details.rewards["source"] = 1000
	snapshots := newFakeSnapshotRepo()
	svc := NewCommissionService(f.users, details, snapshots, f.chainService(), testPolicy, testLogger())
	return f, details, snapshots, svc
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestComputeForRecipientRolesAndCuts(t *testing.T) {
	_, _, _, svc := commissionFixture()

	tests := []struct {
		recipient string
		wantRole  model.CommissionRole
		wantCut   float64
		wantDepth int
	}{
		{"source", model.RoleSelf, 380, 0},
		{"direct", model.RoleDirect, 190, 1},
		{"admin", model.RoleAdmin, 190, 2},
	}
	for _, tt := range tests {
		t.Run(tt.recipient, func(t *testing.T) {
			b, err := svc.ComputeForRecipient(context.Background(), tt.recipient, "source")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if b.Role != tt.wantRole {
				t.Fatalf("role=%s want %s", b.Role, tt.wantRole)
			}
			if !almostEqual(b.YourCut, tt.wantCut) {
				t.Fatalf("yourCut=%v want %v", b.YourCut, tt.wantCut)
			}
			if b.Depth != tt.wantDepth {
				t.Fatalf("depth=%d want %d", b.Depth, tt.wantDepth)
			}
			if !almostEqual(b.CommissionPool, 800) || !almostEqual(b.TradiFee, 40) || !almostEqual(b.RemainingPool, 760) {
				t.Fatalf("pool breakdown wrong: %+v", b)
			}
			if b.TotalUplinerCount != 2 || !almostEqual(b.UplinerShare, 380) || !almostEqual(b.OwnKeep, 380) {
				t.Fatalf("split wrong: %+v", b)
			}
			if !almostEqual(b.TotalChainCommission, 760) {
				t.Fatalf("totalChainCommission=%v want 760", b.TotalChainCommission)
			}
			if b.ChainRootID != "admin" {
				t.Fatalf("chainRootId=%s want admin", b.ChainRootID)
			}
		})
	}
}

func TestComputeForRecipientOutsideChain(t *testing.T) {
	f, _, _, svc := commissionFixture()
	f.addUser("stranger", model.RankDong, "")
	if _, err := svc.ComputeForRecipient(context.Background(), "stranger", "source"); !errors.Is(err, ErrNotInChain) {
		t.Fatalf("err=%v want ErrNotInChain", err)
	}
}

func TestComputeForRecipientNotFound(t *testing.T) {
	_, _, _, svc := commissionFixture()
	if _, err := svc.ComputeForRecipient(context.Background(), "ghost", "source"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err=%v want ErrNotFound", err)
	}
}

func TestSoloSourceKeepsRemainingPool(t *testing.T) {
	f := newFixture()
	f.addUser("solo", model.RankDong, "")
	details := newFakeDetailRepo()
	details.rewards["solo"] = 100
	svc := NewCommissionService(f.users, details, newFakeSnapshotRepo(), f.chainService(), testPolicy, testLogger())

	b, err := svc.ComputeForRecipient(context.Background(), "solo", "solo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// pool 80, fee 4, remaining 76; no uplines so nothing is shared.
	if b.TotalUplinerCount != 0 || !almostEqual(b.UplinerShare, 0) || !almostEqual(b.OwnKeep, 76) || !almostEqual(b.YourCut, 76) {
		t.Fatalf("solo split wrong: %+v", b)
	}
}

func TestSnapshotLiveEquivalence(t *testing.T) {
	_, _, _, svc := commissionFixture()

	n, err := svc.RebuildForSource(context.Background(), "source")
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if n != 3 {
		t.Fatalf("rebuilt %d rows, want 3", n)
	}

	for _, recipient := range []string{"admin", "direct", "source"} {
		live, err := svc.ComputeForRecipient(context.Background(), recipient, "source")
		if err != nil {
			t.Fatalf("live %s: %v", recipient, err)
		}
		rows, err := svc.ListSnapshots(context.Background(), recipient)
		if err != nil {
			t.Fatalf("snapshots %s: %v", recipient, err)
		}
		if len(rows) != 1 {
			t.Fatalf("snapshots for %s: got %d rows", recipient, len(rows))
		}
		snap := rows[0]
		if snap.Role != live.Role {
			t.Fatalf("%s: snapshot role %s != live %s", recipient, snap.Role, live.Role)
		}
		if !almostEqual(snap.YourCut, live.YourCut) {
			t.Fatalf("%s: snapshot cut %v != live %v", recipient, snap.YourCut, live.YourCut)
		}
		if !almostEqual(snap.TotalChainCommission, live.TotalChainCommission) {
			t.Fatalf("%s: snapshot total %v != live %v", recipient, snap.TotalChainCommission, live.TotalChainCommission)
		}
		if snap.Depth != live.Depth || snap.ChainRootID != live.ChainRootID {
			t.Fatalf("%s: snapshot chain fields diverge: %+v vs %+v", recipient, snap, live)
		}
	}
}

func TestListSnapshotsEmptyIsNotAnError(t *testing.T) {
	_, _, _, svc := commissionFixture()
	rows, err := svc.ListSnapshots(context.Background(), "direct")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows == nil || len(rows) != 0 {
		t.Fatalf("rows=%#v want empty non-nil slice", rows)
	}
}

func TestRebuildReplacesStaleRows(t *testing.T) {
	_, details, snapshots, svc := commissionFixture()

	if _, err := svc.RebuildForSource(context.Background(), "source"); err != nil {
		t.Fatalf("first rebuild: %v", err)
	}
	details.rewards["source"] = 2000
	if _, err := svc.RebuildForSource(context.Background(), "source"); err != nil {
		t.Fatalf("second rebuild: %v", err)
	}
	if len(snapshots.rows) != 3 {
		t.Fatalf("rows=%d want 3 after replace", len(snapshots.rows))
	}
	for _, row := range snapshots.rows {
		if !almostEqual(row.CommissionPool, 1600) {
			t.Fatalf("stale pool survived replace: %+v", row)
		}
	}
}
