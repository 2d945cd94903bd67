package service

import (
	"context"
	"io"
	"sort"
	"time"

	"github.com/LeeJarvis98/moneyx-partner-backend/internal/model"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type fakeUserRepo struct {
	users map[string]*model.User
	// errOnID forces a store error when FindByID is called with this id.
	errOnID string
	err     error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*model.User{}}
}

func (r *fakeUserRepo) Create(ctx context.Context, u *model.User) error {
	if _, ok := r.users[u.ID]; ok {
		return gorm.ErrDuplicatedKey
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if r.errOnID != "" && id == r.errOnID {
		return nil, r.err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) ListByReferralIDs(ctx context.Context, codes []string) ([]model.User, error) {
	set := map[string]bool{}
	for _, c := range codes {
		set[c] = true
	}
	var out []model.User
	for _, u := range r.users {
		if u.ReferralID != nil && set[*u.ReferralID] {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeUserRepo) UpdateRank(ctx context.Context, id string, rank model.PartnerRank, autoRanked bool) error {
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.PartnerRank = rank
	u.IsAutoRanked = autoRanked
	return nil
}

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, id, hash string) error {
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.PasswordHash = hash
	return nil
}

type fakeCodeRepo struct {
	byCode map[string]*model.ReferralCode
	byUser map[string]*model.ReferralCode
	// errOnCode forces a store error when FindOwnerByCode sees this code.
	errOnCode string
	err       error
}

func newFakeCodeRepo() *fakeCodeRepo {
	return &fakeCodeRepo{byCode: map[string]*model.ReferralCode{}, byUser: map[string]*model.ReferralCode{}}
}

func (r *fakeCodeRepo) Create(ctx context.Context, rc *model.ReferralCode) error {
	if _, ok := r.byCode[rc.OwnReferralID]; ok {
		return gorm.ErrDuplicatedKey
	}
	cp := *rc
	r.byCode[rc.OwnReferralID] = &cp
	r.byUser[rc.UserID] = &cp
	return nil
}

func (r *fakeCodeRepo) FindByUserID(ctx context.Context, userID string) (*model.ReferralCode, error) {
	rc, ok := r.byUser[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *rc
	return &cp, nil
}

func (r *fakeCodeRepo) FindByUserIDs(ctx context.Context, userIDs []string) ([]model.ReferralCode, error) {
	var out []model.ReferralCode
	for _, id := range userIDs {
		if rc, ok := r.byUser[id]; ok {
			out = append(out, *rc)
		}
	}
	return out, nil
}

func (r *fakeCodeRepo) FindOwnerByCode(ctx context.Context, code string) (*model.ReferralCode, error) {
	if r.errOnCode != "" && code == r.errOnCode {
		return nil, r.err
	}
	rc, ok := r.byCode[code]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *rc
	return &cp, nil
}

type fakePartnerRepo struct {
	partners map[string]*model.Partner
	// createErr fails the next Create call, then clears.
	createErr error
}

func newFakePartnerRepo() *fakePartnerRepo {
	return &fakePartnerRepo{partners: map[string]*model.Partner{}}
}

func (r *fakePartnerRepo) Create(ctx context.Context, p *model.Partner) error {
	if r.createErr != nil {
		err := r.createErr
		r.createErr = nil
		return err
	}
	if _, ok := r.partners[p.UserID]; ok {
		return gorm.ErrDuplicatedKey
	}
	cp := *p
	r.partners[p.UserID] = &cp
	return nil
}

func (r *fakePartnerRepo) FindByUserID(ctx context.Context, userID string) (*model.Partner, error) {
	p, ok := r.partners[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePartnerRepo) UpdateType(ctx context.Context, userID string, typ model.PartnerType, changedAt time.Time) error {
	p, ok := r.partners[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Type = typ
	p.TypeChangedAt = &changedAt
	return nil
}

type fakeDetailRepo struct {
	rewards map[string]float64
	details map[string][]model.PartnerDetail
}

func newFakeDetailRepo() *fakeDetailRepo {
	return &fakeDetailRepo{rewards: map[string]float64{}, details: map[string][]model.PartnerDetail{}}
}

func (r *fakeDetailRepo) ListByPartner(ctx context.Context, partnerID string) ([]model.PartnerDetail, error) {
	return r.details[partnerID], nil
}

func (r *fakeDetailRepo) AccrueReward(ctx context.Context, partnerID, platform string, reward float64) error {
	r.rewards[partnerID] += reward
	return nil
}

func (r *fakeDetailRepo) TotalReward(ctx context.Context, partnerID string) (float64, error) {
	return r.rewards[partnerID], nil
}

type fakeSnapshotRepo struct {
	rows []model.CommissionSnapshot
}

func newFakeSnapshotRepo() *fakeSnapshotRepo {
	return &fakeSnapshotRepo{}
}

func (r *fakeSnapshotRepo) ListByRecipient(ctx context.Context, recipientID string) ([]model.CommissionSnapshot, error) {
	var out []model.CommissionSnapshot
	for _, row := range r.rows {
		if row.RecipientID == recipientID {
			out = append(out, row)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SnapshotAt.After(out[j].SnapshotAt) })
	return out, nil
}

func (r *fakeSnapshotRepo) FindByPair(ctx context.Context, recipientID, sourceID string) (*model.CommissionSnapshot, error) {
	for i := len(r.rows) - 1; i >= 0; i-- {
		if r.rows[i].RecipientID == recipientID && r.rows[i].SourceID == sourceID {
			cp := r.rows[i]
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeSnapshotRepo) ReplaceForSource(ctx context.Context, sourceID string, rows []model.CommissionSnapshot) error {
	kept := r.rows[:0]
	for _, row := range r.rows {
		if row.SourceID != sourceID {
			kept = append(kept, row)
		}
	}
	r.rows = append(kept, rows...)
	return nil
}

// fixture wires a user graph for traversal tests.
type fixture struct {
	users *fakeUserRepo
	codes *fakeCodeRepo
}

func newFixture() *fixture {
	return &fixture{users: newFakeUserRepo(), codes: newFakeCodeRepo()}
}

// addUser registers a user; referredBy is the referral code they
// signed up with ("" for none).
func (f *fixture) addUser(id string, rank model.PartnerRank, referredBy string) {
	u := &model.User{ID: id, Email: id + "@example.com", PartnerRank: rank, Status: "active"}
	if referredBy != "" {
		u.ReferralID = &referredBy
	}
	f.users.users[id] = u
}

func (f *fixture) addCode(userID, code string) {
	rc := &model.ReferralCode{UserID: userID, OwnReferralID: code}
	f.codes.byCode[code] = rc
	f.codes.byUser[userID] = rc
}

func (f *fixture) chainService() ChainService {
	return NewChainService(f.users, f.codes, nil, testLogger())
}
