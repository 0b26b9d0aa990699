//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"nightapp-server/internal/domain"
	"nightapp-server/internal/domain/model"
	"nightapp-server/internal/domain/ports/adapter"
	"nightapp-server/internal/domain/ports/repository"
)

// =============================
// Repositories
// =============================

// ---- Mock UserRepository ----

type MockUserRepo struct {
	mu         sync.Mutex
	byID       map[string]*model.User
	byUsername map[string]*model.User

	SaveFunc               func(ctx context.Context, tx repository.Tx, u *model.User) error
	FindByUsernameFunc     func(ctx context.Context, tx repository.Tx, username string) (*model.User, error)
	FindByIDFunc           func(ctx context.Context, tx repository.Tx, id string) (*model.User, error)
	ListFunc               func(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.User, error)
	CountUsersFunc         func(ctx context.Context, tx repository.Tx) (int, error)
	CountInactiveUsersFunc func(ctx context.Context, tx repository.Tx, since time.Time) (int, error)
}

var _ repository.UserRepository = (*MockUserRepo)(nil)

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{byID: map[string]*model.User{}, byUsername: map[string]*model.User{}}
}

func (r *MockUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, u)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.byID[u.ID] = &cp
	r.byUsername[u.Username] = &cp
	return nil
}

func (r *MockUserRepo) FindByUsername(ctx context.Context, tx repository.Tx, username string) (*model.User, error) {
	if r.FindByUsernameFunc != nil {
		return r.FindByUsernameFunc(ctx, tx, username)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byUsername[username]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, tx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockUserRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.User, error) {
	if r.ListFunc != nil {
		return r.ListFunc(ctx, tx, offset, limit)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.User
	for _, u := range r.byID {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *MockUserRepo) CountUsers(ctx context.Context, tx repository.Tx) (int, error) {
	if r.CountUsersFunc != nil {
		return r.CountUsersFunc(ctx, tx)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID), nil
}

func (r *MockUserRepo) CountInactiveUsers(ctx context.Context, tx repository.Tx, since time.Time) (int, error) {
	if r.CountInactiveUsersFunc != nil {
		return r.CountInactiveUsersFunc(ctx, tx, since)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, u := range r.byID {
		if u.LastActiveAt.Before(since) {
			n++
		}
	}
	return n, nil
}

// ---- Mock ActivityRepository ----

type MockActivityRepo struct {
	mu   sync.Mutex
	byID map[string]*model.Activity

	SaveFunc             func(ctx context.Context, tx repository.Tx, a *model.Activity) error
	FindByIDFunc         func(ctx context.Context, tx repository.Tx, id string) (*model.Activity, error)
	FindActiveByNameFunc func(ctx context.Context, tx repository.Tx, name string) (*model.Activity, error)
	ListFunc             func(ctx context.Context, tx repository.Tx, activeOnly bool) ([]*model.Activity, error)
}

var _ repository.ActivityRepository = (*MockActivityRepo)(nil)

func NewMockActivityRepo() *MockActivityRepo {
	return &MockActivityRepo{byID: map[string]*model.Activity{}}
}

func (r *MockActivityRepo) Save(ctx context.Context, tx repository.Tx, a *model.Activity) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, a)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	r.byID[a.ID] = &cp
	return nil
}

func (r *MockActivityRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Activity, error) {
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, tx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.byID[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

// FindActiveByName mirrors the repository contract: inactive rows are
// indistinguishable from missing ones.
func (r *MockActivityRepo) FindActiveByName(ctx context.Context, tx repository.Tx, name string) (*model.Activity, error) {
	if r.FindActiveByNameFunc != nil {
		return r.FindActiveByNameFunc(ctx, tx, name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byID {
		if a.Name == name && a.IsActive {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MockActivityRepo) List(ctx context.Context, tx repository.Tx, activeOnly bool) ([]*model.Activity, error) {
	if r.ListFunc != nil {
		return r.ListFunc(ctx, tx, activeOnly)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Activity
	for _, a := range r.byID {
		if activeOnly && !a.IsActive {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ---- Mock QRCodeRepository ----

type MockQRCodeRepo struct {
	mu   sync.Mutex
	byID map[string]*model.QRCode

	SaveFunc              func(ctx context.Context, tx repository.Tx, q *model.QRCode) error
	FindByIDFunc          func(ctx context.Context, tx repository.Tx, id string) (*model.QRCode, error)
	FindActiveByCodeFunc  func(ctx context.Context, tx repository.Tx, code string) (*model.QRCode, error)
	ListByUserFunc        func(ctx context.Context, tx repository.Tx, userID string, activeOnly bool) ([]*model.QRCode, error)
	DeactivateExpiredFunc func(ctx context.Context, tx repository.Tx, now time.Time) (int64, error)
}

var _ repository.QRCodeRepository = (*MockQRCodeRepo)(nil)

func NewMockQRCodeRepo() *MockQRCodeRepo {
	return &MockQRCodeRepo{byID: map[string]*model.QRCode{}}
}

func (r *MockQRCodeRepo) Save(ctx context.Context, tx repository.Tx, q *model.QRCode) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, q)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.byID {
		if other.Code == q.Code && other.ID != q.ID {
			return domain.ErrAlreadyExists
		}
	}
	cp := *q
	r.byID[q.ID] = &cp
	return nil
}

func (r *MockQRCodeRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.QRCode, error) {
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, tx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if q, ok := r.byID[id]; ok {
		cp := *q
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

// FindActiveByCode mirrors the repository contract: revoked and expired
// codes are indistinguishable from missing ones.
func (r *MockQRCodeRepo) FindActiveByCode(ctx context.Context, tx repository.Tx, code string) (*model.QRCode, error) {
	if r.FindActiveByCodeFunc != nil {
		return r.FindActiveByCodeFunc(ctx, tx, code)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, q := range r.byID {
		if q.Code == code && q.Redeemable(time.Now()) {
			cp := *q
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MockQRCodeRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, activeOnly bool) ([]*model.QRCode, error) {
	if r.ListByUserFunc != nil {
		return r.ListByUserFunc(ctx, tx, userID, activeOnly)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.QRCode
	for _, q := range r.byID {
		if q.UserID != userID {
			continue
		}
		if activeOnly && !q.IsActive {
			continue
		}
		cp := *q
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MockQRCodeRepo) DeactivateExpired(ctx context.Context, tx repository.Tx, now time.Time) (int64, error) {
	if r.DeactivateExpiredFunc != nil {
		return r.DeactivateExpiredFunc(ctx, tx, now)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, q := range r.byID {
		if q.IsActive && !q.ExpiresAt.After(now) {
			q.IsActive = false
			n++
		}
	}
	return n, nil
}

// ---- Mock VisitRepository ----

type MockVisitRepo struct {
	mu     sync.Mutex
	visits []*model.Visit

	SaveFunc             func(ctx context.Context, tx repository.Tx, v *model.Visit) error
	FindByIDFunc         func(ctx context.Context, tx repository.Tx, id string) (*model.Visit, error)
	ListByUserFunc       func(ctx context.Context, tx repository.Tx, userID string, offset, limit int) ([]*model.Visit, error)
	CountVisitsFunc      func(ctx context.Context, tx repository.Tx) (int, error)
	CountVisitsSinceFunc func(ctx context.Context, tx repository.Tx, since time.Time) (int, error)
}

var _ repository.VisitRepository = (*MockVisitRepo)(nil)

func NewMockVisitRepo() *MockVisitRepo {
	return &MockVisitRepo{}
}

func (r *MockVisitRepo) Save(ctx context.Context, tx repository.Tx, v *model.Visit) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, v)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *v
	r.visits = append(r.visits, &cp)
	return nil
}

func (r *MockVisitRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Visit, error) {
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, tx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.visits {
		if v.ID == id {
			cp := *v
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MockVisitRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, offset, limit int) ([]*model.Visit, error) {
	if r.ListByUserFunc != nil {
		return r.ListByUserFunc(ctx, tx, userID, offset, limit)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Visit
	for i := len(r.visits) - 1; i >= 0; i-- {
		if r.visits[i].UserID == userID {
			cp := *r.visits[i]
			out = append(out, &cp)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *MockVisitRepo) CountVisits(ctx context.Context, tx repository.Tx) (int, error) {
	if r.CountVisitsFunc != nil {
		return r.CountVisitsFunc(ctx, tx)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.visits), nil
}

func (r *MockVisitRepo) CountVisitsSince(ctx context.Context, tx repository.Tx, since time.Time) (int, error) {
	if r.CountVisitsSinceFunc != nil {
		return r.CountVisitsSinceFunc(ctx, tx, since)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, v := range r.visits {
		if v.CreatedAt.After(since) {
			n++
		}
	}
	return n, nil
}

// All returns a snapshot of every stored visit, newest last.
func (r *MockVisitRepo) All() []*model.Visit {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Visit, 0, len(r.visits))
	for _, v := range r.visits {
		cp := *v
		out = append(out, &cp)
	}
	return out
}

// ---- Mock PointsLedgerRepository ----

// MockPointsLedgerRepo keeps entries and balances in memory and enforces the
// same non-negative balance rule the database check constraint does.
type MockPointsLedgerRepo struct {
	mu       sync.Mutex
	entries  []*model.PointsTransaction
	balances map[string]int64

	InsertFunc          func(ctx context.Context, tx repository.Tx, t *model.PointsTransaction) error
	ListByUserFunc      func(ctx context.Context, tx repository.Tx, userID string, offset, limit int) ([]*model.PointsTransaction, error)
	SumAmountByKindFunc func(ctx context.Context, tx repository.Tx, kind model.PointsKind) (int64, error)
	AdjustBalanceFunc   func(ctx context.Context, tx repository.Tx, userID string, delta int64) error
}

var _ repository.PointsLedgerRepository = (*MockPointsLedgerRepo)(nil)

func NewMockPointsLedgerRepo() *MockPointsLedgerRepo {
	return &MockPointsLedgerRepo{balances: map[string]int64{}}
}

func (r *MockPointsLedgerRepo) Insert(ctx context.Context, tx repository.Tx, t *model.PointsTransaction) error {
	if r.InsertFunc != nil {
		return r.InsertFunc(ctx, tx, t)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	r.entries = append(r.entries, &cp)
	return nil
}

func (r *MockPointsLedgerRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, offset, limit int) ([]*model.PointsTransaction, error) {
	if r.ListByUserFunc != nil {
		return r.ListByUserFunc(ctx, tx, userID, offset, limit)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.PointsTransaction
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].UserID == userID {
			cp := *r.entries[i]
			out = append(out, &cp)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *MockPointsLedgerRepo) SumAmountByKind(ctx context.Context, tx repository.Tx, kind model.PointsKind) (int64, error) {
	if r.SumAmountByKindFunc != nil {
		return r.SumAmountByKindFunc(ctx, tx, kind)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum int64
	for _, e := range r.entries {
		if e.Kind == kind {
			sum += e.Amount
		}
	}
	return sum, nil
}

func (r *MockPointsLedgerRepo) AdjustBalance(ctx context.Context, tx repository.Tx, userID string, delta int64) error {
	if r.AdjustBalanceFunc != nil {
		return r.AdjustBalanceFunc(ctx, tx, userID, delta)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.balances[userID]+delta < 0 {
		return domain.ErrInsufficientPoints
	}
	r.balances[userID] += delta
	return nil
}

// Balance returns the in-memory balance for assertions.
func (r *MockPointsLedgerRepo) Balance(userID string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.balances[userID]
}

// Entries returns a snapshot of every ledger row, oldest first.
func (r *MockPointsLedgerRepo) Entries() []*model.PointsTransaction {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.PointsTransaction, 0, len(r.entries))
	for _, e := range r.entries {
		cp := *e
		out = append(out, &cp)
	}
	return out
}

// ---- Mock RewardRepository ----

type MockRewardRepo struct {
	mu   sync.Mutex
	byID map[string]*model.Reward

	SaveFunc     func(ctx context.Context, tx repository.Tx, r *model.Reward) error
	FindByIDFunc func(ctx context.Context, tx repository.Tx, id string) (*model.Reward, error)
	ListFunc     func(ctx context.Context, tx repository.Tx, activeOnly bool) ([]*model.Reward, error)
}

var _ repository.RewardRepository = (*MockRewardRepo)(nil)

func NewMockRewardRepo() *MockRewardRepo {
	return &MockRewardRepo{byID: map[string]*model.Reward{}}
}

func (r *MockRewardRepo) Save(ctx context.Context, tx repository.Tx, rw *model.Reward) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, rw)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rw
	r.byID[rw.ID] = &cp
	return nil
}

func (r *MockRewardRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Reward, error) {
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, tx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if rw, ok := r.byID[id]; ok {
		cp := *rw
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockRewardRepo) List(ctx context.Context, tx repository.Tx, activeOnly bool) ([]*model.Reward, error) {
	if r.ListFunc != nil {
		return r.ListFunc(ctx, tx, activeOnly)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Reward
	for _, rw := range r.byID {
		if activeOnly && !rw.IsActive {
			continue
		}
		cp := *rw
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CostPoints < out[j].CostPoints })
	return out, nil
}

// ---- Mock RedemptionRepository ----

type MockRedemptionRepo struct {
	mu          sync.Mutex
	redemptions []*model.Redemption

	SaveFunc             func(ctx context.Context, tx repository.Tx, r *model.Redemption) error
	ListByUserFunc       func(ctx context.Context, tx repository.Tx, userID string, offset, limit int) ([]*model.Redemption, error)
	CountRedemptionsFunc func(ctx context.Context, tx repository.Tx) (int, error)
}

var _ repository.RedemptionRepository = (*MockRedemptionRepo)(nil)

func NewMockRedemptionRepo() *MockRedemptionRepo {
	return &MockRedemptionRepo{}
}

func (r *MockRedemptionRepo) Save(ctx context.Context, tx repository.Tx, rd *model.Redemption) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, rd)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rd
	r.redemptions = append(r.redemptions, &cp)
	return nil
}

func (r *MockRedemptionRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, offset, limit int) ([]*model.Redemption, error) {
	if r.ListByUserFunc != nil {
		return r.ListByUserFunc(ctx, tx, userID, offset, limit)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Redemption
	for i := len(r.redemptions) - 1; i >= 0; i-- {
		if r.redemptions[i].UserID == userID {
			cp := *r.redemptions[i]
			out = append(out, &cp)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *MockRedemptionRepo) CountRedemptions(ctx context.Context, tx repository.Tx) (int, error) {
	if r.CountRedemptionsFunc != nil {
		return r.CountRedemptionsFunc(ctx, tx)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.redemptions), nil
}

// All returns a snapshot of every stored redemption.
func (r *MockRedemptionRepo) All() []*model.Redemption {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Redemption, 0, len(r.redemptions))
	for _, rd := range r.redemptions {
		cp := *rd
		out = append(out, &cp)
	}
	return out
}

// ---- Mock FeedbackRepository ----

type MockFeedbackRepo struct {
	mu   sync.Mutex
	rows []*model.Feedback

	SaveFunc       func(ctx context.Context, tx repository.Tx, f *model.Feedback) error
	ListRecentFunc func(ctx context.Context, tx repository.Tx, limit int) ([]*model.Feedback, error)
	MoodCountsFunc func(ctx context.Context, tx repository.Tx, since time.Time) (map[int]int, error)
}

var _ repository.FeedbackRepository = (*MockFeedbackRepo)(nil)

func NewMockFeedbackRepo() *MockFeedbackRepo {
	return &MockFeedbackRepo{}
}

func (r *MockFeedbackRepo) Save(ctx context.Context, tx repository.Tx, f *model.Feedback) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, f)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *f
	r.rows = append(r.rows, &cp)
	return nil
}

func (r *MockFeedbackRepo) ListRecent(ctx context.Context, tx repository.Tx, limit int) ([]*model.Feedback, error) {
	if r.ListRecentFunc != nil {
		return r.ListRecentFunc(ctx, tx, limit)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Feedback
	for i := len(r.rows) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		cp := *r.rows[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *MockFeedbackRepo) MoodCounts(ctx context.Context, tx repository.Tx, since time.Time) (map[int]int, error) {
	if r.MoodCountsFunc != nil {
		return r.MoodCountsFunc(ctx, tx, since)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[int]int{}
	for _, f := range r.rows {
		if f.CreatedAt.After(since) {
			counts[f.Mood]++
		}
	}
	return counts, nil
}

// =============================
// Infra helpers for tests
// =============================

// ---- Mock TransactionManager ----

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

// WithTx provides a way to control transaction behavior during tests.
// By default, it runs the function immediately without a real transaction.
// For specific transactional tests, you can assign a custom function to WithTxFunc.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	// By default, execute the function immediately with NoTX.
	return fn(ctx, repository.NoTX)
}

// ---- In-memory Locker ----

type MockLocker struct {
	mu    sync.Mutex
	held  map[string]string
	ErrOn map[string]error
}

func NewMockLocker() *MockLocker {
	return &MockLocker{held: map[string]string{}, ErrOn: map[string]error{}}
}

func (l *MockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err, bad := l.ErrOn[key]; bad {
		return "", err
	}
	if tok, ok := l.held[key]; ok && tok != "" {
		return "", domain.ErrRedemptionInProgress
	}
	tok := uuid.NewString()
	l.held[key] = tok
	return tok, nil
}

func (l *MockLocker) Unlock(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == token {
		delete(l.held, key)
		return nil
	}
	return errors.New("unlock token mismatch")
}

// ---- Mock EventPublisher ----

type MockEventPublisher struct {
	mu       sync.Mutex
	Visits   []adapter.VisitAcceptedEvent
	Rewards  []adapter.RewardRedeemedEvent
	FailWith error
}

var _ adapter.EventPublisher = (*MockEventPublisher)(nil)

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

func (m *MockEventPublisher) PublishVisitAccepted(ctx context.Context, ev adapter.VisitAcceptedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	m.Visits = append(m.Visits, ev)
	return nil
}

func (m *MockEventPublisher) PublishRewardRedeemed(ctx context.Context, ev adapter.RewardRedeemedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	m.Rewards = append(m.Rewards, ev)
	return nil
}

func (m *MockEventPublisher) Close() error { return nil }

// ---- Mock Encryptor ----

// MockEncryptor marks payloads with a reversible prefix so tests can tell
// ciphertext from plaintext without real crypto.
type MockEncryptor struct {
	EncryptFunc func(plaintext string) (string, error)
	DecryptFunc func(ciphertext string) (string, error)
}

func (m *MockEncryptor) Encrypt(plaintext string) (string, error) {
	if m.EncryptFunc != nil {
		return m.EncryptFunc(plaintext)
	}
	return "enc:" + plaintext, nil
}

func (m *MockEncryptor) Decrypt(ciphertext string) (string, error) {
	if m.DecryptFunc != nil {
		return m.DecryptFunc(ciphertext)
	}
	if len(ciphertext) < 4 || ciphertext[:4] != "enc:" {
		return "", errors.New("not a mock ciphertext")
	}
	return ciphertext[4:], nil
}

// newTestLogger creates a silent zerolog.Logger for use in tests.
// It writes to io.Discard to prevent logs from cluttering test output.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}
