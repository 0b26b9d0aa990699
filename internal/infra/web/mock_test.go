//go:build !integration

package web

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"time"

	"nightapp-server/internal/domain"
	"nightapp-server/internal/domain/model"
	"nightapp-server/internal/domain/ports/adapter"
	"nightapp-server/internal/domain/ports/repository"
	"nightapp-server/internal/usecase"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// newTestLogger creates a silent logger for tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// --- Mock Repositories (Ports) ---
//
// Each mock embeds its interface for forward compatibility and implements
// only the methods the routes under test actually reach.

type mockUserRepo struct {
	repository.UserRepository
	mu         sync.Mutex
	users      map[string]*model.User
	ListError  error
	CountError error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, tx repository.Tx, username string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockUserRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.User, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]*model.User, 0, len(m.users))
	for _, u := range m.users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Username < all[j].Username })
	if offset >= len(all) {
		return []*model.User{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *mockUserRepo) CountUsers(ctx context.Context, tx repository.Tx) (int, error) {
	if m.CountError != nil {
		return 0, m.CountError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users), nil
}

type mockActivityRepo struct {
	repository.ActivityRepository
	mu   sync.Mutex
	acts map[string]*model.Activity
}

func newMockActivityRepo() *mockActivityRepo {
	return &mockActivityRepo{acts: make(map[string]*model.Activity)}
}

func (m *mockActivityRepo) Save(ctx context.Context, tx repository.Tx, a *model.Activity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	m.acts[a.ID] = &cp
	return nil
}

func (m *mockActivityRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.acts[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockActivityRepo) FindActiveByName(ctx context.Context, tx repository.Tx, name string) (*model.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.acts {
		if a.Name == name && a.IsActive {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockActivityRepo) List(ctx context.Context, tx repository.Tx, activeOnly bool) ([]*model.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Activity, 0, len(m.acts))
	for _, a := range m.acts {
		if activeOnly && !a.IsActive {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type mockQRCodeRepo struct {
	repository.QRCodeRepository
	mu    sync.Mutex
	codes map[string]*model.QRCode
}

func newMockQRCodeRepo() *mockQRCodeRepo {
	return &mockQRCodeRepo{codes: make(map[string]*model.QRCode)}
}

func (m *mockQRCodeRepo) Save(ctx context.Context, tx repository.Tx, q *model.QRCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *q
	m.codes[q.ID] = &cp
	return nil
}

func (m *mockQRCodeRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.QRCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if q, ok := m.codes[id]; ok {
		cp := *q
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockQRCodeRepo) FindActiveByCode(ctx context.Context, tx repository.Tx, code string) (*model.QRCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, q := range m.codes {
		if q.Code == code && q.Redeemable(time.Now()) {
			cp := *q
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockQRCodeRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, activeOnly bool) ([]*model.QRCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.QRCode, 0)
	for _, q := range m.codes {
		if q.UserID != userID {
			continue
		}
		if activeOnly && !q.IsActive {
			continue
		}
		cp := *q
		out = append(out, &cp)
	}
	return out, nil
}

type mockVisitRepo struct {
	repository.VisitRepository
	mu     sync.Mutex
	visits []*model.Visit
}

func (m *mockVisitRepo) Save(ctx context.Context, tx repository.Tx, v *model.Visit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *v
	m.visits = append(m.visits, &cp)
	return nil
}

func (m *mockVisitRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, offset, limit int) ([]*model.Visit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Visit, 0)
	for _, v := range m.visits {
		if v.UserID == userID {
			cp := *v
			out = append(out, &cp)
		}
	}
	if offset >= len(out) {
		return []*model.Visit{}, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

func (m *mockVisitRepo) CountVisits(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.visits), nil
}

func (m *mockVisitRepo) CountVisitsSince(ctx context.Context, tx repository.Tx, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, v := range m.visits {
		if v.CreatedAt.After(since) {
			n++
		}
	}
	return n, nil
}

// mockLedgerRepo mirrors the production coupling between ledger inserts and
// the denormalized user balance: AdjustBalance writes through to the user
// rows held by the paired mockUserRepo.
type mockLedgerRepo struct {
	repository.PointsLedgerRepository
	mu       sync.Mutex
	entries  []*model.PointsTransaction
	userRepo *mockUserRepo
}

func (m *mockLedgerRepo) Insert(ctx context.Context, tx repository.Tx, t *model.PointsTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.entries = append([]*model.PointsTransaction{&cp}, m.entries...)
	return nil
}

func (m *mockLedgerRepo) AdjustBalance(ctx context.Context, tx repository.Tx, userID string, delta int64) error {
	m.userRepo.mu.Lock()
	defer m.userRepo.mu.Unlock()
	u, ok := m.userRepo.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	if u.PointsBalance+delta < 0 {
		return domain.ErrInsufficientPoints
	}
	u.PointsBalance += delta
	return nil
}

func (m *mockLedgerRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, offset, limit int) ([]*model.PointsTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.PointsTransaction, 0)
	for _, e := range m.entries {
		if e.UserID == userID {
			cp := *e
			out = append(out, &cp)
		}
	}
	if offset >= len(out) {
		return []*model.PointsTransaction{}, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

func (m *mockLedgerRepo) SumAmountByKind(ctx context.Context, tx repository.Tx, kind model.PointsKind) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum int64
	for _, e := range m.entries {
		if e.Kind == kind {
			sum += e.Amount
		}
	}
	return sum, nil
}

type mockRewardRepo struct {
	repository.RewardRepository
	mu      sync.Mutex
	rewards map[string]*model.Reward
}

func newMockRewardRepo() *mockRewardRepo {
	return &mockRewardRepo{rewards: make(map[string]*model.Reward)}
}

func (m *mockRewardRepo) Save(ctx context.Context, tx repository.Tx, r *model.Reward) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	m.rewards[r.ID] = &cp
	return nil
}

func (m *mockRewardRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Reward, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.rewards[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockRewardRepo) List(ctx context.Context, tx repository.Tx, activeOnly bool) ([]*model.Reward, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Reward, 0, len(m.rewards))
	for _, r := range m.rewards {
		if activeOnly && !r.IsActive {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CostPoints < out[j].CostPoints })
	return out, nil
}

type mockRedemptionRepo struct {
	repository.RedemptionRepository
	mu          sync.Mutex
	redemptions []*model.Redemption
}

func (m *mockRedemptionRepo) Save(ctx context.Context, tx repository.Tx, r *model.Redemption) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	m.redemptions = append(m.redemptions, &cp)
	return nil
}

func (m *mockRedemptionRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, offset, limit int) ([]*model.Redemption, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Redemption, 0)
	for _, r := range m.redemptions {
		if r.UserID == userID {
			cp := *r
			out = append(out, &cp)
		}
	}
	if offset >= len(out) {
		return []*model.Redemption{}, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

func (m *mockRedemptionRepo) CountRedemptions(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.redemptions), nil
}

type mockFeedbackRepo struct {
	repository.FeedbackRepository
	mu   sync.Mutex
	rows []*model.Feedback
}

func (m *mockFeedbackRepo) Save(ctx context.Context, tx repository.Tx, f *model.Feedback) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *f
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *mockFeedbackRepo) ListRecent(ctx context.Context, tx repository.Tx, limit int) ([]*model.Feedback, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Feedback, 0, len(m.rows))
	for i := len(m.rows) - 1; i >= 0 && len(out) < limit; i-- {
		cp := *m.rows[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockFeedbackRepo) MoodCounts(ctx context.Context, tx repository.Tx, since time.Time) (map[int]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[int]int)
	for _, f := range m.rows {
		if f.CreatedAt.After(since) {
			counts[f.Mood]++
		}
	}
	return counts, nil
}

// --- Mock infrastructure ---

type mockTxManager struct{}

func (mockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, repository.NoTX)
}

type mockLocker struct{}

func (mockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "token", nil
}
func (mockLocker) Unlock(ctx context.Context, key, token string) error { return nil }

type mockEncryptor struct{}

func (mockEncryptor) Encrypt(plaintext string) (string, error) { return "enc:" + plaintext, nil }
func (mockEncryptor) Decrypt(ciphertext string) (string, error) {
	return strings.TrimPrefix(ciphertext, "enc:"), nil
}

type mockPublisher struct {
	mu      sync.Mutex
	visits  []adapter.VisitAcceptedEvent
	rewards []adapter.RewardRedeemedEvent
}

func (m *mockPublisher) PublishVisitAccepted(ctx context.Context, ev adapter.VisitAcceptedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.visits = append(m.visits, ev)
	return nil
}

func (m *mockPublisher) PublishRewardRedeemed(ctx context.Context, ev adapter.RewardRedeemedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rewards = append(m.rewards, ev)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

// --- Test environment ---

// testEnv wires real use cases over the mocks into a full route tree, with
// tokens minted for an admin and a seeded member.
type testEnv struct {
	users       *mockUserRepo
	activities  *mockActivityRepo
	codes       *mockQRCodeRepo
	visits      *mockVisitRepo
	ledger      *mockLedgerRepo
	rewards     *mockRewardRepo
	redemptions *mockRedemptionRepo
	feedback    *mockFeedbackRepo
	publisher   *mockPublisher

	auth        *AuthManager
	handler     http.Handler
	adminToken  string
	memberToken string
	member      *model.User
}

func newTestEnv() *testEnv {
	logger := newTestLogger()

	env := &testEnv{
		users:       newMockUserRepo(),
		activities:  newMockActivityRepo(),
		codes:       newMockQRCodeRepo(),
		visits:      &mockVisitRepo{},
		rewards:     newMockRewardRepo(),
		redemptions: &mockRedemptionRepo{},
		feedback:    &mockFeedbackRepo{},
		publisher:   &mockPublisher{},
	}
	env.ledger = &mockLedgerRepo{userRepo: env.users}

	member, _ := model.NewUser("member-1", "mina", "Mina M.")
	env.users.users[member.ID] = member
	env.member = member

	tm := mockTxManager{}
	ledgerUC := usecase.NewLedgerUseCase(env.ledger, env.users, logger)
	userUC := usecase.NewUserUseCase(env.users, tm, logger)
	visitUC := usecase.NewVisitUseCase(env.activities, env.codes, env.visits, ledgerUC, tm, env.publisher, logger)
	activityUC := usecase.NewActivityUseCase(env.activities, logger)
	qrUC := usecase.NewQRCodeUseCase(env.codes, env.users, 72*time.Hour, logger)
	rewardUC := usecase.NewRewardUseCase(env.rewards, env.redemptions, ledgerUC, tm, mockLocker{}, env.publisher, logger)
	feedbackUC := usecase.NewFeedbackUseCase(env.feedback, mockEncryptor{}, logger)
	statsUC := usecase.NewStatsUseCase(env.users, env.visits, env.ledger, env.redemptions, env.feedback, logger)

	env.auth = NewAuthManager("test-jwt-secret-please-change", false, "", time.Minute)

	server := NewServer(Config{
		Users:      userUC,
		Visits:     visitUC,
		Activities: activityUC,
		QRCodes:    qrUC,
		Ledger:     ledgerUC,
		Rewards:    rewardUC,
		Feedback:   feedbackUC,
		Stats:      statsUC,
		Auth:       env.auth,
		AdminKey:   "test-admin-key",
	}, logger)
	env.handler = server.Handler()

	env.adminToken, _ = env.auth.Mint(httptest.NewRecorder(), "admin", model.RoleAdmin)
	env.memberToken, _ = env.auth.Mint(httptest.NewRecorder(), member.ID, model.RoleMember)
	return env
}

// do performs a request against the route tree with an optional bearer token.
func (e *testEnv) do(method, target, token string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}
