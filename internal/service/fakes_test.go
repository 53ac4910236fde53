package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kyrios-fx/backend/internal/cache"
	"github.com/kyrios-fx/backend/internal/config"
	"github.com/kyrios-fx/backend/internal/domain"
	"github.com/kyrios-fx/backend/internal/repository"
	"github.com/kyrios-fx/backend/pkg/auth"
	"github.com/kyrios-fx/backend/pkg/hash"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testOTP      = "123456"
	testPassword = "Secret1"
	testTTL      = 90 * time.Second
)

type fakeUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]domain.User
	// err is returned by every lookup when set.
	err error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: make(map[uuid.UUID]domain.User)}
}

func (f *fakeUsers) Create(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email || u.ReferralCode == user.ReferralCode {
			return domain.ErrDuplicateEntry
		}
	}
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUsers) find(match func(u domain.User) bool) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.DeletedAt == nil && match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUsers) GetOneByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	return f.find(func(u domain.User) bool { return u.ID == id })
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return f.find(func(u domain.User) bool { return u.Email == email })
}

func (f *fakeUsers) GetByReferralCode(_ context.Context, code string) (*domain.User, error) {
	return f.find(func(u domain.User) bool { return u.ReferralCode == code })
}

func (f *fakeUsers) GetByResetToken(_ context.Context, tokenHash string) (*domain.User, error) {
	return f.find(func(u domain.User) bool {
		return u.PasswordResetToken.Valid && u.PasswordResetToken.String == tokenHash
	})
}

func (f *fakeUsers) Update(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.users[user.ID]
	if !ok || stored.Version != user.Version {
		return domain.ErrVersionConflict
	}
	for _, u := range f.users {
		if u.ID != user.ID && u.Email == user.Email {
			return domain.ErrDuplicateEntry
		}
	}
	user.Version++
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUsers) filtered(filter repository.UserFilter) []*domain.User {
	var out []*domain.User
	for _, u := range f.users {
		if u.DeletedAt != nil {
			continue
		}
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		if filter.Status != nil && u.Status != *filter.Status {
			continue
		}
		if filter.Email != "" && !strings.Contains(u.Email, filter.Email) {
			continue
		}
		if filter.ReferredByCode != "" && u.ReferrerCode() != filter.ReferredByCode {
			continue
		}
		found := u
		out = append(out, &found)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out
}

func (f *fakeUsers) Count(_ context.Context, filter repository.UserFilter) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.filtered(filter))), nil
}

func (f *fakeUsers) List(_ context.Context, filter repository.UserFilter) ([]*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := f.filtered(filter)
	if filter.Offset >= len(all) {
		return []*domain.User{}, nil
	}
	end := filter.Offset + filter.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[filter.Offset:end], nil
}

func (f *fakeUsers) SoftDelete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok || u.DeletedAt != nil {
		return domain.ErrNotFound
	}
	now := time.Now()
	u.DeletedAt = &now
	f.users[id] = u
	return nil
}

// mutate edits a stored user bypassing the version check.
func (f *fakeUsers) mutate(id uuid.UUID, fn func(u *domain.User)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.users[id]
	fn(&u)
	f.users[id] = u
}

func (f *fakeUsers) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users)
}

type fakeReferrals struct {
	mu      sync.Mutex
	entries []domain.ReferralEntry
	err     error
}

func (f *fakeReferrals) Append(_ context.Context, entry *domain.ReferralEntry) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	for _, e := range f.entries {
		if e.OwnerID == entry.OwnerID && e.Stage == entry.Stage && e.UserID == entry.UserID {
			return false, nil
		}
	}
	f.entries = append(f.entries, *entry)
	return true, nil
}

func (f *fakeReferrals) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]domain.ReferralEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.ReferralEntry
	for _, e := range f.entries {
		if e.OwnerID == ownerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeReferrals) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

type fakeProfits struct {
	mu         sync.Mutex
	entries    []domain.ProfitEntry
	incentives []domain.ReferralIncentive
}

func (f *fakeProfits) Create(_ context.Context, entry *domain.ProfitEntry, incentives []domain.ReferralIncentive) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, *entry)
	f.incentives = append(f.incentives, incentives...)
	return nil
}

func (f *fakeProfits) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.ProfitEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.ProfitEntry
	for _, e := range f.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeProfits) ListIncentivesByOwner(_ context.Context, ownerID uuid.UUID) ([]domain.ReferralIncentive, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.ReferralIncentive
	for _, inc := range f.incentives {
		if inc.OwnerID == ownerID {
			out = append(out, inc)
		}
	}
	return out, nil
}

type fakePayouts struct {
	mu      sync.Mutex
	payouts map[uuid.UUID]domain.PayoutRequest
}

func (f *fakePayouts) Create(_ context.Context, payout *domain.PayoutRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payouts[payout.ID] = *payout
	return nil
}

func (f *fakePayouts) GetOneByID(_ context.Context, id uuid.UUID) (*domain.PayoutRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payouts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (f *fakePayouts) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.PayoutRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.PayoutRequest
	for _, p := range f.payouts {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePayouts) MarkPaid(_ context.Context, id uuid.UUID, paidAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payouts[id]
	if !ok || p.Status != domain.PayoutPending {
		return domain.ErrNoRowsAffected
	}
	p.Status = domain.PayoutPaid
	p.PaidAt = &paidAt
	f.payouts[id] = p
	return nil
}

type fakeSessions struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]domain.RefreshSession
}

func (f *fakeSessions) Create(_ context.Context, session *domain.RefreshSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[session.RefreshToken] = *session
	return nil
}

func (f *fakeSessions) GetByToken(_ context.Context, token uuid.UUID) (*domain.RefreshSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (f *fakeSessions) DeleteByToken(_ context.Context, token uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, token)
	return nil
}

type fakeMailer struct {
	mu              sync.Mutex
	codes           map[string]string
	welcomes        []domain.PendingRegistration
	resetURLs       map[string]string
	verificationErr error
	welcomeErr      error
	resetErr        error
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{codes: make(map[string]string), resetURLs: make(map[string]string)}
}

func (m *fakeMailer) SendVerificationCode(_ context.Context, email, code string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.verificationErr != nil {
		return m.verificationErr
	}
	m.codes[email] = code
	return nil
}

func (m *fakeMailer) SendWelcome(_ context.Context, registration domain.PendingRegistration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.welcomeErr != nil {
		return m.welcomeErr
	}
	m.welcomes = append(m.welcomes, registration)
	return nil
}

func (m *fakeMailer) SendPasswordReset(_ context.Context, email, resetURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.resetErr != nil {
		return m.resetErr
	}
	m.resetURLs[email] = resetURL
	return nil
}

type fixedOTP struct{}

func (fixedOTP) RandomCode(int) string { return testOTP }

type testEnv struct {
	services  *Services
	clock     *clockwork.FakeClock
	users     *fakeUsers
	referrals *fakeReferrals
	profits   *fakeProfits
	payouts   *fakePayouts
	sessions  *fakeSessions
	mailer    *fakeMailer
	pending   cache.PendingRegistrations
	otpCodes  cache.OTPCodes
}

func testConfig() *config.Config {
	return &config.Config{
		HttpServer: config.HttpServer{PublicURL: "https://app.kyrios.test/"},
		Auth: config.AuthConfig{
			JWT: config.JWTConfig{
				AccessTokenTTL:  15 * time.Minute,
				RefreshTokenTTL: 240 * time.Hour,
				SigningKey:      "test-signing-key",
			},
			BcryptCost:             bcrypt.MinCost,
			VerificationCodeLength: 6,
			MaxLoginAttempts:       3,
			LockDuration:           15 * time.Minute,
			PasswordResetTTL:       10 * time.Minute,
			AdminEmails:            []string{"Boss@Kyrios.io"},
		},
		Registration: config.RegistrationConfig{PendingTTL: testTTL},
		Incentives:   config.IncentiveConfig{DirectPercent: 10, Stage2Percent: 5, Stage3Percent: 2.5},
	}
}

func newTestEnv(t *testing.T, pending func(clock clockwork.Clock) cache.PendingRegistrations) *testEnv {
	t.Helper()

	cfg := testConfig()
	clock := clockwork.NewFakeClock()
	tokenManager, err := auth.NewManager(cfg.Auth.JWT)
	require.NoError(t, err)

	env := &testEnv{
		clock:     clock,
		users:     newFakeUsers(),
		referrals: &fakeReferrals{},
		profits:   &fakeProfits{},
		payouts:   &fakePayouts{payouts: make(map[uuid.UUID]domain.PayoutRequest)},
		sessions:  &fakeSessions{sessions: make(map[uuid.UUID]domain.RefreshSession)},
		mailer:    newFakeMailer(),
		otpCodes:  cache.NewMemoryOTPCodes(clock),
	}
	if pending != nil {
		env.pending = pending(clock)
	} else {
		env.pending = cache.NewMemoryPendingStore(testTTL, clock)
	}

	env.services = NewServices(Deps{
		Config:       cfg,
		Clock:        clock,
		Hasher:       hash.NewBcryptHasher(cfg.Auth.BcryptCost),
		TokenManager: tokenManager,
		OtpGenerator: fixedOTP{},
		Mailer:       env.mailer,
		Pending:      env.pending,
		OTPCodes:     env.otpCodes,
		Repos: &repository.Repositories{
			Users:          env.users,
			Referrals:      env.referrals,
			Profits:        env.profits,
			Payouts:        env.payouts,
			RefreshSession: env.sessions,
		},
	})
	return env
}

// signUp registers and confirms a user, returning the persisted user.
func (e *testEnv) signUp(t *testing.T, name, email, referrer string) *domain.User {
	t.Helper()
	ctx := context.Background()

	_, err := e.services.Registration.Register(ctx, RegisterInput{
		Email:        email,
		Phone:        "+1234567890",
		Password:     testPassword,
		Name:         name,
		ReferralCode: referrer,
	})
	require.NoError(t, err)

	res, err := e.services.Registration.ConfirmOTP(ctx, ConfirmOTPInput{Email: email, OTP: testOTP})
	require.NoError(t, err)
	return res.User
}

func (e *testEnv) referralsOf(t *testing.T, user *domain.User) domain.Referrals {
	t.Helper()
	entries, err := e.referrals.ListByOwner(context.Background(), user.ID)
	require.NoError(t, err)
	return domain.GroupReferrals(entries)
}

var errBoom = errors.New("boom")
