package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/kyrios-fx/backend/internal/cache"
	"github.com/kyrios-fx/backend/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRegisterInput(email string) RegisterInput {
	return RegisterInput{
		Email:    email,
		Phone:    "+1234567890",
		Password: testPassword,
		Name:     "Alice Doe",
	}
}

func TestRegister_ValidationOrder(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	tests := []struct {
		name  string
		input RegisterInput
		field string
	}{
		{
			name:  "email checked first",
			input: RegisterInput{Email: "not-an-email", Phone: "123", Password: "weak", Name: "Al"},
			field: "email",
		},
		{
			name:  "phone after email",
			input: RegisterInput{Email: "a@x.io", Phone: "123", Password: "weak", Name: "Al"},
			field: "phone",
		},
		{
			name:  "password after phone",
			input: RegisterInput{Email: "a@x.io", Phone: "+1234567890", Password: "alllowercase1", Name: "Al"},
			field: "password",
		},
		{
			name:  "name last",
			input: RegisterInput{Email: "a@x.io", Phone: "+1234567890", Password: testPassword, Name: "Al"},
			field: "name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.services.Registration.Register(ctx, tt.input)
			require.Error(t, err)

			var derr *domain.Error
			require.ErrorAs(t, err, &derr)
			assert.Equal(t, domain.KindValidation, derr.Kind)
			assert.Equal(t, tt.field, derr.Field)
		})
	}

	_, err := env.pending.Get(ctx, "a@x.io")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRegister_AdmitsAndSendsOTP(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	res, err := env.services.Registration.Register(ctx, validRegisterInput(" Alice@X.io "))
	require.NoError(t, err)
	assert.True(t, res.OTPSent)
	assert.Equal(t, testTTL, res.ExpiresIn)

	entry, err := env.pending.Get(ctx, "alice@x.io")
	require.NoError(t, err)
	assert.False(t, entry.Verified)
	assert.Equal(t, env.clock.Now(), entry.CreatedAt)
	assert.Regexp(t, `^[A-Z0-9]{7}$`, entry.ReferralCode)
	assert.Empty(t, entry.ReferredByCode)

	assert.Equal(t, testOTP, env.mailer.codes["alice@x.io"])
	require.Len(t, env.mailer.welcomes, 1)
	assert.Equal(t, entry.ReferralCode, env.mailer.welcomes[0].ReferralCode)
	assert.Zero(t, env.users.len(), "nothing persisted before confirmation")
}

func TestRegister_DuplicatePending(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	_, err := env.services.Registration.Register(ctx, validRegisterInput("a@x.io"))
	require.NoError(t, err)

	_, err = env.services.Registration.Register(ctx, validRegisterInput("a@x.io"))
	assert.ErrorIs(t, err, ErrPendingRegistrationExists)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
}

func TestRegister_AllowedAgainAfterExpiry(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	_, err := env.services.Registration.Register(ctx, validRegisterInput("a@x.io"))
	require.NoError(t, err)

	env.clock.Advance(testTTL)

	require.Eventually(t, func() bool {
		_, err := env.pending.Get(ctx, "a@x.io")
		return err != nil
	}, time.Second, 5*time.Millisecond)

	_, err = env.services.Registration.Register(ctx, validRegisterInput("a@x.io"))
	assert.NoError(t, err)
}

func TestRegister_UnknownReferrerRejectedBeforeWrite(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	input := validRegisterInput("a@x.io")
	input.ReferralCode = "ZZZZZZZ"
	_, err := env.services.Registration.Register(ctx, input)

	assert.ErrorIs(t, err, ErrUnknownReferrer)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	_, err = env.pending.Get(ctx, "a@x.io")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, env.mailer.codes)
}

func TestRegister_PasswordLongerThanBcryptLimit(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	input := validRegisterInput("a@x.io")
	input.Password = "Aa1" + strings.Repeat("x", 80)
	_, err := env.services.Registration.Register(ctx, input)

	var domainErr *domain.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.KindValidation, domainErr.Kind)
	assert.Equal(t, "password", domainErr.Field)
	_, err = env.pending.Get(ctx, "a@x.io")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, env.mailer.codes)
}

func TestRegister_EmailOwnedByUser(t *testing.T) {
	env := newTestEnv(t, nil)
	env.signUp(t, "Alice Doe", "a@x.io", "")

	_, err := env.services.Registration.Register(context.Background(), validRegisterInput("a@x.io"))
	assert.ErrorIs(t, err, ErrEmailInUse)
}

func TestRegister_OTPFailureDropsEntry(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	env.mailer.verificationErr = errBoom

	_, err := env.services.Registration.Register(ctx, validRegisterInput("a@x.io"))
	require.ErrorIs(t, err, errBoom)

	_, err = env.pending.Get(ctx, "a@x.io")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRegister_WelcomeFailureIsNotFatal(t *testing.T) {
	env := newTestEnv(t, nil)
	env.mailer.welcomeErr = errBoom

	res, err := env.services.Registration.Register(context.Background(), validRegisterInput("a@x.io"))
	require.NoError(t, err)
	assert.True(t, res.OTPSent)
}

func TestConfirmOTP_WithoutReferrer(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	_, err := env.services.Registration.Register(ctx, validRegisterInput("a@x.io"))
	require.NoError(t, err)

	res, err := env.services.Registration.ConfirmOTP(ctx, ConfirmOTPInput{
		Email:  "a@x.io",
		OTP:    testOTP,
		Client: ClientInfo{UserAgent: "test", IP: "127.0.0.1"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, env.users.len())
	assert.Zero(t, env.referrals.count())
	assert.True(t, res.User.EmailVerified)
	assert.True(t, res.User.OTPVerified)
	assert.Equal(t, domain.RoleReferral, res.User.Role)
	assert.Equal(t, domain.StatusActive, res.User.Status)
	assert.NotEqual(t, testPassword, res.User.PasswordHash)
	assert.NotEmpty(t, res.Tokens.AccessToken)

	_, err = env.pending.Get(ctx, "a@x.io")
	assert.ErrorIs(t, err, domain.ErrNotFound, "entry is removed after promotion")
}

func TestConfirmOTP_AdminEmail(t *testing.T) {
	env := newTestEnv(t, nil)
	user := env.signUp(t, "The Boss", "boss@kyrios.io", "")
	assert.Equal(t, domain.RoleAdmin, user.Role)
}

func TestConfirmOTP_WrongOTPKeepsEntry(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	_, err := env.services.Registration.Register(ctx, validRegisterInput("a@x.io"))
	require.NoError(t, err)

	_, err = env.services.Registration.ConfirmOTP(ctx, ConfirmOTPInput{Email: "a@x.io", OTP: "000000"})
	assert.ErrorIs(t, err, ErrInvalidOTP)
	assert.Equal(t, domain.KindAuthentication, domain.KindOf(err))

	entry, err := env.pending.Get(ctx, "a@x.io")
	require.NoError(t, err)
	assert.False(t, entry.Verified)
	assert.Zero(t, env.users.len())

	_, err = env.services.Registration.ConfirmOTP(ctx, ConfirmOTPInput{Email: "a@x.io", OTP: testOTP})
	assert.NoError(t, err)
}

func TestConfirmOTP_EmptyAndMissing(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	_, err := env.services.Registration.ConfirmOTP(ctx, ConfirmOTPInput{Email: "a@x.io"})
	assert.ErrorIs(t, err, ErrOTPRequired)

	_, err = env.services.Registration.ConfirmOTP(ctx, ConfirmOTPInput{Email: "a@x.io", OTP: testOTP})
	assert.ErrorIs(t, err, ErrRegistrationNotFound)
}

func TestConfirmOTP_LazyExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	env := newTestEnv(t, func(clock clockwork.Clock) cache.PendingRegistrations {
		return cache.NewRedisPendingStore(client, testTTL, clock)
	})
	ctx := context.Background()

	_, err := env.services.Registration.Register(ctx, validRegisterInput("a@x.io"))
	require.NoError(t, err)

	// redis has not expired the key yet, the lazy check must
	env.clock.Advance(testTTL + time.Second)

	_, err = env.services.Registration.ConfirmOTP(ctx, ConfirmOTPInput{Email: "a@x.io", OTP: testOTP})
	assert.ErrorIs(t, err, ErrRegistrationExpired)
	assert.Equal(t, domain.KindExpired, domain.KindOf(err))

	_, err = env.services.Registration.ConfirmOTP(ctx, ConfirmOTPInput{Email: "a@x.io", OTP: testOTP})
	assert.ErrorIs(t, err, ErrRegistrationNotFound)
	assert.Zero(t, env.users.len())
}

func TestConfirmOTP_PromotionFailureStillDeletesEntry(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	_, err := env.services.Registration.Register(ctx, validRegisterInput("a@x.io"))
	require.NoError(t, err)

	env.users.err = errBoom
	_, err = env.services.Registration.ConfirmOTP(ctx, ConfirmOTPInput{Email: "a@x.io", OTP: testOTP})
	require.ErrorIs(t, err, errBoom)
	env.users.err = nil

	_, err = env.pending.Get(ctx, "a@x.io")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
