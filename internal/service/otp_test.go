package service

import (
	"context"
	"testing"
	"time"

	"github.com/kyrios-fx/backend/internal/cache"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOTPService(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	mailer := newFakeMailer()
	svc := newOTPService(fixedOTP{}, cache.NewMemoryOTPCodes(clock), mailer, 0, time.Minute)

	require.NoError(t, svc.Send(ctx, "a@x.io"))
	assert.Equal(t, testOTP, mailer.codes["a@x.io"])

	ok, err := svc.Verify(ctx, "a@x.io", "999999")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.Verify(ctx, "a@x.io", testOTP)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Verify(ctx, "a@x.io", testOTP)
	require.NoError(t, err)
	assert.False(t, ok, "codes are single use")
}

func TestOTPService_Expires(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	svc := newOTPService(fixedOTP{}, cache.NewMemoryOTPCodes(clock), newFakeMailer(), 6, time.Minute)

	require.NoError(t, svc.Send(ctx, "a@x.io"))
	clock.Advance(time.Minute)

	ok, err := svc.Verify(ctx, "a@x.io", testOTP)
	require.NoError(t, err)
	assert.False(t, ok)
}
