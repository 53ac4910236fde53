package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/kyrios-fx/backend/internal/cache"
	"github.com/kyrios-fx/backend/internal/domain"
	"github.com/kyrios-fx/backend/pkg/otp"
)

const defaultOTPLength = 6

type otpService struct {
	generator otp.Generator
	codes     cache.OTPCodes
	mailer    Mailer
	length    int
	ttl       time.Duration
}

func newOTPService(generator otp.Generator, codes cache.OTPCodes, mailer Mailer, length int, ttl time.Duration) *otpService {
	if length <= 0 {
		length = defaultOTPLength
	}
	return &otpService{
		generator: generator,
		codes:     codes,
		mailer:    mailer,
		length:    length,
		ttl:       ttl,
	}
}

// Send replaces any earlier code for the email and mails the new one.
func (s *otpService) Send(ctx context.Context, email string) error {
	code := s.generator.RandomCode(s.length)

	if err := s.codes.Set(ctx, email, code, s.ttl); err != nil {
		return fmt.Errorf("store otp failed: %w", err)
	}

	if err := s.mailer.SendVerificationCode(ctx, email, code, s.ttl); err != nil {
		_ = s.codes.Delete(ctx, email)
		return fmt.Errorf("send otp failed: %w", err)
	}

	return nil
}

// Verify consumes the code on a match.
func (s *otpService) Verify(ctx context.Context, email, code string) (bool, error) {
	stored, err := s.codes.Get(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("get otp failed: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return false, nil
	}

	if err := s.codes.Delete(ctx, email); err != nil {
		return false, fmt.Errorf("delete otp failed: %w", err)
	}
	return true, nil
}
