package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/kyrios-fx/backend/internal/domain"
	"github.com/kyrios-fx/backend/internal/repository"
)

const (
	referralCodeLength   = 7
	referralCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	referralCodeAttempts = 10
)

var errReferralCodeExhausted = errors.New("could not generate a unique referral code")

func generateReferralCode() (string, error) {
	alphabetLen := big.NewInt(int64(len(referralCodeAlphabet)))
	code := make([]byte, referralCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("read random: %w", err)
		}
		code[i] = referralCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}

// uniqueReferralCode retries until a code not owned by any persistent user comes up.
func uniqueReferralCode(ctx context.Context, users repository.Users) (string, error) {
	for i := 0; i < referralCodeAttempts; i++ {
		code, err := generateReferralCode()
		if err != nil {
			return "", err
		}

		_, err = users.GetByReferralCode(ctx, code)
		if errors.Is(err, domain.ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", fmt.Errorf("check referral code failed: %w", err)
		}
	}
	return "", errReferralCodeExhausted
}
