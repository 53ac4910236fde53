package otp

import (
	"github.com/xlzd/gotp"
)

const secretLength = 32

// Generator produces one-time verification codes.
type Generator interface {
	RandomCode(length int) string
}

type GOTPGenerator struct{}

func NewGOTPGenerator() *GOTPGenerator {
	return &GOTPGenerator{}
}

// RandomCode returns a numeric HOTP value derived from a fresh random secret,
// so every call is independent of the previous ones.
func (g *GOTPGenerator) RandomCode(length int) string {
	secret := gotp.RandomSecret(secretLength)
	return gotp.NewHOTP(secret, length, nil).At(0)
}
