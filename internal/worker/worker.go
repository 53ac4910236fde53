package worker

import (
	"context"
	"time"

	"github.com/kyrios-fx/backend/internal/config"
	emailProvider "github.com/kyrios-fx/backend/pkg/email"
	"github.com/kyrios-fx/backend/pkg/pdf"
)

type Workers struct {
	EmailSender EmailSender
}

type Deps struct {
	EmailProvider emailProvider.Sender
	PDF           *pdf.Generator
	Config        *config.Config
}

type WelcomeEmailInput struct {
	Name           string
	Email          string
	Phone          string
	ReferralCode   string
	ReferredByCode string
	CreatedAt      time.Time
}

type EmailSender interface {
	SendVerificationEmail(ctx context.Context, email, verificationCode string, expiresIn time.Duration) error
	SendWelcomeEmail(ctx context.Context, input WelcomeEmailInput) error
	SendPasswordResetEmail(ctx context.Context, email, resetURL string) error
}

func NewWorkers(deps Deps) *Workers {
	return &Workers{
		EmailSender: newEmailSender(deps.EmailProvider, deps.PDF, deps.Config.Email),
	}
}
