package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kyrios-fx/backend/internal/config"
	emailProvider "github.com/kyrios-fx/backend/pkg/email"
	"github.com/kyrios-fx/backend/pkg/logger"
	"github.com/kyrios-fx/backend/pkg/pdf"

	"go.uber.org/zap"
)

const registrationPDFName = "registration.pdf"

type emailSender struct {
	sender emailProvider.Sender
	pdf    *pdf.Generator
	config config.EmailConfig
}

func newEmailSender(
	sender emailProvider.Sender,
	pdf *pdf.Generator,
	config config.EmailConfig,
) *emailSender {
	return &emailSender{
		sender: sender,
		pdf:    pdf,
		config: config,
	}
}

type verificationEmailInput struct {
	VerificationCode string
	ExpiresIn        string
}

type welcomeEmailInput struct {
	Name          string
	ReferralCode  string
	HasAttachment bool
}

type passwordResetEmailInput struct {
	ResetURL string
}

func (s *emailSender) send(input emailProvider.SendEmailInput, template string, data any) error {
	if !s.config.Enabled {
		logger.Debug("email delivery disabled", zap.String("to", input.To), zap.String("subject", input.Subject))
		return nil
	}

	if err := input.GenerateBodyFromHTML(template, data); err != nil {
		return fmt.Errorf("generate email failed: %w", err)
	}

	if err := s.sender.Send(input); err != nil {
		return fmt.Errorf("send email failed: %w", err)
	}

	return nil
}

func (s *emailSender) SendVerificationEmail(_ context.Context, email, verificationCode string, expiresIn time.Duration) error {
	return s.send(
		emailProvider.SendEmailInput{Subject: "Your verification code", To: email},
		s.config.Templates.Verification,
		verificationEmailInput{VerificationCode: verificationCode, ExpiresIn: expiresIn.String()},
	)
}

// SendWelcomeEmail attaches a registration summary when a PDF font is available.
func (s *emailSender) SendWelcomeEmail(_ context.Context, input WelcomeEmailInput) error {
	sendInput := emailProvider.SendEmailInput{Subject: "Welcome to Kyrios", To: input.Email}

	if s.pdf != nil && s.config.Enabled {
		doc, err := s.pdf.GenerateRegistrationPDF(pdf.RegistrationSummary{
			Name:         input.Name,
			Email:        input.Email,
			Phone:        input.Phone,
			ReferralCode: input.ReferralCode,
			ReferredBy:   input.ReferredByCode,
			CreatedAt:    input.CreatedAt,
		})
		switch {
		case err == nil:
			sendInput.Attachments = append(sendInput.Attachments, emailProvider.Attachment{
				Filename: registrationPDFName,
				Data:     doc,
			})
		case errors.Is(err, pdf.ErrFontNotLoaded):
			logger.Warn("registration pdf skipped, no font", zap.String("to", input.Email))
		default:
			return fmt.Errorf("generate registration pdf failed: %w", err)
		}
	}

	return s.send(sendInput, s.config.Templates.Welcome, welcomeEmailInput{
		Name:          input.Name,
		ReferralCode:  input.ReferralCode,
		HasAttachment: len(sendInput.Attachments) > 0,
	})
}

func (s *emailSender) SendPasswordResetEmail(_ context.Context, email, resetURL string) error {
	return s.send(
		emailProvider.SendEmailInput{Subject: "Reset your password", To: email},
		s.config.Templates.PasswordReset,
		passwordResetEmailInput{ResetURL: resetURL},
	)
}
