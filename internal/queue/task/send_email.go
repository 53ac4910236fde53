package task

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	SendVerificationEmailTaskName  = "sendVerificationEmailTask"
	SendWelcomeEmailTaskName       = "sendWelcomeEmailTask"
	SendPasswordResetEmailTaskName = "sendPasswordResetEmailTask"
	SendEmailQueueName             = "sendEmailQueue"

	defaultMaxRetry = 5
)

type SendVerificationEmail struct {
	Email            string        `json:"email"`
	VerificationCode string        `json:"verification_code"`
	ExpiresIn        time.Duration `json:"expires_in"`
}

// SendWelcomeEmail never carries the registrant's password.
type SendWelcomeEmail struct {
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	ReferralCode   string    `json:"referral_code"`
	ReferredByCode string    `json:"referred_by_code,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type SendPasswordResetEmail struct {
	Email    string `json:"email"`
	ResetURL string `json:"reset_url"`
}

func newEmailTask(name string, data any) (*asynq.Task, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("json data marshal failed: %w", err)
	}

	return asynq.NewTask(
		name,
		payload,
		asynq.MaxRetry(defaultMaxRetry),
		asynq.Queue(SendEmailQueueName),
	), nil
}

func NewSendVerificationEmailTask(email, verificationCode string, expiresIn time.Duration) (*asynq.Task, error) {
	return newEmailTask(SendVerificationEmailTaskName, SendVerificationEmail{
		Email:            email,
		VerificationCode: verificationCode,
		ExpiresIn:        expiresIn,
	})
}

func NewSendWelcomeEmailTask(data SendWelcomeEmail) (*asynq.Task, error) {
	return newEmailTask(SendWelcomeEmailTaskName, data)
}

func NewSendPasswordResetEmailTask(email, resetURL string) (*asynq.Task, error) {
	return newEmailTask(SendPasswordResetEmailTaskName, SendPasswordResetEmail{
		Email:    email,
		ResetURL: resetURL,
	})
}
