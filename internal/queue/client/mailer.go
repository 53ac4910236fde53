package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kyrios-fx/backend/internal/domain"
	"github.com/kyrios-fx/backend/internal/queue/task"
	"github.com/kyrios-fx/backend/pkg/logger"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

var ErrNoClient = errors.New("asynq client is not configured")

// Mailer turns notifications into email tasks on the queue.
type Mailer struct {
	maxRetry int
}

func NewMailer(maxRetry int) *Mailer {
	return &Mailer{maxRetry: maxRetry}
}

func (m *Mailer) enqueue(ctx context.Context, t *asynq.Task) error {
	client := GetClient(ctx)
	if client == nil {
		return ErrNoClient
	}

	var opts []asynq.Option
	if m.maxRetry > 0 {
		opts = append(opts, asynq.MaxRetry(m.maxRetry))
	}

	info, err := client.EnqueueContext(ctx, t, opts...)
	if err != nil {
		return fmt.Errorf("enqueue %s task failed: %w", t.Type(), err)
	}

	logger.Debug("task enqueued", zap.String("type", t.Type()), zap.String("id", info.ID), zap.String("queue", info.Queue))
	return nil
}

func (m *Mailer) SendVerificationCode(ctx context.Context, email, code string, expiresIn time.Duration) error {
	t, err := task.NewSendVerificationEmailTask(email, code, expiresIn)
	if err != nil {
		return err
	}
	return m.enqueue(ctx, t)
}

func (m *Mailer) SendWelcome(ctx context.Context, registration domain.PendingRegistration) error {
	t, err := task.NewSendWelcomeEmailTask(task.SendWelcomeEmail{
		Name:           registration.Name,
		Email:          registration.Email,
		Phone:          registration.Phone,
		ReferralCode:   registration.ReferralCode,
		ReferredByCode: registration.ReferredByCode,
		CreatedAt:      registration.CreatedAt,
	})
	if err != nil {
		return err
	}
	return m.enqueue(ctx, t)
}

func (m *Mailer) SendPasswordReset(ctx context.Context, email, resetURL string) error {
	t, err := task.NewSendPasswordResetEmailTask(email, resetURL)
	if err != nil {
		return err
	}
	return m.enqueue(ctx, t)
}
