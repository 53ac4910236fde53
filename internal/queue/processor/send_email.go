package processor

import (
	"context"
	"encoding/json"

	"github.com/kyrios-fx/backend/internal/queue/task"
	"github.com/kyrios-fx/backend/internal/worker"

	"github.com/hibiken/asynq"
	"github.com/pkg/errors"
)

type sendVerificationEmailProcessor struct {
	workers *worker.Workers
}

func NewSendVerificationEmailProcessor(workers *worker.Workers) *sendVerificationEmailProcessor {
	return &sendVerificationEmailProcessor{
		workers: workers,
	}
}

func (p *sendVerificationEmailProcessor) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var data task.SendVerificationEmail
	if err := json.Unmarshal(t.Payload(), &data); err != nil {
		return errors.Wrapf(asynq.SkipRetry, "process send verification email task json unmarshal failed: %v", err)
	}

	if err := p.workers.EmailSender.SendVerificationEmail(ctx, data.Email, data.VerificationCode, data.ExpiresIn); err != nil {
		return errors.Wrap(err, "send verification email failed")
	}

	return nil
}

type sendWelcomeEmailProcessor struct {
	workers *worker.Workers
}

func NewSendWelcomeEmailProcessor(workers *worker.Workers) *sendWelcomeEmailProcessor {
	return &sendWelcomeEmailProcessor{
		workers: workers,
	}
}

func (p *sendWelcomeEmailProcessor) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var data task.SendWelcomeEmail
	if err := json.Unmarshal(t.Payload(), &data); err != nil {
		return errors.Wrapf(asynq.SkipRetry, "process send welcome email task json unmarshal failed: %v", err)
	}

	if err := p.workers.EmailSender.SendWelcomeEmail(ctx, worker.WelcomeEmailInput{
		Name:           data.Name,
		Email:          data.Email,
		Phone:          data.Phone,
		ReferralCode:   data.ReferralCode,
		ReferredByCode: data.ReferredByCode,
		CreatedAt:      data.CreatedAt,
	}); err != nil {
		return errors.Wrap(err, "send welcome email failed")
	}

	return nil
}

type sendPasswordResetEmailProcessor struct {
	workers *worker.Workers
}

func NewSendPasswordResetEmailProcessor(workers *worker.Workers) *sendPasswordResetEmailProcessor {
	return &sendPasswordResetEmailProcessor{
		workers: workers,
	}
}

func (p *sendPasswordResetEmailProcessor) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var data task.SendPasswordResetEmail
	if err := json.Unmarshal(t.Payload(), &data); err != nil {
		return errors.Wrapf(asynq.SkipRetry, "process send password reset email task json unmarshal failed: %v", err)
	}

	if err := p.workers.EmailSender.SendPasswordResetEmail(ctx, data.Email, data.ResetURL); err != nil {
		return errors.Wrap(err, "send password reset email failed")
	}

	return nil
}
