package mock_service

import (
	"context"
	"time"

	"github.com/kyrios-fx/backend/internal/domain"
	"github.com/kyrios-fx/backend/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type Mailer struct {
	mock.Mock
}

func (m *Mailer) SendVerificationCode(ctx context.Context, email, code string, expiresIn time.Duration) error {
	return m.Called(ctx, email, code, expiresIn).Error(0)
}

func (m *Mailer) SendWelcome(ctx context.Context, registration domain.PendingRegistration) error {
	return m.Called(ctx, registration).Error(0)
}

func (m *Mailer) SendPasswordReset(ctx context.Context, email, resetURL string) error {
	return m.Called(ctx, email, resetURL).Error(0)
}

type Registration struct {
	mock.Mock
}

func (m *Registration) Register(ctx context.Context, input service.RegisterInput) (*service.RegisterResult, error) {
	args := m.Called(ctx, input)
	res, _ := args.Get(0).(*service.RegisterResult)
	return res, args.Error(1)
}

func (m *Registration) ConfirmOTP(ctx context.Context, input service.ConfirmOTPInput) (*service.AuthResult, error) {
	args := m.Called(ctx, input)
	res, _ := args.Get(0).(*service.AuthResult)
	return res, args.Error(1)
}

type Users struct {
	mock.Mock
}

func (m *Users) Login(ctx context.Context, input service.LoginInput) (*service.AuthResult, error) {
	args := m.Called(ctx, input)
	res, _ := args.Get(0).(*service.AuthResult)
	return res, args.Error(1)
}

func (m *Users) Refresh(ctx context.Context, refreshToken string, client service.ClientInfo) (*service.AuthResult, error) {
	args := m.Called(ctx, refreshToken, client)
	res, _ := args.Get(0).(*service.AuthResult)
	return res, args.Error(1)
}

func (m *Users) Logout(ctx context.Context, refreshToken string) error {
	return m.Called(ctx, refreshToken).Error(0)
}

func (m *Users) ForgotPassword(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *Users) ResetPassword(ctx context.Context, input service.ResetPasswordInput) (*service.AuthResult, error) {
	args := m.Called(ctx, input)
	res, _ := args.Get(0).(*service.AuthResult)
	return res, args.Error(1)
}

func (m *Users) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	return m.Called(ctx, userID, current, next).Error(0)
}

func (m *Users) UpdateProfile(ctx context.Context, userID uuid.UUID, input service.UpdateProfileInput) (*domain.User, error) {
	args := m.Called(ctx, userID, input)
	res, _ := args.Get(0).(*domain.User)
	return res, args.Error(1)
}

func (m *Users) Me(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, userID)
	res, _ := args.Get(0).(*domain.User)
	return res, args.Error(1)
}

type Admin struct {
	mock.Mock
}

func (m *Admin) EnsureAdmin(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *Admin) ListUsers(ctx context.Context, input service.ListUsersInput) (*service.UserPage, error) {
	args := m.Called(ctx, input)
	res, _ := args.Get(0).(*service.UserPage)
	return res, args.Error(1)
}

func (m *Admin) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	res, _ := args.Get(0).(*domain.User)
	return res, args.Error(1)
}

func (m *Admin) UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role) (*domain.User, error) {
	args := m.Called(ctx, id, role)
	res, _ := args.Get(0).(*domain.User)
	return res, args.Error(1)
}

func (m *Admin) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status) (*domain.User, error) {
	args := m.Called(ctx, id, status)
	res, _ := args.Get(0).(*domain.User)
	return res, args.Error(1)
}

func (m *Admin) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type Profits struct {
	mock.Mock
}

func (m *Profits) RecordProfit(ctx context.Context, input service.RecordProfitInput) (*service.ProfitRecord, error) {
	args := m.Called(ctx, input)
	res, _ := args.Get(0).(*service.ProfitRecord)
	return res, args.Error(1)
}

func (m *Profits) ListProfits(ctx context.Context, userID uuid.UUID) ([]domain.ProfitEntry, error) {
	args := m.Called(ctx, userID)
	res, _ := args.Get(0).([]domain.ProfitEntry)
	return res, args.Error(1)
}

func (m *Profits) ListIncentives(ctx context.Context, ownerID uuid.UUID) ([]domain.ReferralIncentive, error) {
	args := m.Called(ctx, ownerID)
	res, _ := args.Get(0).([]domain.ReferralIncentive)
	return res, args.Error(1)
}

type Payouts struct {
	mock.Mock
}

func (m *Payouts) RequestPayout(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*domain.PayoutRequest, error) {
	args := m.Called(ctx, userID, amount)
	res, _ := args.Get(0).(*domain.PayoutRequest)
	return res, args.Error(1)
}

func (m *Payouts) ListPayouts(ctx context.Context, userID uuid.UUID) ([]domain.PayoutRequest, error) {
	args := m.Called(ctx, userID)
	res, _ := args.Get(0).([]domain.PayoutRequest)
	return res, args.Error(1)
}

func (m *Payouts) MarkPaid(ctx context.Context, id uuid.UUID) (*domain.PayoutRequest, error) {
	args := m.Called(ctx, id)
	res, _ := args.Get(0).(*domain.PayoutRequest)
	return res, args.Error(1)
}
