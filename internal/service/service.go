package service

import (
	"context"
	"time"

	"github.com/kyrios-fx/backend/internal/cache"
	"github.com/kyrios-fx/backend/internal/config"
	"github.com/kyrios-fx/backend/internal/domain"
	"github.com/kyrios-fx/backend/internal/repository"
	"github.com/kyrios-fx/backend/pkg/auth"
	"github.com/kyrios-fx/backend/pkg/hash"
	"github.com/kyrios-fx/backend/pkg/otp"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
)

type Services struct {
	Registration Registration
	ReferralTree ReferralTree
	OTP          OTP
	Users        Users
	Admin        Admin
	Profits      Profits
	Payouts      Payouts
}

type Deps struct {
	Config       *config.Config
	Clock        clockwork.Clock
	Hasher       hash.PasswordHasher
	TokenManager auth.TokenManager
	OtpGenerator otp.Generator
	Mailer       Mailer
	Pending      cache.PendingRegistrations
	OTPCodes     cache.OTPCodes
	Repos        *repository.Repositories
}

func NewServices(deps Deps) *Services {
	clock := deps.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	sessions := newSessionIssuer(deps.Repos.RefreshSession, deps.TokenManager, clock)
	otpService := newOTPService(deps.OtpGenerator, deps.OTPCodes, deps.Mailer, deps.Config.Auth.VerificationCodeLength, deps.Config.Registration.PendingTTL)
	tree := newReferralTreeService(deps.Repos.Users, deps.Repos.Referrals, deps.Hasher, sessions, clock, deps.Config.Auth.AdminEmails)

	return &Services{
		Registration: newRegistrationService(deps.Pending, deps.Repos.Users, otpService, tree, deps.Mailer, clock, deps.Config.Registration),
		ReferralTree: tree,
		OTP:          otpService,
		Users: newUserService(deps.Repos.Users,
			deps.Repos.Referrals,
			deps.Repos.Profits,
			deps.Hasher,
			sessions,
			deps.Mailer,
			clock,
			deps.Config.Auth,
			deps.Config.HttpServer.PublicURL,
		),
		Admin:   newAdminService(deps.Repos.Users, deps.Repos.Referrals, deps.Repos.Profits),
		Profits: newProfitService(deps.Repos.Users, deps.Repos.Profits, clock, deps.Config.Incentives),
		Payouts: newPayoutService(deps.Repos.Users, deps.Repos.Payouts, clock),
	}
}

// Mailer delivers the notifications of the registration and account flows.
type Mailer interface {
	SendVerificationCode(ctx context.Context, email, code string, expiresIn time.Duration) error
	SendWelcome(ctx context.Context, registration domain.PendingRegistration) error
	SendPasswordReset(ctx context.Context, email, resetURL string) error
}

type ClientInfo struct {
	UserAgent string
	IP        string
}

type Tokens struct {
	AccessToken  string
	AccessTTL    time.Duration
	RefreshToken uuid.UUID
	RefreshTTL   time.Duration
}

type AuthResult struct {
	User   *domain.User
	Tokens *Tokens
}

type RegisterInput struct {
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone" validate:"required,phonenumber"`
	Password     string `json:"password" validate:"required,strongpassword"`
	Name         string `json:"name" validate:"required,min=3,max=100"`
	ReferralCode string `json:"referral_code"`
}

type RegisterResult struct {
	OTPSent   bool
	ExpiresIn time.Duration
}

type ConfirmOTPInput struct {
	Email  string
	OTP    string
	Client ClientInfo
}

type Registration interface {
	Register(ctx context.Context, input RegisterInput) (*RegisterResult, error)
	ConfirmOTP(ctx context.Context, input ConfirmOTPInput) (*AuthResult, error)
}

type ReferralTree interface {
	// Promote persists a verified candidate and links it under up to three ancestors.
	Promote(ctx context.Context, candidate *domain.PendingRegistration, client ClientInfo) (*AuthResult, error)
}

type OTP interface {
	Send(ctx context.Context, email string) error
	Verify(ctx context.Context, email, code string) (bool, error)
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Client   ClientInfo
}

type ResetPasswordInput struct {
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required,strongpassword"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
	Client          ClientInfo
}

type UpdateProfileInput struct {
	Name  *string `json:"name" validate:"omitempty,min=3,max=100"`
	Email *string `json:"email" validate:"omitempty,email"`
	Phone *string `json:"phone" validate:"omitempty,phonenumber"`
}

type Users interface {
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)
	Refresh(ctx context.Context, refreshToken string, client ClientInfo) (*AuthResult, error)
	Logout(ctx context.Context, refreshToken string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, input ResetPasswordInput) (*AuthResult, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error
	UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*domain.User, error)
	Me(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

type ListUsersInput struct {
	Role           string
	Status         string
	Email          string
	ReferredByCode string
	SortBy         string
	Order          string
	Page           int
	Limit          int
}

type UserPage struct {
	Users      []*domain.User
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

type Admin interface {
	EnsureAdmin(ctx context.Context, userID uuid.UUID) error
	ListUsers(ctx context.Context, input ListUsersInput) (*UserPage, error)
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role) (*domain.User, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status) (*domain.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

type RecordProfitInput struct {
	UserID uuid.UUID
	Date   time.Time
	Amount decimal.Decimal
}

type ProfitRecord struct {
	Entry      *domain.ProfitEntry
	Incentives []domain.ReferralIncentive
}

type Profits interface {
	RecordProfit(ctx context.Context, input RecordProfitInput) (*ProfitRecord, error)
	ListProfits(ctx context.Context, userID uuid.UUID) ([]domain.ProfitEntry, error)
	ListIncentives(ctx context.Context, ownerID uuid.UUID) ([]domain.ReferralIncentive, error)
}

type Payouts interface {
	RequestPayout(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*domain.PayoutRequest, error)
	ListPayouts(ctx context.Context, userID uuid.UUID) ([]domain.PayoutRequest, error)
	MarkPaid(ctx context.Context, id uuid.UUID) (*domain.PayoutRequest, error)
}
