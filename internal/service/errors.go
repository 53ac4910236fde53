package service

import "github.com/kyrios-fx/backend/internal/domain"

var (
	ErrPendingRegistrationExists = domain.NewError(domain.KindConflict, "registration is already pending for this email")
	ErrEmailInUse                = domain.NewError(domain.KindConflict, "email is already in use")
	ErrReferralCodeConflict      = domain.NewError(domain.KindConflict, "referral code is already taken, please retry")
	ErrUnknownReferrer           = domain.NewError(domain.KindNotFound, "referrer not found")
	ErrRegistrationNotFound      = domain.NewError(domain.KindNotFound, "no pending registration for this email")
	ErrRegistrationExpired       = domain.NewError(domain.KindExpired, "registration expired, please register again")
	ErrInvalidOTP                = domain.NewError(domain.KindAuthentication, "invalid otp")
	ErrOTPRequired               = &domain.Error{Kind: domain.KindValidation, Field: "otp", Message: "otp is required"}

	ErrInvalidCredentials  = domain.NewError(domain.KindAuthentication, "invalid email or password")
	ErrAccountLocked       = domain.NewError(domain.KindAuthentication, "account is temporarily locked, try again later")
	ErrEmailNotVerified    = domain.NewError(domain.KindAuthentication, "email is not verified")
	ErrInvalidRefreshToken = domain.NewError(domain.KindAuthentication, "invalid refresh token")
	ErrWrongPassword       = domain.NewError(domain.KindAuthentication, "current password is incorrect")
	ErrInvalidResetToken   = &domain.Error{Kind: domain.KindValidation, Field: "token", Message: "token is invalid or has expired"}
	ErrPasswordMismatch    = &domain.Error{Kind: domain.KindValidation, Field: "confirm_password", Message: "passwords do not match"}
	ErrProfileConflict     = domain.NewError(domain.KindConflict, "profile was modified concurrently, please retry")

	ErrUserNotFound  = domain.NewError(domain.KindNotFound, "user not found")
	ErrForbidden     = domain.NewError(domain.KindForbidden, "admin access required")
	ErrInvalidRole   = &domain.Error{Kind: domain.KindValidation, Field: "role", Message: "must be one of: admin trader referral"}
	ErrInvalidStatus = &domain.Error{Kind: domain.KindValidation, Field: "status", Message: "must be one of: active hold"}

	ErrInvalidAmount     = &domain.Error{Kind: domain.KindValidation, Field: "amount", Message: "must be greater than 0"}
	ErrPayoutNotFound    = domain.NewError(domain.KindNotFound, "payout request not found")
	ErrPayoutAlreadyPaid = domain.NewError(domain.KindConflict, "payout request is already paid")
)
