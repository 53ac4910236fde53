package v1

import "github.com/kyrios-fx/backend/internal/domain"

// Errors
const (
	UnknownErrorCode    = 0
	UnknownErrorMessage = "unknown error"

	ConflictCode                      = 1001
	NotFoundCode                      = 1002
	RefreshTokenCookieNotFoundCode    = 1003
	RefreshTokenCookieNotFoundMessage = "refresh token not found"
	InvalidRequestCode                = 1004
	ExpiredCode                       = 1005
	UnauthorizedCode                  = 1006
	UnauthorizedMessage               = "unauthorized"
	ForbiddenCode                     = 1007

	ValidationErrorCode    = 6000
	ValidationErrorMessage = "Validation error"
)

type ErrorCode int
type ErrorMessage string

type ErrorStruct struct {
	ErrorCode    `json:"error_code"`
	ErrorMessage `json:"error_message"`
} // @name ErrorStruct

type ValidationErrorStruct struct {
	ErrorCode    int               `json:"error_code"`
	ErrorMessage string            `json:"error_message"`
	Errors       []ValidationError `json:"validation_errors"`
} // @name ValidationErrorStruct

type ValidationError struct {
	FieldKey     string `json:"field_key"`
	ErrorMessage string `json:"error_message"`
}

func getErrorStruct(code ErrorCode, message string) *ErrorStruct {
	if message == "" {
		message = UnknownErrorMessage
	}
	return &ErrorStruct{
		ErrorCode:    code,
		ErrorMessage: ErrorMessage(message),
	}
}

func errorCodeForKind(kind domain.ErrorKind) ErrorCode {
	switch kind {
	case domain.KindValidation:
		return ValidationErrorCode
	case domain.KindConflict:
		return ConflictCode
	case domain.KindNotFound:
		return NotFoundCode
	case domain.KindExpired:
		return ExpiredCode
	case domain.KindAuthentication:
		return UnauthorizedCode
	case domain.KindForbidden:
		return ForbiddenCode
	}
	return UnknownErrorCode
}
