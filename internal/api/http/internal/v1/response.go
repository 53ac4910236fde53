package v1

import (
	"errors"
	"net/http"

	"github.com/kyrios-fx/backend/internal/domain"
	"github.com/kyrios-fx/backend/pkg/logger"
	pkgValidator "github.com/kyrios-fx/backend/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var statusForKind = map[domain.ErrorKind]int{
	domain.KindValidation:     http.StatusBadRequest,
	domain.KindConflict:       http.StatusConflict,
	domain.KindNotFound:       http.StatusNotFound,
	domain.KindExpired:        http.StatusGone,
	domain.KindAuthentication: http.StatusUnauthorized,
	domain.KindForbidden:      http.StatusForbidden,
}

func errorResponse(c *gin.Context, status int, code ErrorCode, message string) {
	c.AbortWithStatusJSON(status, getErrorStruct(code, message))
}

// serviceErrorResponse renders a business error by its kind and hides everything else behind a 500.
func serviceErrorResponse(c *gin.Context, err error, msg string) {
	var derr *domain.Error
	if !errors.As(err, &derr) {
		logger.Error(msg, zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, UnknownErrorCode, UnknownErrorMessage)
		return
	}

	if derr.Kind == domain.KindValidation && derr.Field != "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, ValidationErrorStruct{
			ErrorCode:    ValidationErrorCode,
			ErrorMessage: ValidationErrorMessage,
			Errors:       []ValidationError{{FieldKey: derr.Field, ErrorMessage: derr.Message}},
		})
		return
	}

	status, ok := statusForKind[derr.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	errorResponse(c, status, errorCodeForKind(derr.Kind), derr.Message)
}

// validationErrorResponse renders binding failures, falling back to a plain 400 for malformed bodies.
func validationErrorResponse(c *gin.Context, err error) {
	var verr validator.ValidationErrors
	if !errors.As(err, &verr) {
		errorResponse(c, http.StatusBadRequest, InvalidRequestCode, "invalid request body")
		return
	}

	out := make([]ValidationError, len(verr))
	for i, ferr := range verr {
		out[i] = ValidationError{ferr.Field(), pkgValidator.Message(ferr.Tag(), ferr.Param())}
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, ValidationErrorStruct{
		ErrorCode:    ValidationErrorCode,
		ErrorMessage: ValidationErrorMessage,
		Errors:       out,
	})
}
