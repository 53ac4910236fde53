package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kyrios-fx/backend/internal/domain"
	pkgvalidator "github.com/kyrios-fx/backend/pkg/validator"

	"github.com/go-playground/validator/v10"
)

var (
	validate              = pkgvalidator.New()
	passwordPolicyMessage = pkgvalidator.Message("strongpassword", "")
)

// validateStruct reports the first violated rule in field declaration order.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		fe := validationErrors[0]
		return domain.NewValidationError(fe.Field(), pkgvalidator.Message(fe.Tag(), fe.Param()))
	}
	return fmt.Errorf("validate input: %w", err)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
