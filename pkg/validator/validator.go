package validator

import (
	"fmt"
	"log"
	"reflect"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const (
	minPhoneLength    = 10
	minPasswordLength = 6
	// bcrypt rejects longer input.
	maxPasswordBytes = 72
)

// New returns a validator with the project tags registered and field names
// reported by their json names.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	register(v)
	return v
}

func RegisterGinValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		register(v)
	}
}

func register(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	if err := v.RegisterValidation("phonenumber", phoneNumberValidator); err != nil {
		log.Fatal("register phonenumber validator failed")
	}
	if err := v.RegisterValidation("strongpassword", strongPasswordValidator); err != nil {
		log.Fatal("register strongpassword validator failed")
	}
}

var phoneNumberValidator validator.Func = func(fl validator.FieldLevel) bool {
	return len(strings.TrimSpace(fl.Field().String())) >= minPhoneLength
}

var strongPasswordValidator validator.Func = func(fl validator.FieldLevel) bool {
	return IsStrongPassword(fl.Field().String())
}

// IsStrongPassword requires six to 72 bytes with a lowercase letter,
// an uppercase letter and a digit.
func IsStrongPassword(password string) bool {
	if len(password) < minPasswordLength || len(password) > maxPasswordBytes {
		return false
	}

	var lower, upper, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}

	return lower && upper && digit
}

// Message renders a human readable description of a failed tag.
func Message(tag string, value string) string {
	switch tag {
	case "required":
		return "this field is required"
	case "email":
		return "invalid email format"
	case "number":
		return "must be numeric"
	case "min":
		return fmt.Sprintf("must be at least %v characters long", value)
	case "max":
		return fmt.Sprintf("must be at most %v characters long", value)
	case "oneof":
		return fmt.Sprintf("must be one of: %v", value)
	case "gt":
		return fmt.Sprintf("must be greater than %v", value)
	case "phonenumber":
		return fmt.Sprintf("please enter a valid phone number of at least %d characters", minPhoneLength)
	case "strongpassword":
		return fmt.Sprintf("password must be %d to %d bytes long and contain a lowercase letter, an uppercase letter and a digit", minPasswordLength, maxPasswordBytes)
	case "eqfield":
		return fmt.Sprintf("must match %v", value)
	}
	return tag
}
