package validator

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsStrongPassword(t *testing.T) {
	cases := map[string]bool{
		"Abc123":   true,
		"aB3xxxxx": true,
		"Ab1":      false,
		"abcdef1":  false,
		"ABCDEF1":  false,
		"Abcdefg":  false,
		"":         false,
	}
	for password, want := range cases {
		assert.Equal(t, want, IsStrongPassword(password), password)
	}
}

func TestIsStrongPassword_BcryptLimit(t *testing.T) {
	atLimit := "Aa1" + strings.Repeat("x", maxPasswordBytes-3)
	overLimit := "Aa1" + strings.Repeat("x", 80)

	assert.True(t, IsStrongPassword(atLimit))
	assert.False(t, IsStrongPassword(overLimit))
	assert.Contains(t, Message("strongpassword", ""), "72")
}

type signup struct {
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"phonenumber"`
	Password string `json:"password" validate:"strongpassword"`
}

func TestNew_ReportsJSONFieldNamesInOrder(t *testing.T) {
	v := New()

	err := v.Struct(signup{Email: "bad", Phone: "123", Password: "weak"})
	require.Error(t, err)

	var verr validator.ValidationErrors
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr, 3)
	assert.Equal(t, "email", verr[0].Field())
	assert.Equal(t, "phone", verr[1].Field())
	assert.Equal(t, "phonenumber", verr[1].Tag())
	assert.Equal(t, "password", verr[2].Field())
	assert.Equal(t, "strongpassword", verr[2].Tag())

	assert.NoError(t, v.Struct(signup{Email: "a@b.co", Phone: "5551234567", Password: "Abc123"}))
}
