package validator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type registrationPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Code     string `json:"registration_code" validate:"required"`
}

func TestValidateStructSuccess(t *testing.T) {
	require.NoError(t, ValidateStruct(registrationPayload{
		Email:    "alex@example.com",
		Password: "secret-pass",
		Code:     "RIVERA23",
	}))
}

func TestValidateStructReportsJSONFieldNames(t *testing.T) {
	err := ValidateStruct(registrationPayload{
		Email:    "not-an-address",
		Password: "short",
	})
	require.Error(t, err)

	var fields []string
	ve, ok := err.(ValidationErrors)
	require.True(t, ok)
	for _, failure := range ve {
		fields = append(fields, failure.Field)
	}
	require.ElementsMatch(t, []string{"email", "password", "registration_code"}, fields)
}

func TestValidationErrorsMessage(t *testing.T) {
	err := ValidationErrors{
		{Field: "password", Tag: "min", Param: "8"},
		{Field: "email", Tag: "required"},
	}
	require.Equal(t, "password failed on min=8; email failed on required", err.Error())
	require.Equal(t, "validation failed", ValidationErrors{}.Error())
}
