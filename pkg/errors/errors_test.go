package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppErrorMessageFormatting(t *testing.T) {
	base := New("TEST", "something failed", http.StatusBadRequest)
	require.Equal(t, "something failed", base.Error())

	wrapped := base.WithInternal(errors.New("disk on fire"))
	require.Equal(t, "something failed: disk on fire", wrapped.Error())
	require.EqualError(t, errors.Unwrap(wrapped), "disk on fire")

	// The original must stay untouched.
	require.Nil(t, base.Internal)
}

func TestFromError(t *testing.T) {
	require.Nil(t, FromError(nil))

	appErr := FromError(ErrCodeExpired)
	require.Equal(t, "CODE_EXPIRED", appErr.Code)
	require.Equal(t, http.StatusGone, appErr.StatusCode)

	generic := FromError(errors.New("boom"))
	require.Equal(t, ErrInternalServer.Code, generic.Code)
	require.EqualError(t, generic.Internal, "boom")
}

func TestFromErrorUnwrapsWrappedAppError(t *testing.T) {
	err := Wrap(errors.New("deep"), "db unavailable")
	resolved := FromError(err)
	require.Equal(t, "INTERNAL_ERROR", resolved.Code)
	require.Equal(t, http.StatusInternalServerError, resolved.StatusCode)
}

func TestCredentialErrorsStayVague(t *testing.T) {
	// Login failures must not be distinguishable from a missing resource.
	require.Equal(t, http.StatusNotFound, ErrInvalidCredentials.StatusCode)
	require.NotContains(t, ErrInvalidCredentials.Message, "email")
	require.NotContains(t, ErrInvalidCredentials.Message, "password is wrong")
}
