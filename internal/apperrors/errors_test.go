package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindClassification(t *testing.T) {
	err := Validation("bad value %q", "x")
	assert.Equal(t, KindValidation, KindOf(err))
	assert.True(t, IsKind(err, KindValidation))
	assert.False(t, IsKind(err, KindAuthorization))
	assert.Equal(t, `bad value "x"`, UserMessage(err))
}

func TestKindSurvivesWrapping(t *testing.T) {
	inner := OtpMismatch()
	wrapped := fmt.Errorf("verify field: %w", inner)

	assert.True(t, IsKind(wrapped, KindOtpMismatch))
	assert.Equal(t, KindOtpMismatch, KindOf(wrapped))
	assert.Equal(t, inner.Message, UserMessage(wrapped))
}

func TestUnknownErrorsAreInternal(t *testing.T) {
	err := errors.New("disk on fire")
	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, "internal server error", UserMessage(err))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := ServiceUnavailable("sms provider unreachable", cause)

	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "sms provider unreachable")
	assert.Contains(t, err.Error(), "connection reset")
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:         http.StatusBadRequest,
		KindAuthorization:      http.StatusForbidden,
		KindPackageFinalized:   http.StatusConflict,
		KindOtpExpired:         http.StatusUnprocessableEntity,
		KindOtpMismatch:        http.StatusUnprocessableEntity,
		KindAuthConfig:         http.StatusBadGateway,
		KindRateLimited:        http.StatusTooManyRequests,
		KindServiceUnavailable: http.StatusServiceUnavailable,
		KindNotFound:           http.StatusNotFound,
		KindInternal:           http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.HTTPStatus(), kind.String())
	}
}

func TestRetryable(t *testing.T) {
	assert.True(t, KindRateLimited.Retryable())
	assert.True(t, KindServiceUnavailable.Retryable())
	assert.False(t, KindValidation.Retryable())
	assert.False(t, KindOtpMismatch.Retryable())
}
