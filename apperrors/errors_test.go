package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:      http.StatusBadRequest,
		KindUnauthenticated: http.StatusUnauthorized,
		KindForbidden:       http.StatusForbidden,
		KindNotFound:        http.StatusNotFound,
		KindConflict:        http.StatusConflict,
		KindTooManyRequests: http.StatusTooManyRequests,
		KindInternal:        http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, kind.HTTPStatus(), kind.String())
	}
}

func TestKindOfWrappedError(t *testing.T) {
	err := fmt.Errorf("loading client: %w", NotFound("Client"))

	assert.Equal(t, KindNotFound, KindOf(err))
	assert.True(t, Is(err, KindNotFound))
	assert.False(t, Is(err, KindConflict))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestInternalHidesCause(t *testing.T) {
	cause := errors.New("connection reset by peer")
	err := Internal(cause)

	assert.Equal(t, "Internal server error", err.Message)
	assert.ErrorIs(t, err, cause)
}

func TestWithDetail(t *testing.T) {
	err := TooManyRequests("OTP already sent").WithDetail("retryAfterMinutes", 4)

	appErr, ok := As(err)
	assert.True(t, ok)
	assert.Equal(t, 4, appErr.Details["retryAfterMinutes"])
}
