package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HSouheill/taxdesk_backend/apperrors"
	"github.com/HSouheill/taxdesk_backend/metrics"
	"github.com/HSouheill/taxdesk_backend/models"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestOTPService(t *testing.T) (*OTPService, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Now()}
	svc := NewOTPService(NewMemoryOTPStore(), 10*time.Minute, metrics.New("test"))
	svc.SetClock(clock.Now)
	return svc, clock
}

func TestOTPGenerate(t *testing.T) {
	svc, _ := newTestOTPService(t)
	for i := 0; i < 50; i++ {
		code, err := svc.Generate()
		require.NoError(t, err)
		assert.Len(t, code, OTPLength)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9')
		}
	}
}

func TestOTPIssueAndVerify(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestOTPService(t)

	code, err := svc.Issue(ctx, "Jane@Example.com", models.OTPPurposeAdminLogin)
	require.NoError(t, err)

	require.NoError(t, svc.Verify(ctx, "jane@example.com", models.OTPPurposeAdminLogin, code))

	err = svc.Verify(ctx, "jane@example.com", models.OTPPurposeAdminLogin, code)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestOTPSecondIssueIsRateLimited(t *testing.T) {
	ctx := context.Background()
	svc, clock := newTestOTPService(t)

	_, err := svc.Issue(ctx, "jane@example.com", models.OTPPurposePasswordReset)
	require.NoError(t, err)

	clock.Advance(3*time.Minute + 10*time.Second)
	_, err = svc.Issue(ctx, "jane@example.com", models.OTPPurposePasswordReset)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindTooManyRequests, apperrors.KindOf(err))

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, 7, appErr.Details["retryAfterMinutes"])

	// a different purpose is independent
	_, err = svc.Issue(ctx, "jane@example.com", models.OTPPurposeAdminLogin)
	assert.NoError(t, err)
}

func TestOTPExpiry(t *testing.T) {
	ctx := context.Background()
	svc, clock := newTestOTPService(t)

	code, err := svc.Issue(ctx, "jane@example.com", models.OTPPurposeClientLogin)
	require.NoError(t, err)

	clock.Advance(10*time.Minute + time.Second)
	err = svc.Verify(ctx, "jane@example.com", models.OTPPurposeClientLogin, code)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")

	// an expired code no longer blocks a new one
	_, err = svc.Issue(ctx, "jane@example.com", models.OTPPurposeClientLogin)
	assert.NoError(t, err)
}

func TestOTPWrongPurpose(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestOTPService(t)

	code, err := svc.Issue(ctx, "jane@example.com", models.OTPPurposeAdminLogin)
	require.NoError(t, err)
	assert.Error(t, svc.Verify(ctx, "jane@example.com", models.OTPPurposePasswordReset, code))
	assert.NoError(t, svc.Verify(ctx, "jane@example.com", models.OTPPurposeAdminLogin, code))
}

func TestOTPAttemptsBurnCode(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestOTPService(t)

	code, err := svc.Issue(ctx, "jane@example.com", models.OTPPurposeAdminLogin)
	require.NoError(t, err)
	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}

	for i := 1; i < MaxOTPAttempts; i++ {
		err := svc.Verify(ctx, "jane@example.com", models.OTPPurposeAdminLogin, wrong)
		appErr, ok := apperrors.As(err)
		require.True(t, ok)
		assert.Equal(t, MaxOTPAttempts-i, appErr.Details["attemptsLeft"])
	}

	err = svc.Verify(ctx, "jane@example.com", models.OTPPurposeAdminLogin, wrong)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Too many failed attempts")

	// the right code no longer works
	assert.Error(t, svc.Verify(ctx, "jane@example.com", models.OTPPurposeAdminLogin, code))
}

func TestOTPRemainingMinutes(t *testing.T) {
	ctx := context.Background()
	svc, clock := newTestOTPService(t)

	m, err := svc.RemainingMinutes(ctx, "jane@example.com", models.OTPPurposeAdminLogin)
	require.NoError(t, err)
	assert.Zero(t, m)

	require.NoError(t, svc.Store(ctx, "jane@example.com", models.OTPPurposeAdminLogin, "123456", 0))
	has, err := svc.HasActive(ctx, "jane@example.com", models.OTPPurposeAdminLogin)
	require.NoError(t, err)
	assert.True(t, has)

	clock.Advance(9*time.Minute + 30*time.Second)
	m, err = svc.RemainingMinutes(ctx, "jane@example.com", models.OTPPurposeAdminLogin)
	require.NoError(t, err)
	assert.Equal(t, 1, m)
}
