package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math"
	"math/big"
	"time"

	"github.com/HSouheill/taxdesk_backend/apperrors"
	"github.com/HSouheill/taxdesk_backend/metrics"
	"github.com/HSouheill/taxdesk_backend/models"
)

const (
	OTPLength = 6
	// MaxOTPAttempts wrong guesses burn the code.
	MaxOTPAttempts = 5
	DefaultOTPTTL  = 10 * time.Minute
)

// OTPStore persists one-time codes keyed by (identifier, purpose).
type OTPStore interface {
	// Save replaces any code stored for the same identifier and purpose.
	Save(ctx context.Context, rec *models.OTPRecord) error
	// Get returns nil, nil when there is no code.
	Get(ctx context.Context, identifier, purpose string) (*models.OTPRecord, error)
	IncrementAttempts(ctx context.Context, identifier, purpose string) (int, error)
	// MarkUsed reports whether this call consumed the code.
	MarkUsed(ctx context.Context, identifier, purpose string) (bool, error)
}

// OTPService issues and verifies one-time codes. A code moves one way:
// issued, then consumed or expired.
type OTPService struct {
	store   OTPStore
	ttl     time.Duration
	now     func() time.Time
	metrics *metrics.Metrics
}

func NewOTPService(store OTPStore, ttl time.Duration, m *metrics.Metrics) *OTPService {
	if ttl <= 0 {
		ttl = DefaultOTPTTL
	}
	return &OTPService{store: store, ttl: ttl, now: time.Now, metrics: m}
}

// SetClock replaces the time source. Used by tests.
func (s *OTPService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *OTPService) TTL() time.Duration {
	return s.ttl
}

// Generate returns a uniformly random 6 digit code.
func (s *OTPService) Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generating otp: %w", err)
	}
	return fmt.Sprintf("%0*d", OTPLength, n.Int64()), nil
}

// Store saves code for identifier and purpose, replacing any previous one.
func (s *OTPService) Store(ctx context.Context, identifier, purpose, code string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = s.ttl
	}
	now := s.now()
	return s.store.Save(ctx, &models.OTPRecord{
		Identifier: models.NormalizeEmail(identifier),
		Purpose:    purpose,
		Code:       code,
		ExpiresAt:  now.Add(ttl),
		CreatedAt:  now,
	})
}

func (s *OTPService) active(ctx context.Context, identifier, purpose string) (*models.OTPRecord, error) {
	rec, err := s.store.Get(ctx, models.NormalizeEmail(identifier), purpose)
	if err != nil || rec == nil || !rec.IsActive(s.now()) {
		return nil, err
	}
	return rec, nil
}

// HasActive reports whether an unexpired, unused code exists.
func (s *OTPService) HasActive(ctx context.Context, identifier, purpose string) (bool, error) {
	rec, err := s.active(ctx, identifier, purpose)
	return rec != nil, err
}

// RemainingMinutes is the whole minutes, rounded up, until the active code
// expires. Zero when there is none.
func (s *OTPService) RemainingMinutes(ctx context.Context, identifier, purpose string) (int, error) {
	rec, err := s.active(ctx, identifier, purpose)
	if err != nil || rec == nil {
		return 0, err
	}
	return int(math.Ceil(rec.ExpiresAt.Sub(s.now()).Minutes())), nil
}

// Issue generates and stores a new code unless one is still active, in which
// case it fails with TooManyRequests carrying retryAfterMinutes.
//
// The check and the store are two steps, so two concurrent requests can both
// pass the check; the later write wins and only its code verifies.
func (s *OTPService) Issue(ctx context.Context, identifier, purpose string) (string, error) {
	remaining, err := s.RemainingMinutes(ctx, identifier, purpose)
	if err != nil {
		return "", err
	}
	if remaining > 0 {
		return "", apperrors.TooManyRequests(
			fmt.Sprintf("A code was already sent. Please wait %d minute(s) before requesting a new one", remaining),
		).WithDetail("retryAfterMinutes", remaining)
	}

	code, err := s.Generate()
	if err != nil {
		return "", apperrors.Internal(err)
	}
	if err := s.Store(ctx, identifier, purpose, code, s.ttl); err != nil {
		return "", err
	}
	if s.metrics != nil {
		s.metrics.OTPsIssued.WithLabelValues(purpose).Inc()
	}
	return code, nil
}

// Verify consumes the code. It fails when the code is missing, used,
// expired or wrong; the MaxOTPAttempts-th wrong guess burns the code.
func (s *OTPService) Verify(ctx context.Context, identifier, purpose, code string) error {
	err := s.verify(ctx, models.NormalizeEmail(identifier), purpose, code)
	if s.metrics != nil {
		result := "ok"
		if err != nil {
			result = "rejected"
		}
		s.metrics.OTPVerifications.WithLabelValues(purpose, result).Inc()
	}
	return err
}

func (s *OTPService) verify(ctx context.Context, identifier, purpose, code string) error {
	rec, err := s.store.Get(ctx, identifier, purpose)
	if err != nil {
		return err
	}
	if rec == nil || rec.IsUsed {
		return apperrors.Validation("Invalid or expired code")
	}
	if !s.now().Before(rec.ExpiresAt) {
		return apperrors.Validation("Code has expired, please request a new one")
	}

	if subtle.ConstantTimeCompare([]byte(rec.Code), []byte(code)) != 1 {
		attempts, err := s.store.IncrementAttempts(ctx, identifier, purpose)
		if err != nil {
			return err
		}
		if attempts >= MaxOTPAttempts {
			if _, err := s.store.MarkUsed(ctx, identifier, purpose); err != nil {
				return err
			}
			return apperrors.Validation("Too many failed attempts, please request a new code")
		}
		return apperrors.Validation("Invalid code").WithDetail("attemptsLeft", MaxOTPAttempts-attempts)
	}

	consumed, err := s.store.MarkUsed(ctx, identifier, purpose)
	if err != nil {
		return err
	}
	if !consumed {
		return apperrors.Validation("Invalid or expired code")
	}
	return nil
}
