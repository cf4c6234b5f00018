package services

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/patrickmn/go-cache"

	"github.com/HSouheill/taxdesk_backend/apperrors"
	"github.com/HSouheill/taxdesk_backend/models"
)

func otpCacheKey(identifier, purpose string) string {
	return "otp:" + purpose + ":" + identifier
}

// MemoryOTPStore keeps codes in process memory. Suitable for a single
// instance and for tests.
type MemoryOTPStore struct {
	mu    sync.Mutex
	cache *cache.Cache
}

func NewMemoryOTPStore() *MemoryOTPStore {
	return &MemoryOTPStore{cache: cache.New(DefaultOTPTTL, time.Minute)}
}

func (s *MemoryOTPStore) Save(_ context.Context, rec *models.OTPRecord) error {
	key := otpCacheKey(rec.Identifier, rec.Purpose)
	ttl := time.Until(rec.ExpiresAt)

	s.mu.Lock()
	defer s.mu.Unlock()
	if ttl <= 0 {
		s.cache.Delete(key)
		return nil
	}
	cp := *rec
	s.cache.Set(key, &cp, ttl)
	return nil
}

func (s *MemoryOTPStore) Get(_ context.Context, identifier, purpose string) (*models.OTPRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.cache.Get(otpCacheKey(identifier, purpose))
	if !ok {
		return nil, nil
	}
	cp := *v.(*models.OTPRecord)
	return &cp, nil
}

func (s *MemoryOTPStore) IncrementAttempts(_ context.Context, identifier, purpose string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.cache.Get(otpCacheKey(identifier, purpose))
	if !ok {
		return 0, nil
	}
	rec := v.(*models.OTPRecord)
	rec.Attempts++
	return rec.Attempts, nil
}

func (s *MemoryOTPStore) MarkUsed(_ context.Context, identifier, purpose string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.cache.Get(otpCacheKey(identifier, purpose))
	if !ok {
		return false, nil
	}
	rec := v.(*models.OTPRecord)
	if rec.IsUsed {
		return false, nil
	}
	rec.IsUsed = true
	return true, nil
}

// RedisOTPStore keeps each code in a hash that expires with the code.
type RedisOTPStore struct {
	client *redis.Client
}

func NewRedisOTPStore(client *redis.Client) *RedisOTPStore {
	return &RedisOTPStore{client: client}
}

// hincrExisting increments a hash field only when the key still exists, so a
// late increment never resurrects an expired code without a TTL.
var hincrExisting = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return -1
end
return redis.call('HINCRBY', KEYS[1], ARGV[1], 1)
`)

func (s *RedisOTPStore) Save(ctx context.Context, rec *models.OTPRecord) error {
	key := otpCacheKey(rec.Identifier, rec.Purpose)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, map[string]interface{}{
			"code":      rec.Code,
			"expiresAt": rec.ExpiresAt.UnixNano(),
			"createdAt": rec.CreatedAt.UnixNano(),
			"attempts":  rec.Attempts,
			"used":      boolToInt(rec.IsUsed),
		})
		pipe.PExpireAt(ctx, key, rec.ExpiresAt)
		return nil
	})
	if err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

func (s *RedisOTPStore) Get(ctx context.Context, identifier, purpose string) (*models.OTPRecord, error) {
	fields, err := s.client.HGetAll(ctx, otpCacheKey(identifier, purpose)).Result()
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	expires, _ := strconv.ParseInt(fields["expiresAt"], 10, 64)
	created, _ := strconv.ParseInt(fields["createdAt"], 10, 64)
	attempts, _ := strconv.Atoi(fields["attempts"])
	used, _ := strconv.Atoi(fields["used"])
	return &models.OTPRecord{
		Identifier: identifier,
		Purpose:    purpose,
		Code:       fields["code"],
		ExpiresAt:  time.Unix(0, expires),
		CreatedAt:  time.Unix(0, created),
		Attempts:   attempts,
		IsUsed:     used > 0,
	}, nil
}

func (s *RedisOTPStore) IncrementAttempts(ctx context.Context, identifier, purpose string) (int, error) {
	n, err := hincrExisting.Run(ctx, s.client, []string{otpCacheKey(identifier, purpose)}, "attempts").Int()
	if err != nil {
		return 0, apperrors.Internal(err)
	}
	if n < 0 {
		return 0, nil
	}
	return n, nil
}

func (s *RedisOTPStore) MarkUsed(ctx context.Context, identifier, purpose string) (bool, error) {
	n, err := hincrExisting.Run(ctx, s.client, []string{otpCacheKey(identifier, purpose)}, "used").Int()
	if err != nil {
		return false, apperrors.Internal(err)
	}
	return n == 1, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
