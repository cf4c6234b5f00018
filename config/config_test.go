package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ENV", "development")
	t.Setenv("MONGO_URI", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	assert.Equal(t, "taxdesk", cfg.DBName)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 10*time.Minute, cfg.OTPTTL)
	assert.Equal(t, "mongo", cfg.OTPStore)
	assert.Equal(t, int64(25<<20), cfg.MaxUploadBytes)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.SMTPConfigured())
}

func TestLoadProductionRequiresMongoURI(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ENV", "production")
	t.Setenv("MONGO_URI", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsUnknownOTPStore(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("OTP_STORE", "etcd")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadCORSOrigins(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com,https://admin.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.CORSAllowedOrigins)
}

func TestMaskMongoURI(t *testing.T) {
	assert.Equal(t, "mongodb://admin:***@db:27017/?authSource=admin",
		maskMongoURI("mongodb://admin:secret@db:27017/?authSource=admin"))
	assert.Equal(t, "mongodb://localhost:27017", maskMongoURI("mongodb://localhost:27017"))
}
