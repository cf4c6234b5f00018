// config/config.go
package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds every setting read from the environment.
type Config struct {
	Env  string `envconfig:"ENV" default:"development"`
	Port string `envconfig:"PORT" default:"8080"`

	MongoURI string `envconfig:"MONGO_URI"`
	DBName   string `envconfig:"DB_NAME" default:"taxdesk"`

	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"168h"`

	// OTPStore is one of "mongo", "redis" or "memory".
	OTPStore string        `envconfig:"OTP_STORE" default:"mongo"`
	OTPTTL   time.Duration `envconfig:"OTP_TTL" default:"10m"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	SMTPHost  string `envconfig:"SMTP_HOST"`
	SMTPPort  int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUser  string `envconfig:"SMTP_USER"`
	SMTPPass  string `envconfig:"SMTP_PASS"`
	FromEmail string `envconfig:"FROM_EMAIL"`

	// StorageProvider is "s3" or "firebase".
	StorageProvider    string        `envconfig:"STORAGE_PROVIDER" default:"s3"`
	StorageBucket      string        `envconfig:"STORAGE_BUCKET"`
	AWSRegion          string        `envconfig:"AWS_REGION" default:"us-east-1"`
	AWSAccessKeyID     string        `envconfig:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string        `envconfig:"AWS_SECRET_ACCESS_KEY"`
	FirebaseCredsFile  string        `envconfig:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseCredsB64   string        `envconfig:"FIREBASE_CREDENTIALS_BASE64"`
	FirebaseProjectID  string        `envconfig:"FIREBASE_PROJECT_ID"`
	DownloadURLTTL     time.Duration `envconfig:"DOWNLOAD_URL_TTL" default:"15m"`
	MaxUploadBytes     int64         `envconfig:"MAX_UPLOAD_BYTES" default:"26214400"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads .env (when present) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.MongoURI == "" {
		if !cfg.IsDevelopment() {
			return nil, fmt.Errorf("MONGO_URI environment variable is required for production")
		}
		cfg.MongoURI = "mongodb://localhost:27017"
	}

	switch cfg.OTPStore {
	case "mongo", "redis", "memory":
	default:
		return nil, fmt.Errorf("unknown OTP_STORE %q", cfg.OTPStore)
	}

	switch cfg.StorageProvider {
	case "s3", "firebase":
	default:
		return nil, fmt.Errorf("unknown STORAGE_PROVIDER %q", cfg.StorageProvider)
	}

	return &cfg, nil
}

// IsDevelopment reports whether the service runs in a development
// environment.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Env)
	return env == "development" || env == "dev"
}

// SMTPConfigured reports whether outgoing email can be sent.
func (c *Config) SMTPConfigured() bool {
	return c.SMTPHost != "" && c.SMTPUser != "" && c.SMTPPass != ""
}
