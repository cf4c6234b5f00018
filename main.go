package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/HSouheill/taxdesk_backend/config"
	"github.com/HSouheill/taxdesk_backend/controllers"
	"github.com/HSouheill/taxdesk_backend/logger"
	"github.com/HSouheill/taxdesk_backend/metrics"
	"github.com/HSouheill/taxdesk_backend/middleware"
	"github.com/HSouheill/taxdesk_backend/models"
	"github.com/HSouheill/taxdesk_backend/repositories"
	"github.com/HSouheill/taxdesk_backend/routes"
	"github.com/HSouheill/taxdesk_backend/services"
	"github.com/HSouheill/taxdesk_backend/utils"
	"github.com/HSouheill/taxdesk_backend/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLog := logger.New(&logger.Config{
		Level:   logger.ParseLevel(cfg.LogLevel),
		Console: cfg.IsDevelopment(),
	})
	m := metrics.New("taxdesk")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	mongoClient, db, err := config.ConnectDB(cfg, appLog)
	if err != nil {
		appLog.Fatal(err, "Failed to connect to MongoDB")
	}
	store := repositories.NewMongoStore(db)

	otpStore, err := newOTPStore(cfg, db, appLog)
	if err != nil {
		appLog.Fatal(err, "Failed to set up OTP store")
	}
	objects, err := newObjectStore(ctx, cfg)
	if err != nil {
		appLog.Fatal(err, "Failed to set up document storage")
	}

	seedCtx, cancelSeed := context.WithTimeout(ctx, 30*time.Second)
	if err := store.TaskCategories.EnsureDefaults(seedCtx, models.DefaultTaskCategories, time.Now()); err != nil {
		appLog.Error(err, "Failed to seed task categories")
	}
	cancelSeed()

	// Create WebSocket hub
	hub := websocket.NewHub(m, appLog)
	go hub.Run(ctx)

	scheduler := services.NewScheduler(store.Invoices, hub, m, appLog)
	if err := scheduler.Start(); err != nil {
		appLog.Fatal(err, "Failed to start scheduler")
	}

	deps := &controllers.Deps{
		Store:    store,
		OTP:      services.NewOTPService(otpStore, cfg.OTPTTL, m),
		Mailer:   newMailer(cfg, appLog),
		Objects:  objects,
		Notifier: hub,
		JWT:      middleware.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL),
		Config:   cfg,
		Log:      appLog,
		Metrics:  m,
	}

	e := newServer(cfg, deps, hub, mongoClient)

	go func() {
		appLog.Info("Starting server", "port", cfg.Port, "env", cfg.Env)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal(err, "Server stopped")
		}
	}()

	<-ctx.Done()
	appLog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		appLog.Error(err, "HTTP shutdown failed")
	}
	scheduler.Stop(shutdownCtx)
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		appLog.Error(err, "MongoDB disconnect failed")
	}
}

func newServer(cfg *config.Config, deps *controllers.Deps, hub *websocket.Hub, mongoClient *mongo.Client) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = utils.NewValidator()
	e.HTTPErrorHandler = middleware.ErrorHandler(deps.Log)

	corsConfig := middleware.NewCORSConfig(cfg.IsDevelopment(), cfg.CORSAllowedOrigins)
	rateLimiter := middleware.NewRateLimiter()

	// Middleware
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Log))
	e.Use(middleware.Metrics(deps.Metrics))
	e.Use(middleware.CORSWithConfig(corsConfig))
	e.Use(middleware.SecurityHeadersWithConfig(middleware.SecurityConfig{
		AllowedDomains: cfg.CORSAllowedOrigins,
		HSTS:           !cfg.IsDevelopment(),
	}))
	e.Use(rateLimiter.RateLimit())
	e.Use(echoMiddleware.BodyLimit(bodyLimit(cfg.MaxUploadBytes)))
	if !cfg.IsDevelopment() {
		e.Use(httpsRedirect())
	}

	routes.SetupRoutes(e, deps, routes.Options{
		Hub:         hub,
		AllowOrigin: corsConfig.AllowOrigin,
		Ping: func(ctx context.Context) error {
			return mongoClient.Ping(ctx, nil)
		},
	})
	return e
}

// newOTPStore picks the OTP backend named by OTP_STORE.
func newOTPStore(cfg *config.Config, db *mongo.Database, appLog *logger.Logger) (services.OTPStore, error) {
	switch cfg.OTPStore {
	case "redis":
		client, err := config.ConnectRedis(cfg)
		if err != nil {
			return nil, err
		}
		appLog.Info("Using Redis OTP store", "addr", cfg.RedisAddr)
		return services.NewRedisOTPStore(client), nil
	case "memory":
		appLog.Warn("Using in-memory OTP store; codes are lost on restart")
		return services.NewMemoryOTPStore(), nil
	default:
		return repositories.NewMongoOTPStore(db), nil
	}
}

func newObjectStore(ctx context.Context, cfg *config.Config) (services.ObjectStore, error) {
	if cfg.StorageProvider == "firebase" {
		app, err := config.InitFirebase(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return services.NewFirebaseStore(ctx, app, cfg.StorageBucket)
	}
	return services.NewS3Store(services.S3Config{
		Bucket:          cfg.StorageBucket,
		Region:          cfg.AWSRegion,
		AccessKeyID:     cfg.AWSAccessKeyID,
		SecretAccessKey: cfg.AWSSecretAccessKey,
	})
}

func newMailer(cfg *config.Config, appLog *logger.Logger) services.Mailer {
	if !cfg.SMTPConfigured() {
		appLog.Warn("SMTP is not configured; verification codes are written to the log")
		return services.NewLogMailer(appLog)
	}
	return services.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.FromEmail, appLog)
}

// bodyLimit leaves one megabyte of headroom over the upload limit for the
// multipart envelope.
func bodyLimit(maxUpload int64) string {
	if maxUpload <= 0 {
		maxUpload = utils.MaxFileSize
	}
	return fmt.Sprintf("%dK", (maxUpload+1<<20)/1024)
}

func httpsRedirect() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get("X-Forwarded-Proto") == "http" {
				return c.Redirect(http.StatusMovedPermanently, "https://"+c.Request().Host+c.Request().RequestURI)
			}
			return next(c)
		}
	}
}
