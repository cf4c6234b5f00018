package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HSouheill/taxdesk_backend/apperrors"
	"github.com/HSouheill/taxdesk_backend/config"
	"github.com/HSouheill/taxdesk_backend/logger"
	"github.com/HSouheill/taxdesk_backend/metrics"
	"github.com/HSouheill/taxdesk_backend/middleware"
	"github.com/HSouheill/taxdesk_backend/models"
	"github.com/HSouheill/taxdesk_backend/repositories"
	"github.com/HSouheill/taxdesk_backend/services"
)

// requestTimeout bounds every database round trip of a request.
const requestTimeout = 10 * time.Second

// Deps are the collaborators shared by the controllers.
type Deps struct {
	Store    *repositories.Store
	OTP      *services.OTPService
	Mailer   services.Mailer
	Objects  services.ObjectStore
	Notifier services.Notifier
	JWT      *middleware.JWTManager
	Config   *config.Config
	Log      *logger.Logger
	Metrics  *metrics.Metrics
	Now      func() time.Time
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d *Deps) notify(adminID primitive.ObjectID, eventType, message string, data interface{}) {
	if d.Notifier != nil {
		d.Notifier.Notify(adminID, eventType, message, data)
	}
}

// CheckAccount refuses client tokens whose account was deactivated or
// removed after the token was issued.
func (d *Deps) CheckAccount(ctx context.Context, user *middleware.AuthUser) error {
	if !user.IsClient() {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	client, err := d.Store.Clients.FindByID(ctx, user.ID)
	if apperrors.Is(err, apperrors.KindNotFound) {
		return apperrors.Unauthenticated("Account no longer exists")
	}
	if err != nil {
		return err
	}
	if !client.IsActive() {
		return apperrors.Forbidden("Account is inactive")
	}
	return nil
}

func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

func respond(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, models.Response{
		Success: true,
		Status:  status,
		Message: message,
		Data:    data,
	})
}

// bindAndValidate decodes the body into req and runs the struct validator.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperrors.Validation("Invalid request body")
	}
	return c.Validate(req)
}

func parseID(c echo.Context, param, resource string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(c.Param(param))
	if err != nil {
		return primitive.NilObjectID, apperrors.Validation("Invalid " + resource + " ID")
	}
	return id, nil
}

// parseOptionalID parses a hex id that may be empty.
func parseOptionalID(s, field string) (*primitive.ObjectID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return nil, apperrors.Validation("Invalid " + field)
	}
	return &id, nil
}

// queryID reads an optional id filter from the query string. A zero id
// means no filter.
func queryID(c echo.Context, name string) (primitive.ObjectID, error) {
	id, err := parseOptionalID(c.QueryParam(name), name)
	if err != nil || id == nil {
		return primitive.NilObjectID, err
	}
	return *id, nil
}

// scopeOf restricts queries to the caller's records.
func scopeOf(user *middleware.AuthUser) repositories.Scope {
	if user.IsAdmin() {
		return repositories.Scope{AdminID: user.ID}
	}
	return repositories.Scope{ClientID: user.ID}
}

// ownedClient loads a client assigned to admin. Clients of other admins are
// reported as not found.
func (d *Deps) ownedClient(ctx context.Context, adminID, clientID primitive.ObjectID) (*models.Client, error) {
	client, err := d.Store.Clients.FindByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if client.AssignedAdminID != adminID {
		return nil, apperrors.NotFound("Client")
	}
	return client, nil
}

// activeClient is ownedClient for mutations, which are refused on
// deactivated clients.
func (d *Deps) activeClient(ctx context.Context, adminID primitive.ObjectID, clientIDHex string) (*models.Client, error) {
	clientID, err := primitive.ObjectIDFromHex(clientIDHex)
	if err != nil {
		return nil, apperrors.Validation("Invalid clientId")
	}
	client, err := d.ownedClient(ctx, adminID, clientID)
	if err != nil {
		return nil, err
	}
	if !client.IsActive() {
		return nil, apperrors.Validation("Client is inactive")
	}
	return client, nil
}

func (d *Deps) setAuthCookie(c echo.Context, token string, expires time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   !d.Config.IsDevelopment(),
		SameSite: http.SameSiteLaxMode,
	})
}

func (d *Deps) clearAuthCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   !d.Config.IsDevelopment(),
		SameSite: http.SameSiteLaxMode,
	})
}

func checkDateRange(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return apperrors.Validation("End date cannot be before start date")
	}
	return nil
}
