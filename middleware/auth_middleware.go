// middleware/auth_middleware.go
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HSouheill/taxdesk_backend/apperrors"
	"github.com/HSouheill/taxdesk_backend/models"
)

// AuthCookieName is the cookie carrying the session token for browsers.
const AuthCookieName = "auth-token"

const authUserKey = "authUser"

// AuthUser is the caller identity decoded from a verified token.
type AuthUser struct {
	ID        primitive.ObjectID
	Role      string
	Email     string
	FirstName string
	LastName  string
}

func (u *AuthUser) IsAdmin() bool  { return u.Role == models.RoleAdmin }
func (u *AuthUser) IsClient() bool { return u.Role == models.RoleClient }

// TokenFromRequest returns the bearer token, falling back to the auth
// cookie.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get(echo.HeaderAuthorization); h != "" {
		if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
			return strings.TrimSpace(h[7:])
		}
		return ""
	}
	if cookie, err := r.Cookie(AuthCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// UserFromToken verifies tokenString and decodes the caller. Returns nil on
// any failure.
func (m *JWTManager) UserFromToken(tokenString string) *AuthUser {
	claims := m.Verify(tokenString)
	if claims == nil {
		return nil
	}
	id, err := primitive.ObjectIDFromHex(claims.ID)
	if err != nil {
		return nil
	}
	return &AuthUser{
		ID:        id,
		Role:      claims.Role,
		Email:     claims.Email,
		FirstName: claims.FirstName,
		LastName:  claims.LastName,
	}
}

// AccountCheck vets a verified caller against the current account state.
type AccountCheck func(ctx context.Context, user *AuthUser) error

// Authenticate verifies the request token and stores the caller on the
// context. Requests without a valid token are rejected with 401. The checks
// run after the token is verified, so a token outliving its account is
// refused too.
func Authenticate(m *JWTManager, checks ...AccountCheck) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := m.UserFromToken(TokenFromRequest(c.Request()))
			if user == nil {
				return apperrors.Unauthenticated("Invalid or missing token")
			}
			for _, check := range checks {
				if err := check(c.Request().Context(), user); err != nil {
					return err
				}
			}
			SetAuthUser(c, user)
			return next(c)
		}
	}
}

// RequireRole checks if the authenticated user has one of the allowed roles
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := RequireAuth(c)
			if err != nil {
				return err
			}
			for _, role := range roles {
				if user.Role == role {
					return next(c)
				}
			}
			return apperrors.Forbidden("Access denied for your role")
		}
	}
}

func SetAuthUser(c echo.Context, user *AuthUser) {
	c.Set(authUserKey, user)
}

// GetAuthUser returns the caller stored by Authenticate, or nil.
func GetAuthUser(c echo.Context) *AuthUser {
	user, _ := c.Get(authUserKey).(*AuthUser)
	return user
}

func RequireAuth(c echo.Context) (*AuthUser, error) {
	user := GetAuthUser(c)
	if user == nil {
		return nil, apperrors.Unauthenticated("")
	}
	return user, nil
}

func RequireAdmin(c echo.Context) (*AuthUser, error) {
	user, err := RequireAuth(c)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin() {
		return nil, apperrors.Forbidden("Admin access required")
	}
	return user, nil
}

func RequireClient(c echo.Context) (*AuthUser, error) {
	user, err := RequireAuth(c)
	if err != nil {
		return nil, err
	}
	if !user.IsClient() {
		return nil, apperrors.Forbidden("Client access required")
	}
	return user, nil
}
