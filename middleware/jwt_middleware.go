// middleware/jwt_middleware.go
package middleware

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"

	"github.com/HSouheill/taxdesk_backend/models"
)

// DefaultTokenTTL is how long a session token stays valid.
const DefaultTokenTTL = 7 * 24 * time.Hour

// Claims for JWT token
type Claims struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	jwt.StandardClaims
}

// JWTManager signs and verifies session tokens with HS256.
type JWTManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTManager(secret string, ttl time.Duration) *JWTManager {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &JWTManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL returns the configured token lifetime.
func (m *JWTManager) TTL() time.Duration {
	return m.ttl
}

// Generate issues a token for identity and returns it with its expiry.
func (m *JWTManager) Generate(identity models.Identity) (string, time.Time, error) {
	if len(m.secret) == 0 {
		return "", time.Time{}, errors.New("JWT secret is not configured")
	}

	issued := m.now()
	expires := issued.Add(m.ttl)
	claims := &Claims{
		ID:        identity.GetID().Hex(),
		Role:      identity.GetRole(),
		Email:     identity.GetEmail(),
		FirstName: identity.GetFirstName(),
		LastName:  identity.GetLastName(),
		StandardClaims: jwt.StandardClaims{
			Subject:   identity.GetID().Hex(),
			IssuedAt:  issued.Unix(),
			ExpiresAt: expires.Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// Verify returns the claims of a valid token, or nil when the signature,
// algorithm, expiry or payload is wrong.
func (m *JWTManager) Verify(tokenString string) *Claims {
	if tokenString == "" || len(m.secret) == 0 {
		return nil
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil
	}

	if claims.ID == "" || (claims.Role != models.RoleAdmin && claims.Role != models.RoleClient) {
		return nil
	}
	return claims
}
