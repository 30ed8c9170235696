// Package session issues and verifies the stateless session tokens carried in the token cookie.
package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vasapolrittideah/showcase-api/services/account-service/internal/config"
	"github.com/vasapolrittideah/showcase-api/shared/auth"
)

// CookieName is the cookie that carries the session token.
const CookieName = "token"

var (
	ErrNoToken      = errors.New("no token provided")
	ErrInvalidToken = errors.New("invalid token")
)

// Claims is the session token payload. UserID duplicates the subject under the "id" key that page
// clients read.
type Claims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// Manager signs session tokens and builds the matching cookies.
type Manager struct {
	jwtAuth auth.JWTAuthenticator
	secret  string
	ttl     time.Duration
	secure  bool
}

// NewManager creates a Manager from the token settings in cfg.
func NewManager(cfg *config.AccountServiceConfig) *Manager {
	return &Manager{
		jwtAuth: auth.NewJWTAuthenticator(cfg.Token.Issuer, cfg.Token.Issuer),
		secret:  cfg.Token.SessionTokenSecret,
		ttl:     cfg.Token.SessionTokenExpiresIn,
		secure:  cfg.IsProduction(),
	}
}

// Issue returns a signed token for userID.
func (m *Manager) Issue(userID string) (string, error) {
	return m.jwtAuth.GenerateToken(Claims{
		UserID:           userID,
		RegisteredClaims: m.jwtAuth.RegisteredClaims(userID, m.ttl),
	}, m.secret)
}

// Verify checks token and returns its claims.
func (m *Manager) Verify(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrNoToken
	}

	var claims Claims
	if err := m.jwtAuth.ValidateTokenWithClaims(token, m.secret, &claims); err != nil {
		return nil, ErrInvalidToken
	}

	if claims.Subject == "" || claims.UserID != claims.Subject {
		return nil, ErrInvalidToken
	}

	return &claims, nil
}

// VerifyToken returns the user id a valid token was issued for.
func (m *Manager) VerifyToken(token string) (string, error) {
	claims, err := m.Verify(token)
	if err != nil {
		return "", err
	}

	return claims.Subject, nil
}

// Cookie wraps token in the session cookie.
func (m *Manager) Cookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl / time.Second),
		Expires:  time.Now().Add(m.ttl),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ExpiredCookie returns a cookie that makes the browser drop the session.
func (m *Manager) ExpiredCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
