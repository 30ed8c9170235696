// Package guard gates page navigation on the session cookie.
package guard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/vasapolrittideah/showcase-api/services/account-service/internal/session"
)

const (
	LoginPath     = "/login"
	SignupPath    = "/signup"
	DashboardPath = "/dashboard"
)

// TokenChecker reports whether a session token is valid. An error means the answer is unknown.
type TokenChecker interface {
	Check(ctx context.Context, token string) (bool, error)
}

// Guard redirects page requests based on the session cookie: signed-out users away from the
// dashboard, signed-in users away from the login and signup pages.
type Guard struct {
	checker TokenChecker
	logger  *zerolog.Logger
}

func New(checker TokenChecker, logger *zerolog.Logger) *Guard {
	return &Guard{
		checker: checker,
		logger:  logger,
	}
}

// Handler wraps next with the guard.
func (g *Guard) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case isUnder(r.URL.Path, DashboardPath):
			if !g.authenticated(r) {
				http.Redirect(w, r, LoginPath, http.StatusTemporaryRedirect)
				return
			}
		case isUnder(r.URL.Path, LoginPath), isUnder(r.URL.Path, SignupPath):
			if g.authenticated(r) {
				http.Redirect(w, r, DashboardPath, http.StatusTemporaryRedirect)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// authenticated treats a missing cookie, a rejected token and a failed check alike.
func (g *Guard) authenticated(r *http.Request) bool {
	cookie, err := r.Cookie(session.CookieName)
	if err != nil || cookie.Value == "" {
		return false
	}

	ok, err := g.checker.Check(r.Context(), cookie.Value)
	if err != nil {
		g.logger.Warn().Err(err).Str("path", r.URL.Path).Msg("token check failed")
		return false
	}

	return ok
}

func isUnder(path, root string) bool {
	return path == root || strings.HasPrefix(path, root+"/")
}

// LocalChecker verifies tokens in process.
type LocalChecker struct {
	sessions *session.Manager
}

func NewLocalChecker(sessions *session.Manager) *LocalChecker {
	return &LocalChecker{sessions: sessions}
}

func (c *LocalChecker) Check(_ context.Context, token string) (bool, error) {
	_, err := c.sessions.Verify(token)
	return err == nil, nil
}

// RemoteChecker asks another instance's verify-token endpoint. Calls go through a circuit breaker so
// an unreachable verifier fails fast instead of stalling every page load.
type RemoteChecker struct {
	url    string
	client *http.Client
	cb     *gobreaker.CircuitBreaker
}

type verifyRequest struct {
	Token string `json:"token"`
}

type verifyResponse struct {
	IsValid *bool `json:"isValid"`
}

// NewRemoteChecker posts tokens to verifyURL.
func NewRemoteChecker(verifyURL string, timeout time.Duration, logger *zerolog.Logger) *RemoteChecker {
	st := gobreaker.Settings{
		Name:        "guard-verify-token",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// A navigation aborted by the browser says nothing about the verifier's health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info().
				Str("name", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state")
		},
	}

	return &RemoteChecker{
		url:    verifyURL,
		client: &http.Client{Timeout: timeout},
		cb:     gobreaker.NewCircuitBreaker(st),
	}
}

func (c *RemoteChecker) Check(ctx context.Context, token string) (bool, error) {
	result, err := c.cb.Execute(func() (any, error) {
		return c.verify(ctx, token)
	})
	if err != nil {
		return false, err
	}

	return result.(bool), nil
}

func (c *RemoteChecker) verify(ctx context.Context, token string) (bool, error) {
	body, err := json.Marshal(verifyRequest{Token: token})
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return false, fmt.Errorf("verify token: unexpected status %d", resp.StatusCode)
	}

	var out verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("verify token: decode response: %w", err)
	}
	if out.IsValid == nil {
		return false, fmt.Errorf("verify token: response has no isValid field")
	}

	return *out.IsValid, nil
}
