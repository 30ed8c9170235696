package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasapolrittideah/showcase-api/services/account-service/internal/config"
	"github.com/vasapolrittideah/showcase-api/services/account-service/internal/guard"
	"github.com/vasapolrittideah/showcase-api/services/account-service/internal/notifier"
	"github.com/vasapolrittideah/showcase-api/services/account-service/internal/repository"
	"github.com/vasapolrittideah/showcase-api/services/account-service/internal/session"
	"github.com/vasapolrittideah/showcase-api/services/account-service/internal/usecase"
	"github.com/vasapolrittideah/showcase-api/shared/middleware"
	"github.com/vasapolrittideah/showcase-api/shared/ratelimit"
	"github.com/vasapolrittideah/showcase-api/shared/validation"
)

type memoryObjectStore struct {
	objects map[string][]byte
}

func (s *memoryObjectStore) Upload(_ context.Context, key, _ string, body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	s.objects[key] = data
	return "s3://bucket/" + key, nil
}

func (s *memoryObjectStore) PresignURL(_ context.Context, ref string, _ time.Duration) (string, error) {
	return "https://signed.example.com/" + strings.TrimPrefix(ref, "s3://"), nil
}

type testEnv struct {
	router   http.Handler
	sessions *session.Manager
	users    repository.UserRepository
	store    *memoryObjectStore
}

type envOptions struct {
	noStorage bool
	limiter   ratelimit.Limiter
	webRoot   string
	ready     func(context.Context) error
}

func newTestEnv(t *testing.T, opts envOptions) *testEnv {
	t.Helper()

	cfg := &config.AccountServiceConfig{
		Env:                 "development",
		AppPasswordResetURL: "https://app.example.com/reset-password",
	}
	cfg.Token.Issuer = "showcase-test"
	cfg.Token.SessionTokenSecret = "session-secret"
	cfg.Token.SessionTokenExpiresIn = 720 * time.Hour
	cfg.Token.PasswordResetTokenSecret = "reset-secret"
	cfg.Token.PasswordResetTokenExpiresIn = 15 * time.Minute

	logger := zerolog.Nop()
	mem := repository.NewMemoryStore()
	sessions := session.NewManager(cfg)
	notes := notifier.NewNopNotifier()

	objects := &memoryObjectStore{objects: make(map[string][]byte)}
	var store usecase.ObjectStore = objects
	if opts.noStorage {
		store = nil
	}

	h := NewHandler(
		Usecases{
			Auth:          usecase.NewAuthUsecase(mem.Users(), sessions, notes, &logger),
			Profile:       usecase.NewProfileUsecase(mem.Users(), store, notes, 1<<20, time.Minute, &logger),
			Quiz:          usecase.NewQuizUsecase(mem.Users()),
			PasswordReset: usecase.NewPasswordResetUsecase(mem.Users(), mem.PasswordResetTokens(), notes, cfg, &logger),
		},
		sessions,
		validation.New(),
		1<<20,
		&logger,
	)

	return &testEnv{
		router: h.Router(RouterConfig{
			Limiter: opts.limiter,
			Guard:   guard.New(guard.NewLocalChecker(sessions), &logger),
			WebRoot: opts.webRoot,
			Ready:   opts.ready,
		}),
		sessions: sessions,
		users:    mem.Users(),
		store:    objects,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) upload(
	t *testing.T,
	path string,
	fields map[string]string,
	content []byte,
	cookies ...*http.Cookie,
) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	part, err := mw.CreateFormFile("file", "upload.bin")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// signupAndLogin registers a user and returns the session cookie set by login.
func (e *testEnv) signupAndLogin(t *testing.T, email string) *http.Cookie {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/auth/signup", map[string]string{
		"name": "Jo", "email": email, "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = e.do(t, http.MethodPost, "/auth/login", map[string]string{"email": email, "password": "secret1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	return sessionCookie(t, rec)
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}

	t.Fatalf("no %s cookie in response", session.CookieName)
	return nil
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestSignupAndLogin(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, envOptions{})

	rec := env.do(t, http.MethodPost, "/auth/signup", map[string]string{
		"name": "Jo", "email": "jo@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["id"])
	assert.Equal(t, "Jo", body["name"])
	assert.Equal(t, "jo@example.com", body["email"])
	assert.NotContains(t, body, "password")
	assert.Empty(t, rec.Result().Cookies())

	rec = env.do(t, http.MethodPost, "/auth/login", map[string]string{"email": "jo@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, body["id"], decodeBody(t, rec)["id"])

	cookie := sessionCookie(t, rec)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, 30*24*60*60, cookie.MaxAge)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}

func TestLogin_WrongPassword(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, envOptions{})
	env.signupAndLogin(t, "jo@example.com")

	rec := env.do(t, http.MethodPost, "/auth/login", map[string]string{"email": "jo@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", decodeBody(t, rec)["message"])
	assert.Empty(t, rec.Result().Cookies())

	rec = env.do(t, http.MethodPost, "/auth/login", map[string]string{"email": "nobody@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", decodeBody(t, rec)["message"])
}

func TestSignup_Duplicate(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, envOptions{})
	env.signupAndLogin(t, "jo@example.com")

	rec := env.do(t, http.MethodPost, "/auth/signup", map[string]string{
		"name": "Jo", "email": "jo@example.com", "password": "another",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User already exists", decodeBody(t, rec)["message"])
}

func TestSignup_Validation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, envOptions{})

	tests := []struct {
		name    string
		body    map[string]string
		message string
	}{
		{"malformed email", map[string]string{"name": "Jo", "email": "not-an-email", "password": "secret1"}, "email must be a valid email address"},
		{"short password", map[string]string{"name": "Jo", "email": "jo@example.com", "password": "123"}, "password must be at least 6 characters in length"},
		{"missing name", map[string]string{"email": "jo@example.com", "password": "secret1"}, "name is a required field"},
		{"blank name", map[string]string{"name": "   ", "email": "jo@example.com", "password": "secret1"}, "name must not be blank"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/auth/signup", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decodeBody(t, rec)["message"], tt.message)
		})
	}

	rec := env.do(t, http.MethodPost, "/auth/signup", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogout(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, envOptions{})

	rec := env.do(t, http.MethodPost, "/auth/logout", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Logout successful", decodeBody(t, rec)["message"])

	cookie := sessionCookie(t, rec)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)
}

func TestVerifyToken(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, envOptions{})
	cookie := env.signupAndLogin(t, "jo@example.com")

	rec := env.do(t, http.MethodPost, "/auth/verify-token", map[string]string{"token": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["isValid"])
	assert.Equal(t, "No token provided", body["message"])

	rec = env.do(t, http.MethodPost, "/auth/verify-token", map[string]string{"token": "forged"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body = decodeBody(t, rec)
	assert.Equal(t, false, body["isValid"])
	assert.Equal(t, "Invalid token", body["message"])

	rec = env.do(t, http.MethodPost, "/auth/verify-token", map[string]string{"token": cookie.Value})
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	assert.Equal(t, true, body["isValid"])
	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.NotEmpty(t, user["id"])
	assert.Equal(t, user["id"], user["sub"])
}

func TestProfile_RequiresSession(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, envOptions{})

	rec := env.do(t, http.MethodGet, "/user/profile", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Not authenticated", decodeBody(t, rec)["message"])

	rec = env.do(t, http.MethodPut, "/user/profile", map[string]string{"bio": "x"},
		&http.Cookie{Name: session.CookieName, Value: "forged"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid token", decodeBody(t, rec)["message"])
}

func TestProfile_NeverLeaksPassword(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, envOptions{})
	cookie := env.signupAndLogin(t, "jo@example.com")

	rec := env.do(t, http.MethodGet, "/user/profile", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "jo@example.com", body["email"])
	assert.NotContains(t, body, "password")
	assert.NotContains(t, body, "passwordHash")
	assert.NotContains(t, rec.Body.String(), "argon2")
	assert.Contains(t, body, "verificationStatus")
	assert.Equal(t, []any{}, body["skills"])
}

func TestProfile_StaleSession(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, envOptions{})

	token, err := env.sessions.Issue("65f0c0ffee0000000000abcd")
	require.NoError(t, err)

	rec := env.do(t, http.MethodGet, "/user/profile", nil, env.sessions.Cookie(token))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", decodeBody(t, rec)["message"])
}

func TestProfile_UpdateRoundTrip(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, envOptions{})
	cookie := env.signupAndLogin(t, "jo@example.com")

	update := map[string]any{
		"bio":            "Backend developer",
		"age":            29,
		"lookingForHelp": true,
		"education": []map[string]any{{
			"institution": "State University",
			"degree":      "BSc",
			"major":       "Computer Science",
			"startDate":   "2015-09-01",
			"endDate":     "2019-06-30",
		}},
		"skills": []map[string]any{{"name": "Go", "level": "expert", "verified": true}},
	}

	rec := env.do(t, http.MethodPut, "/user/profile", update, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "argon2")

	rec = env.do(t, http.MethodGet, "/user/profile", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)

	assert.Equal(t, "Jo", body["name"])
	assert.Equal(t, "Backend developer", body["bio"])
	assert.InDelta(t, 29, body["age"], 0)
	assert.Equal(t, true, body["lookingForHelp"])

	education := body["education"].([]any)
	require.Len(t, education, 1)
	assert.Equal(t, "State University", education[0].(map[string]any)["institution"])
	assert.True(t, strings.HasPrefix(education[0].(map[string]any)["startDate"].(string), "2015-09-01"))

	skills := body["skills"].([]any)
	require.Len(t, skills, 1)
	assert.Equal(t, false, skills[0].(map[string]any)["verified"])
}

func TestProfile_UpdateRejections(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, envOptions{})
	cookie := env.signupAndLogin(t, "jo@example.com")

	rec := env.do(t, http.MethodPut, "/user/profile", map[string]any{}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPut, "/user/profile", map[string]any{
		"skills": []map[string]any{{"name": "Go", "level": "wizard"}},
	}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPut, "/user/profile", map[string]any{"age": -1}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPut, "/user/profile", map[string]any{"name": ""}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerification_Submit(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, envOptions{})
	cookie := env.signupAndLogin(t, "jo@example.com")

	rec := env.do(t, http.MethodPost, "/user/verify", map[string]string{
		"documentType": "studentId",
		"documentUrl":  "https://files.example.com/student-id.png",
	}, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	assert.Equal(t, "Document submitted for verification", body["message"])
	status := body["verificationStatus"].(map[string]any)
	studentID := status["studentId"].(map[string]any)
	assert.Equal(t, "https://files.example.com/student-id.png", studentID["documentUrl"])
	assert.Equal(t, false, studentID["verified"])
	assert.NotEmpty(t, studentID["submittedAt"])

	rec = env.do(t, http.MethodPost, "/user/verify", map[string]string{
		"documentType": "passport",
		"documentUrl":  "https://files.example.com/passport.png",
	}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerification_Upload(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, envOptions{})
	cookie := env.signupAndLogin(t, "jo@example.com")
	pdf := []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

	rec := env.upload(t, "/user/verify/upload", map[string]string{"documentType": "nationalId"}, pdf, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	status := decodeBody(t, rec)["verificationStatus"].(map[string]any)
	ref := status["nationalId"].(map[string]any)["documentUrl"].(string)
	assert.True(t, strings.HasPrefix(ref, "s3://bucket/verification/"), ref)
	assert.Len(t, env.store.objects, 1)

	rec = env.do(t, http.MethodGet, "/user/verify/nationalId/document", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(decodeBody(t, rec)["url"].(string), "https://signed.example.com/"))

	rec = env.upload(t, "/user/verify/upload", map[string]string{"documentType": "nationalId"}, []byte("plain text"), cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.upload(t, "/user/verify/upload", map[string]string{"documentType": "nationalId"}, make([]byte, 1<<20+10), cookie)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = env.upload(t, "/user/verify/upload", map[string]string{"documentType": "passport"}, pdf, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerification_UploadWithoutStorage(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, envOptions{noStorage: true})
	cookie := env.signupAndLogin(t, "jo@example.com")

	rec := env.upload(t, "/user/verify/upload", map[string]string{"documentType": "studentId"}, []byte("%PDF-1.4\n"), cookie)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestChangePassword(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, envOptions{})
	cookie := env.signupAndLogin(t, "jo@example.com")

	rec := env.do(t, http.MethodPut, "/user/password", map[string]string{
		"currentPassword": "wrong", "newPassword": "secret2",
	}, cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPut, "/user/password", map[string]string{
		"currentPassword": "secret1", "newPassword": "secret2",
	}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/auth/login", map[string]string{"email": "jo@example.com", "password": "secret2"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestQuiz(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, envOptions{})
	cookie := env.signupAndLogin(t, "jo@example.com")

	rec := env.do(t, http.MethodGet, "/quiz/questions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "correct")

	questions := decodeBody(t, rec)["questions"].([]any)
	require.NotEmpty(t, questions)

	rec = env.do(t, http.MethodPost, "/user/professional-test", map[string]any{"answers": []int{1}}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	answers := make([]int, len(questions))
	rec = env.do(t, http.MethodPost, "/user/professional-test", map[string]any{"answers": answers}, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	assert.Equal(t, "Professional test submitted", body["message"])
	assert.InDelta(t, len(questions), body["totalQuestions"], 0)
	assert.Contains(t, body, "score")
	status := body["verificationStatus"].(map[string]any)
	assert.Equal(t, true, status["professionalTest"].(map[string]any)["completed"])

	rec = env.do(t, http.MethodPost, "/user/professional-test", map[string]any{"answers": answers})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPasswordReset_Endpoints(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, envOptions{})
	env.signupAndLogin(t, "jo@example.com")

	rec := env.do(t, http.MethodPost, "/auth/password-reset/request", map[string]string{"email": "jo@example.com"})
	assert.Equal(t, http.StatusOK, rec.Code)

	unknown := env.do(t, http.MethodPost, "/auth/password-reset/request", map[string]string{"email": "nobody@example.com"})
	assert.Equal(t, http.StatusOK, unknown.Code)
	assert.Equal(t, rec.Body.String(), unknown.Body.String())

	rec = env.do(t, http.MethodPost, "/auth/password-reset/confirm", map[string]string{
		"token": "garbage", "newPassword": "secret2",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/auth/password-reset/validate", map[string]string{"token": "garbage"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRoutes_RateLimited(t *testing.T) {
	t.Parallel()

	limiter := ratelimit.NewLocalLimiter(2, time.Minute)
	t.Cleanup(limiter.Close)

	env := newTestEnv(t, envOptions{limiter: limiter})

	for range 2 {
		rec := env.do(t, http.MethodPost, "/auth/logout", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := env.do(t, http.MethodPost, "/auth/logout", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Other routes are not throttled.
	rec = env.do(t, http.MethodGet, "/quiz/questions", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRemoteGuard_NotThrottledByAuthLimit(t *testing.T) {
	t.Parallel()

	limiter := ratelimit.NewLocalLimiter(2, time.Minute)
	t.Cleanup(limiter.Close)

	env := newTestEnv(t, envOptions{limiter: limiter})
	cookie := env.signupAndLogin(t, "jo@example.com")

	rec := env.do(t, http.MethodPost, "/auth/login", map[string]string{"email": "jo@example.com", "password": "secret1"})
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	srv := httptest.NewServer(env.router)
	t.Cleanup(srv.Close)

	logger := zerolog.Nop()
	pages := guard.New(
		guard.NewRemoteChecker(srv.URL+"/auth/verify-token", time.Second, &logger),
		&logger,
	).Handler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := range 8 {
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.AddCookie(cookie)

		rec := httptest.NewRecorder()
		pages.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, "load %d redirected to %q", i+1, rec.Header().Get("Location"))
	}
}

func TestPages_Guarded(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"), []byte("<html>app</html>"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "app.js"), []byte("console.log(1)"), 0o600))

	env := newTestEnv(t, envOptions{webRoot: root})
	cookie := env.signupAndLogin(t, "jo@example.com")

	rec := env.do(t, http.MethodGet, "/dashboard", nil)
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = env.do(t, http.MethodGet, "/dashboard/profile", nil, cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<html>app</html>")

	rec = env.do(t, http.MethodGet, "/login", nil, cookie)
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))

	rec = env.do(t, http.MethodGet, "/signup", nil, &http.Cookie{Name: session.CookieName, Value: "forged"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/app.js", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "console.log(1)", rec.Body.String())
}

func TestHealth(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, envOptions{})
	rec := env.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	down := newTestEnv(t, envOptions{ready: func(context.Context) error { return errors.New("mongo down") }})
	rec = down.do(t, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestErrorStatus_UnknownErrorIsHidden(t *testing.T) {
	t.Parallel()

	status, msg := errorStatus(errors.New("connection reset by peer"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "something went wrong", msg)

	status, _ = errorStatus(validation.Errors{"name is a required field"})
	assert.Equal(t, http.StatusBadRequest, status)
}
