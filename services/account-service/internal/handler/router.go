package handler

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/vasapolrittideah/showcase-api/services/account-service/internal/guard"
	"github.com/vasapolrittideah/showcase-api/services/account-service/internal/session"
	"github.com/vasapolrittideah/showcase-api/shared/middleware"
	"github.com/vasapolrittideah/showcase-api/shared/ratelimit"
	"github.com/vasapolrittideah/showcase-api/shared/response"
)

// RouterConfig holds the collaborators the router needs besides the handler itself.
type RouterConfig struct {
	// Limiter throttles the /auth routes except verify-token. Nil disables throttling.
	Limiter ratelimit.Limiter
	// Guard gates the page tree.
	Guard *guard.Guard
	// WebRoot is the directory of the built pages. Empty disables page serving.
	WebRoot string
	// Ready reports whether the backing store is reachable.
	Ready func(ctx context.Context) error
}

// Router builds the HTTP routes.
func (h *Handler) Router(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(h.logger))
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", h.Health)
	r.Get("/readyz", h.readiness(cfg.Ready))

	r.Route("/auth", func(r chi.Router) {
		// Page guards on other instances call verify-token once per navigation, all from one address,
		// so it stays outside the per-IP budget.
		r.Post("/verify-token", h.VerifyToken)

		r.Group(func(r chi.Router) {
			if cfg.Limiter != nil {
				r.Use(middleware.RateLimit(cfg.Limiter))
			}

			r.Post("/login", h.Login)
			r.Post("/logout", h.Logout)
			r.Post("/signup", h.Signup)
			r.Post("/password-reset/request", h.RequestPasswordReset)
			r.Post("/password-reset/validate", h.ValidatePasswordResetToken)
			r.Post("/password-reset/confirm", h.ResetPassword)
		})
	})

	r.Get("/quiz/questions", h.QuizQuestions)

	r.Route("/user", func(r chi.Router) {
		r.Use(middleware.Authenticate(h.sessions, session.CookieName))

		r.Get("/profile", h.GetProfile)
		r.Put("/profile", h.UpdateProfile)
		r.Post("/profile/picture", h.UploadProfilePicture)
		r.Put("/password", h.ChangePassword)
		r.Post("/verify", h.SubmitVerificationDocument)
		r.Post("/verify/upload", h.UploadVerificationDocument)
		r.Get("/verify/{documentType}/document", h.VerificationDocumentURL)
		r.Post("/professional-test", h.SubmitProfessionalTest)
	})

	if cfg.WebRoot != "" {
		pages := http.Handler(pageHandler(cfg.WebRoot))
		if cfg.Guard != nil {
			pages = cfg.Guard.Handler(pages)
		}
		r.Method(http.MethodGet, "/*", pages)
		r.Method(http.MethodHead, "/*", pages)
	}

	return r
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) readiness(ready func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ready != nil {
			if err := ready(r.Context()); err != nil {
				h.logger.Warn().Err(err).Msg("readiness check failed")
				response.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}

		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// pageHandler serves files under root and falls back to index.html so client-side routes resolve.
func pageHandler(root string) http.Handler {
	files := http.FileServer(http.Dir(root))
	index := filepath.Join(root, "index.html")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := filepath.Join(root, filepath.FromSlash(path.Clean("/"+r.URL.Path)))

		info, err := os.Stat(name)
		switch {
		case err == nil && !info.IsDir():
			files.ServeHTTP(w, r)
		case err == nil && info.IsDir() && fileExists(filepath.Join(name, "index.html")):
			files.ServeHTTP(w, r)
		case err == nil || errors.Is(err, fs.ErrNotExist):
			if !fileExists(index) {
				http.NotFound(w, r)
				return
			}
			http.ServeFile(w, r, index)
		default:
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	})
}

func fileExists(name string) bool {
	info, err := os.Stat(name)
	return err == nil && !info.IsDir()
}
