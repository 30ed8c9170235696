package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/vasapolrittideah/showcase-api/services/account-service/internal/config"
	"github.com/vasapolrittideah/showcase-api/services/account-service/internal/guard"
	"github.com/vasapolrittideah/showcase-api/services/account-service/internal/handler"
	"github.com/vasapolrittideah/showcase-api/services/account-service/internal/notifier"
	"github.com/vasapolrittideah/showcase-api/services/account-service/internal/repository"
	"github.com/vasapolrittideah/showcase-api/services/account-service/internal/session"
	"github.com/vasapolrittideah/showcase-api/services/account-service/internal/usecase"
	"github.com/vasapolrittideah/showcase-api/shared/logger"
	"github.com/vasapolrittideah/showcase-api/shared/mailer"
	"github.com/vasapolrittideah/showcase-api/shared/ratelimit"
	"github.com/vasapolrittideah/showcase-api/shared/storage"
	"github.com/vasapolrittideah/showcase-api/shared/validation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", false).Fatal().Err(err).Msg("failed to load config")
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	if err := run(cfg, log); err != nil {
		log.Error().Err(err).Msg("account service stopped")
		os.Exit(1)
	}
}

// run wires the service and blocks until a signal or a server error. Deferred cleanups always run
// before it returns.
func run(cfg *config.AccountServiceConfig, log *zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	userRepo, tokenRepo, disconnect, err := newRepositories(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer disconnect()

	sessions := session.NewManager(cfg)

	notes, err := newNotifier(cfg, log)
	if err != nil {
		return err
	}

	var store usecase.ObjectStore
	if cfg.Storage.Enabled() {
		s3Store, err := storage.NewS3Store(ctx, cfg.Storage)
		if err != nil {
			return fmt.Errorf("configure object storage: %w", err)
		}
		store = s3Store
	} else {
		log.Warn().Msg("S3_BUCKET is not set, file uploads are disabled")
	}

	limiter, closeLimiter := newLimiter(cfg, log)
	defer closeLimiter()

	var checker guard.TokenChecker = guard.NewLocalChecker(sessions)
	if cfg.Guard.VerifyURL != "" {
		checker = guard.NewRemoteChecker(cfg.Guard.VerifyURL, cfg.Guard.VerifyTimeout, log)
	}

	h := handler.NewHandler(
		handler.Usecases{
			Auth: usecase.NewAuthUsecase(userRepo, sessions, notes, log),
			Profile: usecase.NewProfileUsecase(
				userRepo,
				store,
				notes,
				cfg.Storage.MaxUploadBytes,
				cfg.Storage.PresignTTL,
				log,
			),
			Quiz:          usecase.NewQuizUsecase(userRepo),
			PasswordReset: usecase.NewPasswordResetUsecase(userRepo, tokenRepo, notes, cfg, log),
		},
		sessions,
		validation.New(),
		cfg.Storage.MaxUploadBytes,
		log,
	)

	server := &http.Server{
		Addr: cfg.HTTP.Addr,
		Handler: h.Router(handler.RouterConfig{
			Limiter: limiter,
			Guard:   guard.New(checker, log),
			WebRoot: cfg.WebRoot,
			Ready:   userRepo.Ping,
		}),
		ReadHeaderTimeout: cfg.HTTP.ReadTimeout,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
	}

	return serve(ctx, server, cfg.HTTP.ShutdownTimeout, log)
}

// serve runs server until ctx is done, then shuts it down within timeout. A listener failure is
// returned instead of exiting so callers still release their resources.
func serve(ctx context.Context, server *http.Server, timeout time.Duration, log *zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("account service listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shut down http server: %w", err)
	}

	return nil
}

// newRepositories connects to MongoDB when MONGO_URI is set and falls back to the in-memory store.
func newRepositories(
	ctx context.Context,
	cfg *config.AccountServiceConfig,
	log *zerolog.Logger,
) (repository.UserRepository, repository.PasswordResetTokenRepository, func(), error) {
	if cfg.Mongo.URI == "" {
		log.Warn().Msg("MONGO_URI is not set, using the in-memory store")
		mem := repository.NewMemoryStore()
		return mem.Users(), mem.PasswordResetTokens(), func() {}, nil
	}

	client, err := mongo.Connect(options.Client().
		ApplyURI(cfg.Mongo.URI).
		SetConnectTimeout(cfg.Mongo.ConnectTimeout))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to mongo: %w", err)
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.Mongo.ConnectTimeout)
	defer cancel()

	db := client.Database(cfg.Mongo.Database)
	userRepo := repository.NewUserMongoRepository(connectCtx, log, db)
	tokenRepo := repository.NewPasswordResetTokenMongoRepository(connectCtx, log, db)

	return userRepo, tokenRepo, func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), cfg.Mongo.ConnectTimeout)
		defer cancel()

		if err := client.Disconnect(disconnectCtx); err != nil {
			log.Error().Err(err).Msg("failed to disconnect from mongo")
		}
	}, nil
}

func newNotifier(cfg *config.AccountServiceConfig, log *zerolog.Logger) (notifier.Notifier, error) {
	if !cfg.Mailer.Enabled() {
		log.Warn().Msg("SMTP is not configured, emails are disabled")
		return notifier.NewNopNotifier(), nil
	}

	m, err := mailer.NewMailer(cfg.Mailer)
	if err != nil {
		return nil, fmt.Errorf("configure mailer: %w", err)
	}

	return notifier.NewEmailNotifier(m, log), nil
}

// newLimiter shares counters through Redis when RATE_LIMIT_REDIS_ADDR is set.
func newLimiter(cfg *config.AccountServiceConfig, log *zerolog.Logger) (ratelimit.Limiter, func()) {
	if cfg.RateLimit.RedisAddr == "" {
		local := ratelimit.NewLocalLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
		return local, local.Close
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RateLimit.RedisAddr,
		Password: cfg.RateLimit.RedisPassword,
		DB:       cfg.RateLimit.RedisDB,
	})

	return ratelimit.NewRedisLimiter(client, "ratelimit:auth", cfg.RateLimit.Requests, cfg.RateLimit.Window), func() {
		if err := client.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close redis client")
		}
	}
}
