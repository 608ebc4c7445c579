package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"couple-backend/internal/config"
	"couple-backend/internal/docstore"
	"couple-backend/internal/handlers"
	"couple-backend/internal/identity"
	"couple-backend/internal/media"
	"couple-backend/internal/push"
	"couple-backend/internal/repository"
	"couple-backend/internal/scheduler"
	"couple-backend/internal/services"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

func Run() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Document store and identity registry
	store, registry, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open document store")
	}
	defer closeStore()

	// Media hosting
	mediaStore, err := openMedia(ctx, cfg.Media)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create media store")
	}
	signer := media.NewSigner(cfg.Media.APIKey, cfg.Media.APISecret, cfg.Media.UploadPreset)

	// Push delivery
	sender, err := openPush(ctx, cfg.Push)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create push sender")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(store)
	coupleRepo := repository.NewCoupleRepository(store)
	codeRepo := repository.NewCoupleCodeRepository(store)
	chatRepo := repository.NewChatRepository(store)
	activityRepo := repository.NewActivityRepository(store)

	// Initialize services
	deleter := services.NewBatchDeleter(store)
	cleaner := services.NewMediaCleaner(mediaStore, cfg.Media.Host)
	unlinker := services.NewCoupleUnlinker(coupleRepo, userRepo, chatRepo, deleter)
	accountService := services.NewAccountService(userRepo, coupleRepo, codeRepo, registry, unlinker, cleaner, deleter)
	scoreService := services.NewScoreService(activityRepo)
	notificationService := services.NewNotificationService(userRepo, sender)
	scanJob := services.NewHealthScanJob(coupleRepo, scoreService, notificationService)

	// Initialize handlers
	verifier := identity.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	router := handlers.NewRouter(
		verifier,
		handlers.NewMediaHandler(services.NewUploadService(signer), cleaner),
		handlers.NewAccountHandler(accountService),
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
		}
		return nil
	})

	if cfg.Scheduler.Enabled {
		sched, err := scheduler.New(cfg.Scheduler)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create scheduler")
		}
		if err := sched.Add("relationship-health-scan", func(ctx context.Context) { scanJob.Run(ctx) }); err != nil {
			log.Fatal().Err(err).Msg("Failed to schedule health scan")
		}
		g.Go(func() error {
			return sched.Run(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Service stopped with error")
	}
	log.Info().Msg("Server exited")
}

// openStore connects the configured document store and its identity registry
func openStore(ctx context.Context, cfg *config.Config) (docstore.Store, identity.Registry, func(), error) {
	if cfg.Store.Driver == "memory" {
		log.Warn().Msg("Using in-memory document store; data is lost on restart")
		return docstore.NewMemoryStore(), identity.NewMemoryRegistry(), func() {}, nil
	}

	dsn := cfg.Database.DSN()
	if cfg.Store.Migrate {
		if err := docstore.Migrate(ctx, dsn); err != nil {
			return nil, nil, nil, err
		}
	}

	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}
	log.Info().Msg("Database connection established")

	return docstore.NewPostgresStore(db), identity.NewPostgresRegistry(db), db.Close, nil
}

// openMedia creates the configured media hosting backend
func openMedia(ctx context.Context, cfg config.MediaConfig) (media.Store, error) {
	if cfg.Provider == "s3" {
		s3Store, err := media.NewS3Store(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		return s3Store, nil
	}
	cldStore, err := media.NewCloudinaryStore(cfg.CloudName, cfg.APIKey, cfg.APISecret, cfg.APIBaseURL)
	if err != nil {
		return nil, err
	}
	return cldStore, nil
}

// openPush creates the configured push sender
func openPush(ctx context.Context, cfg config.PushConfig) (push.Sender, error) {
	switch cfg.Driver {
	case "log":
		return push.LogSender{}, nil
	case "apns":
		sender, err := push.NewAPNsSender(cfg)
		if err != nil {
			return nil, err
		}
		return sender, nil
	default:
		sender, err := push.NewFCMSender(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return sender, nil
	}
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
