package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/internship-exchange/internal/adapters"
	"github.com/example/internship-exchange/internal/config"
	httptransport "github.com/example/internship-exchange/internal/http"
	"github.com/example/internship-exchange/internal/kvstore"
	"github.com/example/internship-exchange/internal/logging"
	"github.com/example/internship-exchange/internal/persistence/sqlite"
	"github.com/example/internship-exchange/internal/workflow"
)

func main() {
	bootLogger := logging.New(os.Stdout, slog.LevelInfo)

	cfg, err := config.Load()
	if err != nil {
		bootLogger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("portal exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	storage, err := sqlite.Open(cfg.SQLiteDSN, logger)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := storage.Migrate(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	store, closeStore, err := newSavedOfferStore(ctx, cfg, storage)
	if err != nil {
		return fmt.Errorf("saved offer store: %w", err)
	}
	defer func() {
		if cerr := closeStore(); cerr != nil {
			logger.Error("failed to close saved offer store", "error", cerr)
		}
	}()

	created, err := workflow.EnsureAdmin(ctx, adapters.NewUserRepository(storage.Users), cfg.AdminEmail, cfg.AdminPassword, uuid.NewString, time.Now)
	if err != nil {
		return fmt.Errorf("bootstrap administrator: %w", err)
	}
	if created {
		logger.Info("bootstrap administrator created", "email", cfg.AdminEmail)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           newHandler(storage, store, cfg.SessionTTL, logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("portal API listening", "addr", server.Addr, "saved_offers_backend", cfg.SavedOffersBackend)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// newHandler wires the workflow services over storage and returns the full
// HTTP stack including request logging and session checks.
func newHandler(storage *sqlite.Storage, savedOffers workflow.KeyValueStore, sessionTTL time.Duration, logger *slog.Logger) http.Handler {
	idGenerator := uuid.NewString
	tokenGenerator := func() string { return randomHex(32) }
	now := time.Now

	membershipRepo := adapters.NewMembershipRepository(storage.Memberships)
	userRepo := adapters.NewUserRepository(storage.Users)
	offerRepo := adapters.NewOfferRepository(storage.Offers)
	applicationRepo := adapters.NewApplicationRepository(storage.Applications)
	notificationRepo := adapters.NewNotificationRepository(storage.Notifications)
	sessionRepo := adapters.NewSessionRepository(storage.Sessions)

	provisioner := workflow.NewPasswordProvisioner(workflow.DefaultArgon2idParams, idGenerator, now)

	membershipService := workflow.NewMembershipServiceWithLogger(membershipRepo, provisioner, idGenerator, now, logger)
	applicationService := workflow.NewApplicationServiceWithLogger(applicationRepo, membershipRepo, offerRepo, idGenerator, now, logger)
	offerService := workflow.NewOfferServiceWithLogger(offerRepo, idGenerator, now, logger)
	notificationService := workflow.NewNotificationServiceWithLogger(notificationRepo, membershipRepo, idGenerator, now, logger)
	statsService := workflow.NewStatsServiceWithLogger(membershipRepo, applicationRepo, offerRepo, logger)
	authService := workflow.NewAuthServiceWithLogger(userRepo, sessionRepo, nil, tokenGenerator, now, sessionTTL, logger)
	savedOfferCache := workflow.NewSavedOfferCache(savedOffers, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:           httptransport.NewAuthHandler(authService, logger),
		Memberships:    httptransport.NewMembershipHandler(membershipService, logger),
		Offers:         httptransport.NewOfferHandler(offerService, logger),
		Applications:   httptransport.NewApplicationHandler(applicationService, logger),
		Notifications:  httptransport.NewNotificationHandler(notificationService, logger),
		Stats:          httptransport.NewStatsHandler(statsService, logger),
		SavedOffers:    httptransport.NewSavedOffersHandler(savedOfferCache, membershipService, logger),
		RequireSession: httptransport.RequireSession(authService, logger),
	})

	return httptransport.RequestLogger(logger)(router)
}

// newSavedOfferStore selects the saved-offer backend. The returned close
// function is always non-nil.
func newSavedOfferStore(ctx context.Context, cfg config.Config, storage *sqlite.Storage) (workflow.KeyValueStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.SavedOffersBackend {
	case config.BackendMemory:
		store, err := kvstore.NewMemory(cfg.SavedOffersCacheSize)
		if err != nil {
			return nil, noop, err
		}
		return store, noop, nil
	case config.BackendRedis:
		client, err := kvstore.NewRedisClient(cfg.RedisAddr)
		if err != nil {
			return nil, noop, err
		}
		store := kvstore.NewRedis(client)
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, noop, fmt.Errorf("redis unreachable at %s: %w", cfg.RedisAddr, err)
		}
		return store, store.Close, nil
	case config.BackendSQLite, "":
		return storage.KV, noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown backend %q", cfg.SavedOffersBackend)
	}
}

func randomHex(bytes int) string {
	if bytes <= 0 {
		bytes = 16
	}
	buf := make([]byte, bytes)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return uuid.NewString() + uuid.NewString()
	}
	return hex.EncodeToString(buf)
}
