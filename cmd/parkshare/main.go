package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"parkshare/internal/app/booking"
	appoutbox "parkshare/internal/app/outbox"
	authsvc "parkshare/internal/app/services/auth"
	domainauth "parkshare/internal/domain/auth"
	"parkshare/internal/domain/availability"
	domainpricing "parkshare/internal/domain/pricing"
	"parkshare/internal/domain/reservation"
	"parkshare/internal/domain/spaces"
	domainuser "parkshare/internal/domain/user"
	"parkshare/internal/infra/broker/kafka"
	"parkshare/internal/infra/config"
	mongodb "parkshare/internal/infra/db/mongo"
	ginserver "parkshare/internal/infra/http/gin"
	"parkshare/internal/infra/obs"
	infraoutbox "parkshare/internal/infra/outbox"
	"parkshare/internal/infra/security"
	"parkshare/internal/infra/storage/memory"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration invalid", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	deps, err := buildStorage(cfg, logger)
	if err != nil {
		logger.Error("storage init failed", "error", err, "mode", cfg.StorageMode)
		os.Exit(1)
	}

	bookingSvc, err := booking.NewService(booking.Config{
		Reservations: deps.reservations,
		Catalog:      deps.catalog,
		Index:        deps.index,
		Pricing:      domainpricing.NewEngine(cfg.PlatformFeeBps),
		Outbox:       deps.outbox,
		Logger:       logger,
		LockTimeout:  cfg.LockTimeout,
	})
	if err != nil {
		logger.Error("booking service init failed", "error", err)
		os.Exit(1)
	}

	authService := &authsvc.Service{
		Users:      deps.users,
		Sessions:   deps.sessions,
		Passwords:  security.BcryptHasher{},
		Tokens:     security.RandomTokenGenerator{},
		SessionTTL: cfg.SessionTTL,
		Logger:     logger,
	}

	if cfg.SpaceFixturesPath == "" {
		cfg.SpaceFixturesPath = defaultSpaceFixturesPath()
	}
	if err := loadSpaceFixtures(ctx, cfg.SpaceFixturesPath, deps.fixtures, logger); err != nil {
		logger.Warn("space fixtures load failed", "error", err, "path", cfg.SpaceFixturesPath)
	}

	handlers := ginserver.Handlers{
		Auth: ginserver.AuthHandler{Service: authService, Logger: logger},
		Reservations: ginserver.ReservationHandler{
			Service:     bookingSvc,
			Idempotency: deps.idempotency,
			Logger:      logger,
		},
		Spaces:         ginserver.SpaceHandler{Catalog: deps.catalog, Logger: logger},
		Admin:          ginserver.AdminHandler{Service: bookingSvc, Logger: logger},
		AuthMiddleware: ginserver.AuthMiddleware{Service: authService, Logger: logger}.Handle,
	}
	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: deps.ready,
	}, handlers)

	sweeper := &booking.Sweeper{Service: bookingSvc, Interval: cfg.SweepInterval, Logger: logger}
	go func() {
		if err := sweeper.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("sweeper stopped", "error", err)
		}
	}()

	if len(cfg.KafkaBrokers) > 0 {
		startEventPipeline(ctx, cfg, deps, logger)
	} else {
		logger.Info("kafka brokers not configured, outbox publishing disabled")
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

func startEventPipeline(ctx context.Context, cfg config.Config, deps *appDeps, logger *slog.Logger) {
	producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
	if err != nil {
		logger.Error("kafka producer init failed", "error", err)
		return
	}
	worker := &infraoutbox.Worker{
		Store:       deps.store,
		Producer:    producer,
		Interval:    cfg.OutboxPollInterval,
		TopicPrefix: cfg.KafkaTopicPrefix,
		Backoff:     cfg.RetryBackoff,
	}
	go func() {
		defer producer.Close()
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("outbox worker stopped", "error", err)
		}
	}()

	consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, "parkshare-notifications", nil, kafka.NotificationHandler{Logger: logger})
	if err != nil {
		logger.Error("kafka consumer init failed", "error", err)
		return
	}
	topic := cfg.KafkaTopicPrefix + "reservation.events.v1"
	go func() {
		defer consumer.Close()
		if err := consumer.Run(ctx, []string{topic}); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("notification consumer stopped", "error", err)
		}
	}()
}

type appDeps struct {
	reservations reservation.Repository
	catalog      spaces.Catalog
	index        availability.Index
	outbox       appoutbox.Outbox
	store        infraoutbox.Store
	users        domainuser.Repository
	sessions     domainauth.SessionStore
	idempotency  booking.IdempotencyStore
	fixtures     fixtureSink
	ready        func() error
}

func buildStorage(cfg config.Config, logger *slog.Logger) (*appDeps, error) {
	if cfg.StorageMode == "mongo" {
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		catalog := mongodb.NewSpaceCatalog(client.DB)
		outboxStore := mongodb.NewOutboxStore(client.DB)
		logger.Info("mongo storage attached", "db", cfg.MongoDB)
		return &appDeps{
			reservations: mongodb.NewReservationRepository(client.DB),
			catalog:      catalog,
			index:        mongodb.NewAvailabilityIndex(client.DB),
			outbox:       outboxStore,
			store:        outboxStore,
			users:        mongodb.NewUserRepository(client.DB),
			sessions:     mongodb.NewSessionStore(client.DB),
			idempotency:  mongodb.NewIdempotencyStore(client.DB),
			fixtures:     catalog,
			ready: func() error {
				pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				return client.Ping(pingCtx)
			},
		}, nil
	}

	catalog := memory.NewSpaceCatalog()
	outboxStore := memory.NewOutbox()
	return &appDeps{
		reservations: memory.NewReservationRepository(),
		catalog:      catalog,
		index:        memory.NewAvailabilityIndex(),
		outbox:       outboxStore,
		store:        outboxStore,
		users:        memory.NewUserRepository(),
		sessions:     memory.NewSessionStore(),
		idempotency:  memory.NewIdempotencyStore(),
		fixtures:     catalog,
		ready:        func() error { return nil },
	}, nil
}

type fixtureSink interface {
	Put(ctx context.Context, space spaces.ParkingSpace) error
}

type spaceFixture struct {
	ID              string `json:"id"`
	OwnerID         string `json:"owner_id"`
	Title           string `json:"title"`
	Address         string `json:"address"`
	City            string `json:"city"`
	Size            string `json:"size"`
	Kind            string `json:"kind"`
	HourlyRateCents int64  `json:"hourly_rate_cents"`
	Currency        string `json:"currency"`
	IsActive        bool   `json:"is_active"`
	Timezone        string `json:"timezone"`
}

func loadSpaceFixtures(ctx context.Context, path string, sink fixtureSink, logger *slog.Logger) error {
	if sink == nil {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("space fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}
	var fixtures []spaceFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}
	now := time.Now().UTC()
	for _, fx := range fixtures {
		space := spaces.ParkingSpace{
			ID:              spaces.SpaceID(fx.ID),
			OwnerID:         spaces.OwnerID(fx.OwnerID),
			Title:           fx.Title,
			Address:         fx.Address,
			City:            fx.City,
			Size:            spaces.Size(fx.Size),
			Kind:            spaces.Kind(fx.Kind),
			HourlyRateCents: fx.HourlyRateCents,
			Currency:        fx.Currency,
			IsActive:        fx.IsActive,
			Timezone:        fx.Timezone,
			CreatedAt:       now,
		}
		if err := sink.Put(ctx, space); err != nil {
			return fmt.Errorf("store fixture %s: %w", fx.ID, err)
		}
	}
	if len(fixtures) > 0 {
		logger.Info("space fixtures loaded", "count", len(fixtures), "path", path)
	}
	return nil
}

func defaultSpaceFixturesPath() string {
	return filepath.Join("data", "spaces.json")
}
