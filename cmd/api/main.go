// @title                       Project Registry API
// @version                     1.0
// @description                 Role-gated project CRUD behind bearer-token authentication.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/99minutos/project-registry/internal/api"
	"github.com/99minutos/project-registry/internal/core/ports"
	"github.com/99minutos/project-registry/internal/core/service"
	"github.com/99minutos/project-registry/internal/infrastructure/broker"
	"github.com/99minutos/project-registry/internal/infrastructure/broker/kafka"
	"github.com/99minutos/project-registry/internal/infrastructure/config"
	"github.com/99minutos/project-registry/internal/infrastructure/db/mongo"
	"github.com/99minutos/project-registry/internal/infrastructure/db/redis"
	"github.com/99minutos/project-registry/internal/infrastructure/db/sqlstore"
	httpserver "github.com/99minutos/project-registry/internal/infrastructure/http"
	"github.com/99minutos/project-registry/internal/infrastructure/queue"
	"github.com/99minutos/project-registry/internal/infrastructure/security"
	"github.com/99minutos/project-registry/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "project-registry: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "project-registry",
	})
	if cfg.Auth.SecretKey == config.DevelopmentSecret {
		log.Warn().Msg("SECRET_KEY unset, using the development signing secret")
	}

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	hasher, err := security.NewPasswordHasher(security.HasherConfig{
		Algorithm:  cfg.Auth.PasswordAlgorithm,
		BcryptCost: cfg.Auth.BcryptCost,
	})
	if err != nil {
		return err
	}
	tokens, err := security.NewJWTService(security.JWTConfig{
		Secret:    cfg.Auth.SecretKey,
		Algorithm: cfg.Auth.Algorithm,
	})
	if err != nil {
		return err
	}

	projectOpts := []service.ProjectOption{}

	var rdb *goredis.Client
	if cfg.Redis.Enabled {
		rdb, err = redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer func() { _ = rdb.Close() }()
		projectOpts = append(projectOpts, service.WithProjectCache(redis.NewProjectCache(rdb, cfg.Redis.CacheTTL)))
		log.Info().Str("addr", cfg.Redis.Addr).Msg("project list cache enabled")
	}

	publisher, err := newPublisher(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = publisher.Close() }()

	// Workers outlive the signal context so Close can drain them after shutdown starts.
	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, publisher, log)
	dispatcher.Start(context.WithoutCancel(ctx))
	projectOpts = append(projectOpts, service.WithEventQueue(dispatcher))

	router := api.NewRouter(api.Deps{
		AuthService:    service.NewAuthService(store, hasher, tokens, cfg.Auth.AccessTokenTTL(), log),
		ProjectService: service.NewProjectService(store, log, projectOpts...),
		Store:          store,
		StoreName:      cfg.Storage.Driver,
		Redis:          rdb,
		Logger:         log,
	})
	server := httpserver.NewServer(cfg.Port, router, log)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("audit queue not fully drained")
	}

	log.Info().Msg("stopped")
	return nil
}

func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.Store, error) {
	switch cfg.Storage.Driver {
	case config.DriverMongo:
		s, err := mongo.Open(ctx, mongo.Config{
			URI:          cfg.Mongo.URI,
			Database:     cfg.Mongo.Database,
			Transactions: cfg.Mongo.Transactions,
		})
		if err != nil {
			return nil, err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("using mongo store")
		return s, nil
	default:
		db, err := sqlstore.Open(ctx, sqlstore.Config{
			Driver: cfg.Storage.Driver,
			DSN:    cfg.Storage.DatabaseURL,
			Logger: log,
		})
		if err != nil {
			return nil, err
		}
		log.Info().Str("driver", cfg.Storage.Driver).Msg("using sql store")
		return sqlstore.New(db), nil
	}
}

func newPublisher(cfg *config.Config, log zerolog.Logger) (ports.ProjectEventPublisher, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		log.Info().Msg("KAFKA_BROKERS unset, audit events go to the log")
		return broker.NewLogPublisher(log), nil
	}
	p, err := kafka.NewPublisher(kafka.Config{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.Topic})
	if err != nil {
		return nil, err
	}
	log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("publishing audit events to kafka")
	return p, nil
}
