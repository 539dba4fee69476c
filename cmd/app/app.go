package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mkwawa-heritage/marketplace-api/internal/api"
	"github.com/mkwawa-heritage/marketplace-api/internal/config"
	"github.com/mkwawa-heritage/marketplace-api/internal/db"
	"github.com/mkwawa-heritage/marketplace-api/internal/domain"
	"github.com/mkwawa-heritage/marketplace-api/internal/events"
	"github.com/mkwawa-heritage/marketplace-api/internal/logger"
	"github.com/mkwawa-heritage/marketplace-api/internal/pkg/reference"
	"github.com/mkwawa-heritage/marketplace-api/internal/repository/memory"
	"github.com/mkwawa-heritage/marketplace-api/internal/service"
)

func Start() error {
	conf, err := config.Load("./cmd/app/config.yml")
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}
	defer func() { _ = zap.L().Sync() }()

	stores, err := openStores(conf)
	if err != nil {
		return fmt.Errorf("failed to initialize storage -> %w", err)
	}

	refs, err := reference.New(conf.Booking.ReferencePrefix, conf.Booking.ReferenceLength, conf.Booking.MaxAttempts)
	if err != nil {
		return fmt.Errorf("failed to initialize reference generator -> %w", err)
	}

	if err = bootstrapStaff(conf, stores); err != nil {
		return fmt.Errorf("failed to bootstrap staff account -> %w", err)
	}

	publisher := openPublisher(conf.Events)
	defer func() { _ = publisher.Close() }()

	rdb := openRedis(conf.Redis)

	conf.Watch()

	s := api.NewServer(conf, stores, refs.Generate, publisher, rdb)

	addr := ":" + s.Config.API.Port
	zap.L().Info(fmt.Sprintf("starting server at %v", addr), zap.String("storage", conf.Storage.Driver))
	if err = s.Router.Run(addr); err != nil {
		return fmt.Errorf("failed to start the server -> %w", err)
	}

	return nil
}

func openStores(conf *config.AppConfig) (api.Stores, error) {
	if conf.Storage.Driver == config.StorageMemory {
		zap.L().Warn("using in-memory storage, data is lost on restart")
		return api.MemoryStores(memory.NewStore()), nil
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL != "" {
		postgresDB, err := db.OpenPostgresWithURL(dbURL)
		if err != nil {
			return api.Stores{}, err
		}
		return api.PostgresStores(postgresDB), nil
	}

	postgresDB, err := db.OpenPostgres(conf.Postgres)
	if err != nil {
		return api.Stores{}, err
	}

	return api.PostgresStores(postgresDB), nil
}

func bootstrapStaff(conf *config.AppConfig, stores api.Stores) error {
	if conf.Staff.BootstrapEmail == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	svc := service.NewAuthService(stores.Staff, conf.Staff.BcryptCost)
	staff, created, err := svc.EnsureStaff(ctx, domain.Staff{
		Email:    conf.Staff.BootstrapEmail,
		Password: conf.Staff.BootstrapPassword,
		Name:     conf.Staff.BootstrapName,
	})
	if err != nil {
		return err
	}
	if !created {
		zap.L().Info("bootstrap staff account already exists", zap.Uint("staff_id", staff.ID))
	}

	return nil
}

type closablePublisher interface {
	service.EventPublisher
	Close() error
}

func openPublisher(conf *config.EventsConfig) closablePublisher {
	if conf.AMQPURL == "" {
		return events.Noop{}
	}

	p, err := events.NewPublisher(conf.AMQPURL, conf.Exchange)
	if err != nil {
		zap.L().Warn("event broker unavailable, booking events are dropped", zap.Error(err))
		return events.Noop{}
	}

	return p
}

// openRedis returns nil when Redis cannot be reached; rate limiting is then
// skipped.
func openRedis(conf *config.RedisConfig) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		zap.L().Warn("redis unavailable, rate limiting disabled", zap.String("addr", conf.Addr), zap.Error(err))
		_ = client.Close()
		return nil
	}

	return client
}
