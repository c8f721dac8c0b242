package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	appconfig "github.com/wolfman30/therapy-booking/internal/config"
	"github.com/wolfman30/therapy-booking/internal/persistence"
	"github.com/wolfman30/therapy-booking/pkg/logging"
)

// Backend is the selected persistence port with its lifecycle hooks.
type Backend struct {
	Name   string
	Port   persistence.Port
	Health func(ctx context.Context) error
	Close  func()
}

// AWSConfigLoader lets callers share one AWS config between clients.
type AWSConfigLoader func(ctx context.Context) (aws.Config, error)

// BuildPersistence selects the backend named by PERSISTENCE_BACKEND.
func BuildPersistence(ctx context.Context, cfg *appconfig.Config, loadAWS AWSConfigLoader, logger *logging.Logger) (*Backend, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	noop := func() {}

	switch cfg.PersistenceBackend {
	case "", appconfig.BackendMemory:
		logger.Info("using in-memory persistence; state is lost on restart")
		return &Backend{Name: appconfig.BackendMemory, Port: persistence.NewMemoryStore(), Close: noop}, nil

	case appconfig.BackendRedis:
		client := BuildRedisClient(ctx, cfg, logger, true)
		if client == nil {
			return nil, fmt.Errorf("bootstrap: redis backend selected but REDIS_ADDR unset or unreachable")
		}
		ttls := map[string]time.Duration{}
		if cfg.DraftTTL > 0 {
			ttls[persistence.KeyBookingDraft] = cfg.DraftTTL
		}
		logger.Info("using redis persistence", "addr", cfg.RedisAddr, "draft_ttl", cfg.DraftTTL)
		return &Backend{
			Name:   appconfig.BackendRedis,
			Port:   persistence.NewRedisStore(client, persistence.RedisConfig{TTLs: ttls}),
			Health: func(ctx context.Context) error { return client.Ping(ctx).Err() },
			Close:  func() { _ = client.Close() },
		}, nil

	case appconfig.BackendPostgres:
		pool, err := BuildPostgresPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		logger.Info("using postgres persistence")
		return &Backend{
			Name:   appconfig.BackendPostgres,
			Port:   persistence.NewPostgresStore(pool),
			Health: pool.Ping,
			Close:  pool.Close,
		}, nil

	case appconfig.BackendDynamoDB:
		if loadAWS == nil {
			return nil, fmt.Errorf("bootstrap: aws config loader required for dynamodb backend")
		}
		awsCfg, err := loadAWS(ctx)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: load aws config: %w", err)
		}
		logger.Info("using dynamodb persistence", "table", cfg.DynamoDBTable, "region", cfg.AWSRegion)
		return &Backend{
			Name:  appconfig.BackendDynamoDB,
			Port:  persistence.NewDynamoStore(dynamodb.NewFromConfig(awsCfg), cfg.DynamoDBTable),
			Close: noop,
		}, nil
	}
	return nil, fmt.Errorf("bootstrap: unknown persistence backend %q", cfg.PersistenceBackend)
}
