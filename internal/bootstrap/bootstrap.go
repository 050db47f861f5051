// Package bootstrap arma las dependencias compartidas por la API y el worker.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/application/usecase"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/docstore"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/kafka"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/redisstore"
	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// Store almacén transaccional con chequeo de salud.
type Store interface {
	repository.TransactionalStore
	Ping(ctx context.Context) error
}

// Container dependencias construidas a partir de la configuración.
type Container struct {
	Store      Store
	CategoryUC *usecase.CategoryUseCase
	SupplierUC *usecase.SupplierUseCase
	ProductUC  *usecase.ProductUseCase
	Ledger     *inventory.MovementLedger

	closers []func() error
}

// Close libera conexiones en orden inverso de creación.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		_ = c.closers[i]()
	}
}

// Build conecta el almacén configurado (Postgres o Redis), el publicador de eventos
// y construye los casos de uso.
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Container, error) {
	c := &Container{}

	store, err := c.openStore(ctx, cfg, log)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Store = store

	var events inventory.EventPublisher = inventory.NoopPublisher{}
	if cfg.Kafka.Enabled() {
		pub, err := kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.App.Name, log)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.closers = append(c.closers, pub.Close)
		events = pub
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("publicación de eventos en Kafka")
	}

	counters := docstore.NewCounterRepository(store)
	catalogIDs, err := inventory.NewAllocator(cfg.Ledger.IDStrategy, store, counters)
	if err != nil {
		c.Close()
		return nil, err
	}
	// los movimientos siempre usan el contador atómico
	movementIDs := inventory.NewCounterAllocator(counters)

	categoryRepo := docstore.NewCategoryRepository(store)
	supplierRepo := docstore.NewSupplierRepository(store)
	productRepo := docstore.NewProductRepository(store)

	c.CategoryUC = usecase.NewCategoryUseCase(categoryRepo, catalogIDs, log)
	c.SupplierUC = usecase.NewSupplierUseCase(supplierRepo, catalogIDs, log)
	c.ProductUC = usecase.NewProductUseCase(productRepo, categoryRepo, supplierRepo, catalogIDs, log)
	c.Ledger = inventory.NewMovementLedger(
		docstore.NewTxRunner(store),
		productRepo,
		docstore.NewMovementRepository(store),
		docstore.NewJournalRepository(store),
		movementIDs,
		events,
		log,
		inventory.LedgerOptions{StrictReversal: cfg.Ledger.StrictReversal},
	)
	return c, nil
}

func (c *Container) openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (Store, error) {
	switch cfg.Store.Backend {
	case config.BackendRedis:
		client := NewRedisClient(cfg.Redis)
		c.closers = append(c.closers, client.Close)
		store := redisstore.NewStore(client, redisstore.Options{
			KeyPrefix: cfg.Redis.KeyPrefix,
			TxRetries: cfg.Ledger.TxRetries,
		})
		if err := store.Ping(ctx); err != nil {
			return nil, fmt.Errorf("conexión a Redis: %w", err)
		}
		log.Info().Str("addr", cfg.Redis.Addr).Msg("almacén Redis")
		return store, nil
	default:
		if cfg.DB.AutoMigrate {
			if err := postgres.Migrate(cfg.DB.ConnectionString(), log); err != nil {
				return nil, err
			}
		}
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		c.closers = append(c.closers, func() error { pool.Close(); return nil })
		log.Info().Str("host", cfg.DB.Host).Msg("almacén PostgreSQL")
		return postgres.NewStore(pool), nil
	}
}

// NewRedisClient cliente go-redis para el almacén.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// AsynqRedisOpt conexión de la cola de tareas; usa el mismo Redis configurado.
func AsynqRedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}
