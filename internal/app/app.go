package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mhsenam/rentmio/internal/cache"
	"github.com/mhsenam/rentmio/internal/config"
	"github.com/mhsenam/rentmio/internal/events"
	"github.com/mhsenam/rentmio/internal/repositories"
	"github.com/mhsenam/rentmio/internal/routes"
	"github.com/mhsenam/rentmio/internal/search"
	"github.com/mhsenam/rentmio/internal/storage"
	"github.com/mhsenam/rentmio/internal/utils"
)

const (
	maxRetries     = 5
	connectTimeout = 5 * time.Second
	initialBackoff = 500 * time.Millisecond
)

// App owns every long-lived connection of the server process.
type App struct {
	Config *config.Config
	DB     *pgxpool.Pool
	Cache  *cache.TwoLevel
	Blobs  *storage.FSBlobStore

	Events   events.Publisher
	Consumer *events.AMQPConsumer

	// TextIndex is the search path for free-text queries. MongoIndex is
	// set only when the mongo backend is active.
	TextIndex  search.TextIndex
	MongoIndex *search.MongoTextIndex
	mongo      *mongo.Client

	closers []func() error
}

func NewApp(cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	var (
		dbPool  *pgxpool.Pool
		err     error
		backoff = initialBackoff
	)
	for i := 1; i <= maxRetries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		dbPool, err = newDBPool(ctx, cfg.DBUrl)
		cancel()
		if err == nil {
			utils.Logger.Infof("Successfully connected to database on attempt %d", i)
			break
		}

		utils.Logger.WithError(err).Warnf(
			"Failed to connect to database on attempt %d/%d. Retrying in %v...",
			i, maxRetries, backoff,
		)
		if i == maxRetries {
			return nil, fmt.Errorf("unable to connect to database after %d attempts: %w", maxRetries, err)
		}
		time.Sleep(backoff)
		backoff *= 2
	}
	a.DB = dbPool

	l2, err := newL2Store(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	if rs, ok := l2.(*cache.RedisStore); ok {
		a.closers = append(a.closers, rs.Close)
	}
	a.Cache = cache.New(l2)

	if a.Blobs, err = storage.NewFSBlobStore(cfg.StorageDir, cfg.AppUrl+routes.Media); err != nil {
		a.Close()
		return nil, fmt.Errorf("blob store: %w", err)
	}

	propRepo := repositories.NewPropertyRepository(a.DB)
	a.TextIndex = search.NewPostgresTextIndex(propRepo)
	if cfg.LDFlag_TextSearchBackend == config.TextSearchBackendMongo {
		if err := a.connectMongo(); err != nil {
			a.Close()
			return nil, err
		}
	}

	var docIndex events.DocumentIndex
	if a.MongoIndex != nil {
		docIndex = a.MongoIndex
	}
	indexer := events.NewIndexer(propRepo, docIndex, a.Cache, search.CacheNamespace)

	if cfg.AMQPURL != "" {
		pub, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPQueue)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Events = pub
		a.closers = append(a.closers, pub.Close)

		consumer, err := events.NewAMQPConsumer(cfg.AMQPURL, cfg.AMQPQueue, indexer)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Consumer = consumer
		a.closers = append(a.closers, consumer.Close)
	} else {
		utils.Logger.Info("AMQP_URL not set; property events are handled in-process")
		a.Events = events.NewInProcessPublisher(indexer)
	}

	return a, nil
}

func (a *App) connectMongo() error {
	if a.Config.MongoURL == "" {
		return fmt.Errorf("text_search_backend is mongo but MONGO_URL is empty")
	}
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(a.Config.MongoURL))
	if err != nil {
		return fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("mongo ping: %w", err)
	}
	a.mongo = client

	idx := search.NewMongoTextIndex(client.Database(a.Config.MongoDatabase))
	if err := idx.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("mongo indexes: %w", err)
	}
	a.MongoIndex = idx
	a.TextIndex = idx
	utils.Logger.Info("Text search uses the mongo index")
	return nil
}

func newL2Store(cfg *config.Config) (cache.Store, error) {
	switch {
	case len(cfg.MemcacheAddrs) > 0:
		utils.Logger.Infof("L2 cache: memcache %v", cfg.MemcacheAddrs)
		return cache.NewMemcacheStore(cfg.MemcacheAddrs...), nil
	case cfg.RedisURL != "":
		rs, err := cache.NewRedisStore(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		utils.Logger.Info("L2 cache: redis")
		return rs, nil
	default:
		utils.Logger.Info("No L2 cache configured; using in-process cache only")
		return nil, nil
	}
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			utils.Logger.WithError(err).Warn("error during shutdown")
		}
	}
	if a.mongo != nil {
		_ = a.mongo.Disconnect(context.Background())
	}
	if a.DB != nil {
		a.DB.Close()
		utils.Logger.Info("Database connection closed.")
	}
}

// newDBPool constructs the pgx pool.
//
//   - MaxConnIdleTime retires idle sockets before an upstream proxy does
//   - HealthCheckPeriod keeps every connection warm
func newDBPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	cfg.MaxConnIdleTime = 2 * time.Minute
	cfg.HealthCheckPeriod = 30 * time.Second

	return pgxpool.ConnectConfig(ctx, cfg)
}
