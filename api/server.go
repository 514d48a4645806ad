package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"idbridge/adapters/metrics"
	redisAdapter "idbridge/adapters/redis"
	"idbridge/adapters/transport"
	"idbridge/authconfig"
	"idbridge/callback"
	"idbridge/directory"
	"idbridge/identity"
	"idbridge/provider"
	"idbridge/provider/builtin"
)

type ServerImpl struct {
	db          *gorm.DB
	redisClient *redis.Client
	configs     *authconfig.Store
	registry    *provider.Registry
	resolver    *identity.Resolver
	dispatcher  *callback.Dispatcher
	producer    redisAdapter.IProducer[directory.UserChange]
	incremental *directory.Incremental
	scheduler   *cron.Cron
	metrics     *metrics.Metrics
	gatherer    prometheus.Gatherer
	logger      *slog.Logger
	cancelFunc  context.CancelFunc

	config ServerConfig
}

func NewServer(config ServerConfig) (*ServerImpl, error) {
	const op = "NewServer"

	logger := slog.Default().With(slog.String("caller", "ServerImpl"))

	// 初始化資料庫連線
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable&search_path=%s", config.DB.User, config.DB.Password, config.DB.Host, config.DB.Port, config.DB.Database, config.DB.Schema)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		NamingStrategy: schema.NamingStrategy{
			TablePrefix: config.DB.Schema + ".",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to connect to database, err=%w", op, err)
	}

	// 初始化Redis連線
	redisClient := redis.NewClient(&redis.Options{
		Addr:     config.Redis.Addr,
		Password: config.Redis.Password,
		DB:       config.Redis.DB,
	})

	m, err := metrics.New(prometheus.DefaultRegisterer)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to register metrics, err=%w", op, err)
	}

	// 同步引擎，同一個平台同時只會有一個同步在執行
	store := directory.NewGormStore(db, slog.Default())
	engine := directory.NewEngine(
		store,
		directory.WithBatchSize(config.Sync.BatchSize),
		directory.WithMaxDepth(config.Sync.MaxDepth),
		directory.WithWorkers(config.Sync.Workers),
		directory.WithMetrics(m),
		directory.WithLogger(slog.Default()),
		directory.WithLocker(func(source string) redisAdapter.IAutoRenewMutex {
			return redisAdapter.NewAutoRenewMutex(
				redisClient,
				fmt.Sprintf("%ssync:%s:lock", config.Redis.KeyPrefix, source),
				redisAdapter.WithAutoRenewMutexExpiry(config.Sync.LockExpiry),
			)
		}),
	)

	registry := builtin.NewRegistry(provider.Deps{
		Transport: transport.NewClient(transport.WithLogger(slog.Default())),
		Syncer:    engine,
		Tokens:    redisAdapter.NewTokenCache(redisClient, redisAdapter.WithTokenCachePrefix(config.Redis.KeyPrefix+"token:")),
		Logger:    slog.Default(),
	})
	configs := authconfig.NewStore(db, config.Sync.ConfigCacheTTL)

	// 回調寫入成員異動，由增量同步消費
	producer, err := redisAdapter.NewProducer[directory.UserChange](
		redisClient,
		config.Redis.StreamKeys.UserChange,
		redisAdapter.WithProducerLogger[directory.UserChange](slog.Default()),
	)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create producer, err=%w", op, err)
	}
	groupConsumer, err := redisAdapter.NewGroupConsumer[directory.UserChange](
		redisClient,
		config.Redis.StreamKeys.UserChange,
		config.Redis.ConsumerGroup,
		config.ID,
		redisAdapter.WithGroupConsumerLogger[directory.UserChange](slog.Default()),
		redisAdapter.WithGroupConsumerStrictOrdering[directory.UserChange](true),
	)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create group consumer, err=%w", op, err)
	}
	incremental := directory.NewIncremental(store, SourceResolver(configs, registry), groupConsumer, slog.Default())

	callbackProvider := config.Callback.ProviderName
	if callbackProvider == "" {
		callbackProvider = callback.DefaultProviderName
	}
	dispatcher := callback.NewDispatcher(
		CallbackConfigLoader(configs),
		callback.WithProviderName(callbackProvider),
		callback.WithHandler(callback.CategorySystem, callback.NewSystemHandler(slog.Default())),
		callback.WithHandler(callback.CategoryUser, callback.NewUserHandler(callbackProvider, producer, slog.Default())),
		callback.WithMetrics(m),
		callback.WithLogger(slog.Default()),
	)

	return &ServerImpl{
		db:          db,
		redisClient: redisClient,
		configs:     configs,
		registry:    registry,
		resolver:    identity.NewResolver(db, slog.Default()),
		dispatcher:  dispatcher,
		producer:    producer,
		incremental: incremental,
		scheduler:   cron.New(cron.WithLogger(cronLogger{logger: slog.Default().With(slog.String("caller", "cron"))})),
		metrics:     m,
		gatherer:    prometheus.DefaultGatherer,
		logger:      logger,
		config:      config,
	}, nil
}

// SourceResolver 依平台名稱讀取設定並建立可列舉通訊錄的平台實例
func SourceResolver(configs *authconfig.Store, registry *provider.Registry) directory.SourceResolver {
	return func(ctx context.Context, source string) (directory.ISource, error) {
		const op = "SourceResolver"

		cfg, err := configs.Load(ctx, source)
		if err != nil {
			return nil, fmt.Errorf("[%s] %w", op, err)
		}
		p, err := registry.Get(source, *cfg)
		if err != nil {
			return nil, fmt.Errorf("[%s] %w", op, err)
		}
		src, ok := p.(directory.ISource)
		if !ok {
			return nil, fmt.Errorf("[%s] %w: %s", op, provider.ErrSyncUnsupported, source)
		}
		return src, nil
	}
}

// CallbackConfigLoader 讓回呼分派讀取平台設定，不存在或停用時以 callback.ErrConfigNotFound 表示
func CallbackConfigLoader(configs *authconfig.Store) callback.ConfigLoaderFunc {
	return func(ctx context.Context, name string) (*provider.Config, error) {
		cfg, err := configs.Load(ctx, name)
		if errors.Is(err, authconfig.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w", callback.ErrConfigNotFound, err)
		}
		return cfg, err
	}
}

func (impl *ServerImpl) Start() error {
	const op = "ServerImpl.Start"

	ctx, cancel := context.WithCancel(context.Background())
	impl.cancelFunc = cancel

	// 啟動producer
	if impl.producer != nil {
		impl.producer.Start()
	}
	// 啟動增量同步
	if impl.incremental != nil {
		if err := impl.incremental.Start(ctx); err != nil {
			return fmt.Errorf("[%s] Fail to start incremental sync, err=%w", op, err)
		}
	}
	// 啟動排程的全量同步
	if impl.scheduler != nil && impl.config.Sync.Schedule != "" {
		if _, err := impl.scheduler.AddFunc(impl.config.Sync.Schedule, func() {
			impl.SyncAll(ctx)
		}); err != nil {
			return fmt.Errorf("[%s] Fail to schedule sync %q, err=%w", op, impl.config.Sync.Schedule, err)
		}
		impl.scheduler.Start()
		impl.logger.Info("Scheduled directory sync", slog.String("schedule", impl.config.Sync.Schedule))
	}
	return nil
}

func (impl *ServerImpl) Close() {
	if impl.cancelFunc != nil {
		impl.cancelFunc()
	}
	// 停止排程並等待執行中的同步結束
	if impl.scheduler != nil {
		<-impl.scheduler.Stop().Done()
	}
	// 關閉增量同步
	if impl.incremental != nil {
		impl.incremental.Close()
	}
	// 關閉producer，緩衝中的異動會先寫入
	if impl.producer != nil {
		impl.producer.Close()
	}
	if impl.redisClient != nil {
		if err := impl.redisClient.Close(); err != nil {
			impl.logger.Warn("Fail to close redis client", slog.Any("error", err))
		}
	}
}

// SyncAll 對所有已啟用且支援通訊錄的平台執行全量同步
func (impl *ServerImpl) SyncAll(ctx context.Context) {
	records, err := impl.configs.Enabled(ctx)
	if err != nil {
		impl.logger.Error("Fail to list enabled providers", slog.Any("error", err))
		return
	}

	for _, record := range records {
		logger := impl.logger.With(slog.String("provider", record.Name))
		cfg, err := provider.ParseConfig(record.Config)
		if err != nil {
			logger.Error("Fail to parse provider config", slog.Any("error", err))
			continue
		}
		p, err := impl.registry.Get(record.Name, cfg)
		if err != nil {
			logger.Warn("Provider unavailable, skip sync", slog.Any("error", err))
			continue
		}

		start := time.Now()
		count, err := p.SyncUsers(ctx)
		switch {
		case errors.Is(err, provider.ErrSyncUnsupported):
			logger.Debug("Provider has no directory, skip sync")
		case errors.Is(err, directory.ErrSyncInProgress):
			logger.Info("Sync already running elsewhere, skip")
		case err != nil:
			logger.Error("Scheduled sync failed", slog.Any("error", err))
		default:
			logger.Info("Scheduled sync finished", slog.Int("count", count), slog.Duration("elapsed", time.Since(start)))
		}
	}
}

// cronLogger 讓 cron 使用 slog
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, slog.Any("error", err))...)
}
