package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"pmd-directory/common/database"
	mqttcommon "pmd-directory/common/mqtt"
	rediscommon "pmd-directory/common/redis"
	"pmd-directory/internal/config"
	"pmd-directory/internal/consumer"
	"pmd-directory/internal/models"
	"pmd-directory/internal/pipeline"
	"pmd-directory/internal/repository"
	"pmd-directory/internal/searchkey"
	"pmd-directory/internal/store"
	"pmd-directory/internal/taxonomy"

	"github.com/go-redis/redis/v8"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

var (
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidInput    = errors.New("invalid input")
	ErrSessionNotFound = errors.New("session not found")
)

// DirectoryStore 目录持久化（Postgres 或内存实现）
type DirectoryStore interface {
	ListEmployees(ctx context.Context) ([]models.Employee, error)
	GetEmployee(ctx context.Context, kgid string) (*models.Employee, error)
	UpsertEmployee(ctx context.Context, e *models.Employee) error
	SetApproved(ctx context.Context, kgid string, approved bool) error
	DeleteEmployee(ctx context.Context, kgid string) error
	ListOfficers(ctx context.Context) ([]models.Officer, error)
	UpsertOfficer(ctx context.Context, o *models.Officer) error
	ReplaceOfficers(ctx context.Context, officers []models.Officer) error
}

// Options are the collaborators of a DirectoryService. Nil fields get
// in-process defaults.
type Options struct {
	Store       DirectoryStore
	Accelerator pipeline.Accelerator
	Cache       store.KV
	Taxonomy    *taxonomy.Store
	Publisher   consumer.Publisher
	Clock       clockwork.Clock
}

// DirectoryService 通讯录服务
type DirectoryService struct {
	config    *config.Config
	logger    *zap.Logger
	clock     clockwork.Clock
	store     DirectoryStore
	records   *RecordHub
	taxonomy  *taxonomy.Store
	cache     store.KV
	publisher consumer.Publisher
	engine    *pipeline.Engine
	sessions  *SessionRegistry

	db            *sql.DB
	redisClient   *redis.Client
	mqttClient    *mqttcommon.Client
	eventConsumer *consumer.EventConsumer
	mqttConsumer  *consumer.MQTTConsumer

	reloadMu sync.Mutex
}

// NewDirectoryService 创建通讯录服务并连接外部依赖
func NewDirectoryService(cfg *config.Config, logger *zap.Logger) (*DirectoryService, error) {
	opts := Options{}

	// 初始化数据库（DB_ENABLED=false 时使用内存目录）
	var db *sql.DB
	if cfg.Database.Enabled {
		var err error
		db, err = database.Open(context.Background(), &cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		repo := repository.NewDirectoryRepository(db, logger)
		opts.Store = repo
		opts.Accelerator = repo
	} else {
		logger.Warn("Database disabled, using in-memory directory")
	}

	// 初始化 Redis（缓存 + 事件流）
	var redisClient *redis.Client
	var publishers consumer.MultiPublisher
	if cfg.Redis.Enabled {
		var err error
		redisClient, err = rediscommon.Connect(context.Background(), &cfg.Redis)
		if err != nil {
			_ = database.Close(db)
			return nil, err
		}
		opts.Cache = store.NewRedisKV(redisClient)
		publishers = append(publishers, consumer.NewStreamPublisher(redisClient, cfg.Directory.EventStream))
	}

	// 初始化 MQTT（可选）
	var mqttClient *mqttcommon.Client
	if cfg.MQTT.Broker != "" {
		var err error
		mqttClient, err = mqttcommon.NewClient(&cfg.MQTT, logger)
		if err != nil {
			_ = rediscommon.Close(redisClient)
			_ = database.Close(db)
			return nil, fmt.Errorf("failed to connect to mqtt: %w", err)
		}
		publishers = append(publishers, consumer.NewMQTTPublisher(mqttClient, cfg.MQTT.Topic, cfg.MQTT.QoS))
	}
	opts.Publisher = publishers

	var fetcher taxonomy.Fetcher
	if cfg.Taxonomy.RemoteURL != "" {
		fetcher = taxonomy.NewRemoteClient(cfg.Taxonomy.RemoteURL, logger)
	}
	cache := opts.Cache
	if cache == nil {
		cache = store.NewMemoryKV()
		opts.Cache = cache
	}
	opts.Taxonomy = taxonomy.NewStore(fetcher, cache, cfg.TaxonomyCacheTTL(), logger)

	s := New(cfg, logger, opts)
	s.db = db
	s.redisClient = redisClient
	s.mqttClient = mqttClient

	switch cfg.Directory.TriggerMode {
	case config.TriggerEvents:
		stream := consumer.NewRedisStream(
			redisClient,
			cfg.Directory.EventStream,
			cfg.Directory.ConsumerGroup,
			cfg.Directory.ConsumerName,
			int64(cfg.Directory.BatchSize),
		)
		s.eventConsumer = consumer.NewEventConsumer(stream, s, clockwork.NewRealClock(), logger)
	case config.TriggerMQTT:
		s.mqttConsumer = consumer.NewMQTTConsumer(mqttClient, cfg.MQTT.Topic, cfg.MQTT.QoS, s, logger)
	}

	return s, nil
}

// New assembles a service from already built collaborators.
func New(cfg *config.Config, logger *zap.Logger, opts Options) *DirectoryService {
	if opts.Store == nil {
		opts.Store = repository.NewMemoryDirectory()
	}
	if opts.Cache == nil {
		opts.Cache = store.NewMemoryKV()
	}
	if opts.Taxonomy == nil {
		opts.Taxonomy = taxonomy.NewStore(nil, opts.Cache, cfg.TaxonomyCacheTTL(), logger)
	}
	if opts.Publisher == nil {
		opts.Publisher = consumer.MultiPublisher(nil)
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}

	engine := &pipeline.Engine{
		Accelerator: opts.Accelerator,
		Threshold:   cfg.Search.AcceleratorThreshold,
		Logger:      logger,
	}

	return &DirectoryService{
		config:    cfg,
		logger:    logger,
		clock:     opts.Clock,
		store:     opts.Store,
		records:   NewRecordHub(),
		taxonomy:  opts.Taxonomy,
		cache:     opts.Cache,
		publisher: opts.Publisher,
		engine:    engine,
		sessions:  NewSessionRegistry(opts.Clock, cfg.SessionIdleTimeout(), logger),
	}
}

// Start 启动服务，阻塞直到 ctx 结束
func (s *DirectoryService) Start(ctx context.Context) error {
	s.logger.Info("Starting directory service",
		zap.String("trigger_mode", s.config.Directory.TriggerMode),
		zap.Bool("database_enabled", s.config.Database.Enabled),
		zap.Bool("redis_enabled", s.config.Redis.Enabled),
	)

	// 首次全量加载
	if err := s.Reload(ctx); err != nil {
		s.logger.Error("Failed to load directory on startup", zap.Error(err))
	}

	if s.config.Taxonomy.RemoteURL != "" {
		if err := s.taxonomy.Refresh(ctx); err != nil {
			s.logger.Warn("Initial taxonomy refresh failed", zap.Error(err))
		}
		go s.taxonomy.StartRefresh(ctx, s.config.TaxonomyRefreshInterval())
	}

	go s.sessions.StartReaper(ctx, s.config.SessionIdleTimeout()/2)

	switch s.config.Directory.TriggerMode {
	case config.TriggerPolling:
		return s.startPollingMode(ctx)
	case config.TriggerEvents:
		if s.eventConsumer == nil {
			return errors.New("event consumer not configured")
		}
		s.logger.Info("Starting event-driven mode", zap.String("stream", s.config.Directory.EventStream))
		return s.eventConsumer.Start(ctx)
	case config.TriggerMQTT:
		if s.mqttConsumer == nil {
			return errors.New("mqtt consumer not configured")
		}
		s.logger.Info("Starting mqtt mode", zap.String("topic", s.config.MQTT.Topic))
		return s.mqttConsumer.Start(ctx)
	default:
		return fmt.Errorf("unsupported trigger mode: %s", s.config.Directory.TriggerMode)
	}
}

// startPollingMode 轮询模式：定时全量重载
func (s *DirectoryService) startPollingMode(ctx context.Context) error {
	interval := s.config.PollInterval()
	ticker := s.clock.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("Starting polling mode", zap.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
			if err := s.Reload(ctx); err != nil {
				s.logger.Error("Failed to reload directory", zap.Error(err))
			}
		}
	}
}

// Stop 停止服务
func (s *DirectoryService) Stop(ctx context.Context) error {
	s.logger.Info("Stopping directory service")

	s.sessions.CloseAll()

	if s.mqttClient != nil {
		s.mqttClient.Disconnect()
	}
	var errs []error
	if s.redisClient != nil {
		if err := rediscommon.Close(s.redisClient); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if s.db != nil {
		if err := database.Close(s.db); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}

// HandleChange reacts to a directory change event from any trigger source.
func (s *DirectoryService) HandleChange(ctx context.Context, event consumer.ChangeEvent) error {
	if event.AffectsTaxonomy() {
		if err := s.taxonomy.Refresh(ctx); err != nil {
			s.logger.Warn("Taxonomy refresh after change event failed",
				zap.String("event_id", event.EventID),
				zap.Error(err),
			)
		}
	}
	if event.AffectsRecords() {
		return s.Reload(ctx)
	}
	return nil
}

// Reload 全量加载员工和官员，整体替换当前快照
func (s *DirectoryService) Reload(ctx context.Context) error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	employees, err := s.store.ListEmployees(ctx)
	if err != nil {
		return fmt.Errorf("failed to load employees: %w", err)
	}
	officers, err := s.store.ListOfficers(ctx)
	if err != nil {
		return fmt.Errorf("failed to load officers: %w", err)
	}

	s.auditBlobs(employees, officers)
	gen := s.records.Publish(employees, officers)

	s.logger.Info("Directory reloaded",
		zap.Int("employee_count", len(employees)),
		zap.Int("officer_count", len(officers)),
		zap.Uint64("generation", gen),
	)
	return nil
}

// auditBlobs 存储的 search blob 与重新计算结果不一致时记录错误，并使用新值匹配
func (s *DirectoryService) auditBlobs(employees []models.Employee, officers []models.Officer) {
	for i := range employees {
		if searchkey.EmployeeStale(&employees[i]) {
			s.logger.Error("Stale search blob on employee record", zap.String("kgid", employees[i].KGID))
			searchkey.StampEmployee(&employees[i])
		}
	}
	for i := range officers {
		if searchkey.OfficerStale(&officers[i]) {
			s.logger.Error("Stale search blob on officer record", zap.String("agid", officers[i].AGID))
			searchkey.StampOfficer(&officers[i])
		}
	}
}

// Records exposes the record hub sessions are bound to.
func (s *DirectoryService) Records() *RecordHub { return s.records }

// Taxonomy returns the taxonomy in effect.
func (s *DirectoryService) Taxonomy() *taxonomy.Taxonomy { return s.taxonomy.Current() }

// RefreshTaxonomy forces a taxonomy refresh.
func (s *DirectoryService) RefreshTaxonomy(ctx context.Context) error {
	return s.taxonomy.Refresh(ctx)
}

// IsAdmin reports whether kgid is an approved admin in the loaded directory.
func (s *DirectoryService) IsAdmin(kgid string) bool { return s.records.IsAdmin(kgid) }
