package app

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/kursadbilgin/domain-alerts/internal/channel"
	"github.com/kursadbilgin/domain-alerts/internal/config"
	"github.com/kursadbilgin/domain-alerts/internal/domain"
	"github.com/kursadbilgin/domain-alerts/internal/infra/postgresql"
	"github.com/kursadbilgin/domain-alerts/internal/infra/postgresql/migrations"
	infraredis "github.com/kursadbilgin/domain-alerts/internal/infra/redis"
	"github.com/kursadbilgin/domain-alerts/internal/lock"
	"github.com/kursadbilgin/domain-alerts/internal/lookup"
	"github.com/kursadbilgin/domain-alerts/internal/observability"
	"github.com/kursadbilgin/domain-alerts/internal/ratelimit"
	"github.com/kursadbilgin/domain-alerts/internal/repository"
	"github.com/kursadbilgin/domain-alerts/internal/service"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	groupCacheTTL  = 5 * time.Minute
	lookupBurst    = 1
	userAgent      = "domain-alerts/1.0"
	metricsJobName = "domain_alerts"
)

// App holds the connected infrastructure and the stores built on it.
type App struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *observability.Metrics

	db    *gorm.DB
	sqlDB *sql.DB
	redis *goredis.Client

	domains  *repository.GormDomainRepo
	groups   *repository.CachedGroupRepo
	ledger   *repository.GormLedgerRepo
	settings *repository.GormSettingsRepo

	resolver service.Resolver
	registry *channel.Registry
	limiter  ratelimit.RateLimiter
	locker   lock.Locker
	baseRun  service.RunConfig
}

// New connects postgres (running migrations) and, when configured, redis,
// then builds the lookup and channel stack.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	baseRun, err := BaseRunConfig(cfg)
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:     cfg,
		logger:  logger,
		metrics: observability.NewMetrics(),
		baseRun: baseRun,
	}

	db, err := postgresql.NewPostgres(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("postgres initialization failed: %w", err)
	}
	a.db = db

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("postgres underlying db init failed: %w", err)
	}
	a.sqlDB = sqlDB

	if err := migrations.Migrate(db); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}

	if strings.TrimSpace(cfg.RedisURL) != "" {
		rdb, err := infraredis.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("redis initialization failed: %w", err)
		}
		a.redis = rdb

		limiter, err := infraredis.NewRateLimiter(rdb, cfg.ChannelRateLimitPerSec)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		locker, err := infraredis.NewKeyLocker(rdb)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.limiter = limiter
		a.locker = locker
	} else {
		logger.Info("redis is not configured, using process-local rate limiting and locks")
		a.limiter = ratelimit.NewLocalRateLimiter(cfg.ChannelRateLimitPerSec)
		a.locker = lock.NewLocalLocker()
	}

	a.domains = repository.NewGormDomainRepo(db)
	a.groups = repository.NewCachedGroupRepo(repository.NewGormGroupRepo(db), groupCacheTTL)
	a.ledger = repository.NewGormLedgerRepo(db)
	a.settings = repository.NewGormSettingsRepo(db)

	a.resolver = lookup.NewRateLimitedResolver(
		lookup.NewRDAPClient(cfg.RDAPBaseURL, cfg.LookupTimeout),
		float64(cfg.LookupRatePerSec),
		lookupBurst,
	)
	a.registry = channel.NewDefaultRegistry(channel.Options{
		Timeout:            cfg.ChannelTimeout,
		UserAgent:          userAgent,
		Mailer:             NewMailer(cfg),
		MailFrom:           cfg.MailFrom,
		TelegramAPIBaseURL: cfg.TelegramAPIBaseURL,
	})

	logger.Info("domain-alerts initialized",
		zap.Bool("redis", a.redis != nil),
		zap.Strings("channels", channelTypeNames(a.registry.Types())),
	)

	return a, nil
}

// BaseRunConfig maps environment configuration onto a run config. Values
// stored in settings are layered on top at the start of each run.
func BaseRunConfig(cfg *config.Config) (service.RunConfig, error) {
	days, err := domain.ParseThresholdDays(cfg.DefaultThresholds)
	if err != nil {
		return service.RunConfig{}, fmt.Errorf("invalid DEFAULT_THRESHOLDS: %w", err)
	}
	policy, err := domain.NewThresholdPolicy(days)
	if err != nil {
		return service.RunConfig{}, fmt.Errorf("invalid DEFAULT_THRESHOLDS: %w", err)
	}

	return service.RunConfig{
		Policy:         policy,
		Cooldown:       time.Duration(cfg.DefaultCooldownHours) * time.Hour,
		Concurrency:    cfg.WorkerConcurrency,
		LookupTimeout:  cfg.LookupTimeout,
		ChannelTimeout: cfg.ChannelTimeout,
		BatchTimeout:   cfg.BatchTimeout,
	}, nil
}

// NewMailer picks the mail API when configured, then SMTP. A nil mailer
// makes email channels fail with a configuration error.
func NewMailer(cfg *config.Config) channel.Mailer {
	switch {
	case strings.TrimSpace(cfg.MailAPIURL) != "":
		client := channel.NewHTTPClient(cfg.ChannelTimeout, userAgent)
		return channel.NewAPIMailer(client, cfg.MailAPIURL, cfg.MailAPIKey)
	case strings.TrimSpace(cfg.MailSMTPHost) != "":
		return channel.NewSMTPMailer(channel.SMTPConfig{
			Host:     cfg.MailSMTPHost,
			Port:     cfg.MailSMTPPort,
			Username: cfg.MailSMTPUsername,
			Password: cfg.MailSMTPPassword,
			TLS:      cfg.MailSMTPTLS,
			Timeout:  cfg.ChannelTimeout,
		})
	default:
		return nil
	}
}

// NewBatchRunner builds a runner with the settings in effect right now.
func (a *App) NewBatchRunner(ctx context.Context) (*service.BatchRunner, error) {
	runCfg, err := service.LoadRunConfig(ctx, a.settings, a.baseRun)
	if err != nil {
		return nil, fmt.Errorf("failed to load run settings: %w", err)
	}

	// Group membership may have changed since the last run.
	a.groups.Flush()

	dispatcher, err := service.NewDispatcher(service.DispatcherDeps{
		Ledger:   a.ledger,
		Groups:   a.groups,
		Registry: a.registry,
		Limiter:  a.limiter,
		Locker:   a.locker,
	}, runCfg, a.logger)
	if err != nil {
		return nil, err
	}

	runner, err := service.NewBatchRunner(a.domains, a.resolver, dispatcher, runCfg, a.logger)
	if err != nil {
		return nil, err
	}
	runner.SetMetrics(a.metrics)

	return runner, nil
}

// Run executes one batch with freshly loaded settings.
func (a *App) Run(ctx context.Context) (service.Summary, error) {
	runner, err := a.NewBatchRunner(ctx)
	if err != nil {
		return service.Summary{}, err
	}
	return runner.Run(ctx)
}

func (a *App) NewLedgerJanitor(interval time.Duration) (*service.LedgerJanitor, error) {
	retention := time.Duration(a.cfg.LedgerRetentionDays) * 24 * time.Hour
	janitor, err := service.NewLedgerJanitor(a.ledger, retention, interval, a.logger)
	if err != nil {
		return nil, err
	}
	janitor.SetMetrics(a.metrics)
	return janitor, nil
}

// PushMetrics sends the collected metrics to the configured Pushgateway.
func (a *App) PushMetrics(ctx context.Context) error {
	return a.metrics.Push(ctx, a.cfg.PushgatewayURL, metricsJobName)
}

func (a *App) Metrics() *observability.Metrics { return a.metrics }

func (a *App) SQLDB() *sql.DB { return a.sqlDB }

func (a *App) Redis() *goredis.Client { return a.redis }

func (a *App) Domains() *repository.GormDomainRepo { return a.domains }

func (a *App) Ledger() *repository.GormLedgerRepo { return a.ledger }

// Close releases redis and postgres connections.
func (a *App) Close() error {
	var result *multierror.Error

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("close redis: %w", err))
		}
	}
	if a.sqlDB != nil {
		if err := a.sqlDB.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("close postgres: %w", err))
		}
	}

	return result.ErrorOrNil()
}

func channelTypeNames(types []domain.ChannelType) []string {
	names := make([]string, 0, len(types))
	for _, t := range types {
		names = append(names, t.String())
	}
	return names
}
