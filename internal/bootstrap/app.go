package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	appsvc "resume-screener/internal/app"
	"resume-screener/internal/cache"
	"resume-screener/internal/config"
	"resume-screener/internal/extract"
	"resume-screener/internal/model"
	mysqlClient "resume-screener/internal/platform/mysql"
	rabbitmqClient "resume-screener/internal/platform/rabbitmq"
	redisClient "resume-screener/internal/platform/redis"
	"resume-screener/internal/repository"
	"resume-screener/internal/storage"
	"resume-screener/internal/textproc"
	"resume-screener/internal/worker"
)

type App struct {
	Config *config.Config
	MySQL  *gorm.DB
	Redis  *redis.Client
	MQConn *amqp.Connection
	Store  storage.Store

	AuthService   *appsvc.AuthService
	ScreenService *appsvc.ScreenService

	UsageWorker *worker.UsageWorker
	Reaper      *worker.SessionReaper

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(
		&model.User{},
		&model.ActiveSession{},
		&model.Resume{},
		&model.UserUsage{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	store, err := newStore(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}

	userRepo := repository.NewUserRepository(mysqlDB)
	usageRepo := repository.NewUsageRepository(mysqlDB)
	sessionRepo := repository.NewActiveSessionRepository(mysqlDB)
	resumeRepo := repository.NewResumeRepository(mysqlDB)

	authService := appsvc.NewAuthService(
		userRepo,
		usageRepo,
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.JWTExpireMinute)*time.Minute,
		cfg.Screening.DefaultResumesLimit,
	)

	dashboardCache := cache.NewDashboardCache(
		redisCli,
		time.Duration(cfg.Redis.DashboardTTLSeconds)*time.Second,
		time.Duration(cfg.Redis.DashboardDirtyTTLSeconds)*time.Second,
	)
	usagePublisher := rabbitmqClient.NewUsagePublisher(mqConn, cfg.RabbitMQ.UsageQueue)

	screenService := appsvc.NewScreenService(
		sessionRepo,
		resumeRepo,
		store,
		extract.NewFileExtractor(),
		textproc.NewDefaultSkillExtractor(),
		usagePublisher,
		dashboardCache,
		time.Duration(cfg.Screening.RetentionMinutes)*time.Minute,
	)

	usageWorker := worker.NewUsageWorker(mqConn, usageRepo, cfg.RabbitMQ.UsageQueue)
	if err := usageWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start usage worker failed: %w", err)
	}

	reaper := worker.NewSessionReaper(
		screenService,
		time.Duration(cfg.Screening.SweepIntervalMinutes)*time.Minute,
	)
	reaper.Start(ctx)

	return &App{
		Config:        cfg,
		MySQL:         mysqlDB,
		Redis:         redisCli,
		MQConn:        mqConn,
		Store:         store,
		AuthService:   authService,
		ScreenService: screenService,
		UsageWorker:   usageWorker,
		Reaper:        reaper,
		StartedAt:     time.Now(),
	}, nil
}

func newStore(ctx context.Context, cfg config.StorageConfig) (storage.Store, error) {
	switch cfg.Backend {
	case "", "fs":
		return storage.NewFSStore(cfg.BaseDir)
	case "s3":
		return storage.NewS3Store(ctx, cfg.Bucket, cfg.Region, cfg.Endpoint)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

func (a *App) Close() error {
	var closeErr error
	if a.Reaper != nil {
		a.Reaper.Close()
	}
	if a.UsageWorker != nil {
		a.UsageWorker.Close()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
