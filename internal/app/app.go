// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/haierkeys/memo-sync-service/internal/dao"
	"github.com/haierkeys/memo-sync-service/internal/domain"
	"github.com/haierkeys/memo-sync-service/internal/dto"
	"github.com/haierkeys/memo-sync-service/internal/service"
	"github.com/haierkeys/memo-sync-service/internal/store"
	pkgapp "github.com/haierkeys/memo-sync-service/pkg/app"
	"github.com/haierkeys/memo-sync-service/pkg/logger"
	"github.com/haierkeys/memo-sync-service/pkg/metrics"
	"github.com/haierkeys/memo-sync-service/pkg/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App 应用容器，封装所有依赖和服务
type App struct {
	// 基础设施（注入的依赖）
	config *AppConfig
	logger *zap.Logger
	DB     *gorm.DB

	// 备忘录持久化与租户镜像
	MemoFactory domain.MemoRepositoryFactory
	Registry    *store.Registry
	Metrics     *metrics.Collector

	// Repository 层
	UserRepo  domain.UserRepository
	TokenRepo domain.TokenRepository

	// Service 层
	UserService   service.UserService
	SyncService   service.SyncService
	BackupService service.BackupService // backup.enabled 为 false 时为 nil

	// 基础设施组件
	TokenManager pkgapp.TokenManager

	// 关闭控制
	shutdownCh chan struct{}
	wg         sync.WaitGroup
}

// NewApp 创建应用容器实例
// 初始化所有依赖并进行依赖注入
// cfg: 应用配置（必须）
// logger: zap 日志器（必须）
// db: 数据库连接（必须，用户表始终在数据库中）
func NewApp(ctx context.Context, cfg *AppConfig, lg *zap.Logger, db *gorm.DB) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if lg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}

	a := &App{
		config:     cfg,
		logger:     lg,
		DB:         db,
		Metrics:    metrics.NewCollector(),
		shutdownCh: make(chan struct{}),
	}

	factory, err := dao.NewMemoRepositoryFactory(ctx, dao.MemoBackendConfig{
		Backend:     cfg.Sync.Backend,
		FileDir:     cfg.Sync.FileDir,
		RedisURL:    cfg.Sync.RedisURL,
		RedisPrefix: cfg.Sync.RedisPrefix,
	}, db)
	if err != nil {
		return nil, fmt.Errorf("memo backend: %w", err)
	}
	a.MemoFactory = factory
	a.Registry = store.NewRegistry(factory, lg)

	// 初始化 TokenManager
	a.TokenManager = pkgapp.NewTokenManager(pkgapp.TokenConfig{
		SecretKey: cfg.Security.AuthTokenKey,
		Issuer:    pkgapp.DefaultTokenIssuer,
		Expiry:    cfg.GetTokenExpiry(),
	})

	// 初始化 Repository 层
	a.UserRepo = dao.NewUserRepository(db)
	a.TokenRepo = dao.NewTokenRepository(db)

	// 创建 ServiceConfig（从 AppConfig 提取 Service 层需要的配置）
	svcConfig := &service.ServiceConfig{
		User: service.UserServiceConfig{
			RegisterIsEnable: cfg.IsRegisterEnabled(),
		},
		Sync: service.SyncServiceConfig{
			MaxMemosPerRequest: cfg.Sync.MaxMemosPerRequest,
		},
	}

	// 初始化 Service 层（依赖注入）
	a.UserService = service.NewUserService(a.UserRepo, a.TokenRepo, a.TokenManager, lg, svcConfig)
	a.SyncService = service.NewSyncService(a.Registry, factory.Name(), a.Metrics, lg, svcConfig)

	if cfg.Backup.Enabled {
		storager, err := storage.NewClient(ctx, &cfg.Backup.Storage)
		if err != nil {
			_ = factory.Close()
			return nil, fmt.Errorf("backup storage: %w", err)
		}
		a.BackupService = service.NewBackupService(a.Registry, storager, service.BackupConfig{
			Concurrency: cfg.Backup.Concurrency,
			Keep:        cfg.Backup.Keep,
		}, lg)
	}

	lg.Info("App container initialized successfully",
		zap.String(logger.FieldBackend, factory.Name()),
		zap.Bool("backup", cfg.Backup.Enabled))

	return a, nil
}

// Config 获取应用配置
func (a *App) Config() *AppConfig {
	return a.config
}

// Logger 获取日志器
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Version 获取版本信息
func (a *App) Version() dto.VersionDTO {
	return dto.VersionDTO{
		Version:   Version,
		GitTag:    GitTag,
		BuildTime: BuildTime,
	}
}

// GetAuthTokenKey 获取 Token 密钥
func (a *App) GetAuthTokenKey() string {
	return a.config.Security.AuthTokenKey
}

// EvictIdleStores 回收空闲的租户镜像，返回被回收的 uid
func (a *App) EvictIdleStores() []int64 {
	evicted := a.Registry.EvictIdle(a.config.GetStoreIdleTime())
	a.Metrics.SetActiveStores(a.Registry.Len())
	return evicted
}

// DefaultShutdownTimeout 默认关闭超时时间
const DefaultShutdownTimeout = 30 * time.Second

// Shutdown 优雅关闭应用容器
// 按顺序关闭：后台操作 -> 备忘录后端 -> 数据库
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("App container shutting down...")

	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
	}

	// 标记关闭
	select {
	case <-a.shutdownCh:
		return nil
	default:
		close(a.shutdownCh)
	}

	var errs []error

	// 1. 等待所有后台操作完成
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		a.logger.Info("All background operations completed")
	case <-ctx.Done():
		a.logger.Warn("Shutdown timeout waiting for background operations")
		errs = append(errs, fmt.Errorf("background operations timeout: %w", ctx.Err()))
	}

	// 2. 关闭备忘录后端
	if a.MemoFactory != nil {
		if err := a.MemoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("memo backend close: %w", err))
		}
	}

	// 3. 关闭数据库连接
	if a.DB != nil {
		if err := dao.CloseDB(a.DB); err != nil {
			errs = append(errs, fmt.Errorf("database close: %w", err))
		} else {
			a.logger.Info("Database connection closed")
		}
	}

	if err := errors.Join(errs...); err != nil {
		a.logger.Warn("App container shutdown completed with errors", zap.Error(err))
		return err
	}

	a.logger.Info("App container shutdown completed successfully")
	return nil
}

// IsShuttingDown 检查应用是否正在关闭
func (a *App) IsShuttingDown() bool {
	select {
	case <-a.shutdownCh:
		return true
	default:
		return false
	}
}

// TrackOperation 跟踪后台操作（用于优雅关闭时等待）
// 返回一个函数，在操作完成时调用
func (a *App) TrackOperation() func() {
	a.wg.Add(1)
	return func() {
		a.wg.Done()
	}
}
