package dao

import (
	"context"
	"fmt"

	"github.com/haierkeys/memo-sync-service/internal/domain"

	"gorm.io/gorm"
)

// 持久化后端名称
const (
	BackendDatabase = "database"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

// MemoBackendConfig 选择备忘录持久化后端
type MemoBackendConfig struct {
	Backend     string
	FileDir     string
	RedisURL    string
	RedisPrefix string
}

// NewMemoRepositoryFactory 按配置创建后端；database 后端复用 db
func NewMemoRepositoryFactory(ctx context.Context, cfg MemoBackendConfig, db *gorm.DB) (domain.MemoRepositoryFactory, error) {
	switch cfg.Backend {
	case BackendDatabase, "":
		if db == nil {
			return nil, fmt.Errorf("database backend requires a database connection")
		}
		return NewMemoDBRepositoryFactory(db), nil
	case BackendFile:
		return NewMemoFileRepositoryFactory(cfg.FileDir)
	case BackendRedis:
		return NewMemoRedisRepositoryFactory(ctx, cfg.RedisURL, cfg.RedisPrefix)
	case BackendMemory:
		return NewMemoMemoryRepositoryFactory(), nil
	}
	return nil, fmt.Errorf("unsupported memo backend %q", cfg.Backend)
}
