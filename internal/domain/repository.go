package domain

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by repositories when a record does not exist.
var ErrNotFound = errors.New("record not found")

// MemoRepository persists one tenant's snapshot. ReplaceAll must be all-or-nothing.
// MemoRepository 持久化单个租户的快照，ReplaceAll 必须是原子的
type MemoRepository interface {
	// LoadAll 读取完整快照，不存在时返回空快照
	LoadAll(ctx context.Context) (*Snapshot, error)

	// ReplaceAll 用给定快照整体替换持久状态
	ReplaceAll(ctx context.Context, snap *Snapshot) error
}

// MemoRepositoryFactory hands out the MemoRepository of a tenant.
// MemoRepositoryFactory 按用户返回对应的 MemoRepository
type MemoRepositoryFactory interface {
	// ForUser 返回 uid 对应的仓储
	ForUser(uid int64) MemoRepository

	// Name 后端名称
	Name() string

	// Close 释放后端资源
	Close() error
}

// UserRepository 用户仓储接口
type UserRepository interface {
	// GetByUID 根据用户ID获取用户
	GetByUID(ctx context.Context, uid int64) (*User, error)

	// GetByUsername 根据用户名获取用户
	GetByUsername(ctx context.Context, username string) (*User, error)

	// Create 创建用户
	Create(ctx context.Context, user *User) (*User, error)
}

// TokenRepository 已注销令牌仓储接口，按 JWT ID 记录
type TokenRepository interface {
	// Revoke 注销令牌，重复注销不报错
	Revoke(ctx context.Context, jti string, uid int64, expiresAt time.Time) error

	// IsRevoked 令牌是否已注销
	IsRevoked(ctx context.Context, jti string) (bool, error)

	// PurgeExpired 删除 before 之前已过期的注销记录
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}
