package dao

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/haierkeys/memo-sync-service/internal/domain"

	"github.com/redis/go-redis/v9"
)

// memoRedisFactory 每个租户一个键，保存完整快照
type memoRedisFactory struct {
	client *redis.Client
	prefix string
}

// NewMemoRedisRepositoryFactory 连接 Redis 并检查可用性
func NewMemoRedisRepositoryFactory(ctx context.Context, redisURL, prefix string) (domain.MemoRepositoryFactory, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewMemoRedisRepositoryFactoryWithClient(client, prefix), nil
}

// NewMemoRedisRepositoryFactoryWithClient 使用已有的客户端
func NewMemoRedisRepositoryFactoryWithClient(client *redis.Client, prefix string) domain.MemoRepositoryFactory {
	return &memoRedisFactory{client: client, prefix: prefix}
}

func (f *memoRedisFactory) ForUser(uid int64) domain.MemoRepository {
	key := f.prefix + "user_" + strconv.FormatInt(uid, 10)
	return &memoRedisRepository{client: f.client, key: key}
}

func (f *memoRedisFactory) Name() string {
	return BackendRedis
}

func (f *memoRedisFactory) Close() error {
	return f.client.Close()
}

// memoRedisRepository 快照与版本号在同一个 MULTI/EXEC 中写入
type memoRedisRepository struct {
	client *redis.Client
	key    string
}

func (r *memoRedisRepository) revisionKey() string {
	return r.key + ":rev"
}

func (r *memoRedisRepository) LoadAll(ctx context.Context) (*domain.Snapshot, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.NewSnapshot(), nil
	}
	if err != nil {
		return nil, err
	}
	snap, err := decodeSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.key, err)
	}
	return snap, nil
}

func (r *memoRedisRepository) ReplaceAll(ctx context.Context, snap *domain.Snapshot) error {
	data, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.key, data, 0)
		pipe.Incr(ctx, r.revisionKey())
		return nil
	})
	return err
}
