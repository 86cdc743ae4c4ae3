package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/haierkeys/memo-sync-service/internal/dto"
	"github.com/haierkeys/memo-sync-service/internal/store"
	"github.com/haierkeys/memo-sync-service/pkg/convert"
	"github.com/haierkeys/memo-sync-service/pkg/logger"
	"github.com/haierkeys/memo-sync-service/pkg/storage"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// BackupConfig snapshot backup configuration
// BackupConfig 快照备份配置
type BackupConfig struct {
	Concurrency int // Parallel uploads // 并发上传数
	Keep        int // Backups kept per user, 0 keeps all // 每个用户保留的备份数，0 表示全部保留
}

// BackupService defines the snapshot backup service
// BackupService 定义快照备份服务接口
type BackupService interface {
	// ExecuteBackups 备份所有已加载用户的快照，返回成功数量
	ExecuteBackups(ctx context.Context) (int, error)
}

type backupService struct {
	registry *store.Registry
	storager storage.Storager
	config   BackupConfig
	logger   *zap.Logger
	now      func() time.Time

	mu      sync.Mutex
	written map[int64][]string // key: uid, value: 已写入的 key，按时间顺序
}

// NewBackupService creates BackupService instance
// 创建 BackupService 实例
func NewBackupService(registry *store.Registry, storager storage.Storager, config BackupConfig, lg *zap.Logger) BackupService {
	if config.Concurrency <= 0 {
		config.Concurrency = 4
	}
	return &backupService{
		registry: registry,
		storager: storager,
		config:   config,
		logger:   lg,
		now:      time.Now,
		written:  make(map[int64][]string),
	}
}

// ExecuteBackups 备份所有已加载用户的快照
func (s *backupService) ExecuteBackups(ctx context.Context) (int, error) {
	uids := s.registry.Loaded()
	stamp := s.now().UTC()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Concurrency)

	var mu sync.Mutex
	done := 0
	for _, uid := range uids {
		uid := uid
		g.Go(func() error {
			if err := s.backupUser(gctx, uid, stamp); err != nil {
				return fmt.Errorf("backup user %d: %w", uid, err)
			}
			mu.Lock()
			done++
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()
	return done, err
}

func (s *backupService) backupUser(ctx context.Context, uid int64, stamp time.Time) error {
	st, release, err := s.registry.Acquire(ctx, uid)
	if err != nil {
		return err
	}
	memos, tombstones := store.Lists(st.Snapshot())
	release()

	content, err := convert.Marshal(&dto.ExportResponse{
		Memos:        memos,
		DeletedMemos: tombstones,
		ExportedAt:   stamp,
	})
	if err != nil {
		return err
	}

	key := backupKey(uid, stamp)
	location, err := s.storager.SendContent(ctx, key, content, stamp)
	if err != nil {
		return err
	}
	s.logger.Info("snapshot backed up",
		zap.Int64(logger.FieldUID, uid),
		zap.String(logger.FieldFileKey, location),
		zap.Int(logger.FieldCount, len(memos)))

	s.prune(ctx, uid, key)
	return nil
}

// prune 删除超出保留数量的旧备份，删除失败只记录日志
func (s *backupService) prune(ctx context.Context, uid int64, key string) {
	s.mu.Lock()
	keys := append(s.written[uid], key)
	var expired []string
	if s.config.Keep > 0 && len(keys) > s.config.Keep {
		expired = keys[:len(keys)-s.config.Keep]
		keys = append([]string(nil), keys[len(keys)-s.config.Keep:]...)
	}
	s.written[uid] = keys
	s.mu.Unlock()

	for _, k := range expired {
		if err := s.storager.Delete(ctx, k); err != nil {
			s.logger.Warn("delete old backup failed", zap.String(logger.FieldFileKey, k), zap.Error(err))
		}
	}
}

func backupKey(uid int64, stamp time.Time) string {
	return "user_" + strconv.FormatInt(uid, 10) + "/memos-" + stamp.Format("20060102T150405Z") + ".json"
}
