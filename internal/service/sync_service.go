// Package service implements the business logic layer
// Package service 实现业务逻辑层
package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/haierkeys/memo-sync-service/internal/domain"
	"github.com/haierkeys/memo-sync-service/internal/dto"
	"github.com/haierkeys/memo-sync-service/internal/reconcile"
	"github.com/haierkeys/memo-sync-service/internal/store"
	"github.com/haierkeys/memo-sync-service/pkg/code"
	apperrors "github.com/haierkeys/memo-sync-service/pkg/errors"
	"github.com/haierkeys/memo-sync-service/pkg/logger"
	"github.com/haierkeys/memo-sync-service/pkg/metrics"

	"go.uber.org/zap"
)

// SyncService 定义备忘录同步业务服务接口
type SyncService interface {
	// Sync 执行一次同步
	Sync(ctx context.Context, uid int64, params *dto.SyncRequest) (*dto.SyncResponse, error)

	// Export 导出用户的完整快照
	Export(ctx context.Context, uid int64) (*dto.ExportResponse, error)

	// Health 返回后端与已加载租户信息
	Health() *dto.HealthDTO
}

// syncService 实现 SyncService 接口
type syncService struct {
	registry   *store.Registry
	backend    string
	normalizer *Normalizer
	metrics    *metrics.Collector
	logger     *zap.Logger
	config     *ServiceConfig
}

// NewSyncService 创建 SyncService 实例
func NewSyncService(registry *store.Registry, backend string, collector *metrics.Collector, lg *zap.Logger, config *ServiceConfig) SyncService {
	return &syncService{
		registry:   registry,
		backend:    backend,
		normalizer: NewNormalizer(),
		metrics:    collector,
		logger:     lg,
		config:     config,
	}
}

// Sync 执行一次同步
func (s *syncService) Sync(ctx context.Context, uid int64, params *dto.SyncRequest) (*dto.SyncResponse, error) {
	started := time.Now()

	if limit := s.config.Sync.MaxMemosPerRequest; limit > 0 && len(params.Memos)+len(params.DeletedMemos) > limit {
		s.metrics.ObserveSync(metrics.ResultInvalid, started, nil)
		return nil, code.ErrorSyncTooManyMemo.WithDetails("limit " + strconv.Itoa(limit))
	}

	req, rejected := s.normalizer.Request(params.Memos, params.DeletedMemos)
	for _, r := range rejected {
		s.logger.Warn("sync memo rejected",
			zap.Int64(logger.FieldUID, uid),
			zap.Int("index", r.Index),
			zap.String(logger.FieldError, r.Reason))
	}

	st, release, err := s.registry.Acquire(ctx, uid)
	if err != nil {
		s.metrics.ObserveSync(metrics.ResultInternal, started, nil)
		s.logger.Error("memo store load failed", zap.Int64(logger.FieldUID, uid), zap.Error(err))
		return nil, apperrors.NewAppError(code.ErrorSyncLoad, err)
	}
	defer release()
	s.metrics.SetActiveStores(s.registry.Len())

	result, err := st.Sync(ctx, req)
	if err != nil {
		return nil, s.syncError(uid, started, err)
	}

	statuses := make(map[string]int, 4)
	resp := &dto.SyncResponse{
		Results:       make([]dto.SyncOutcomeDTO, 0, len(result.Outcomes)),
		ServerMemos:   result.ServerMemos,
		ServerDeleted: result.ServerDeleted,
	}
	for _, o := range result.Outcomes {
		statuses[string(o.Status)]++
		resp.Results = append(resp.Results, outcomeToDTO(o))
	}
	for _, r := range rejected {
		resp.Rejected = append(resp.Rejected, dto.RejectedMemoDTO{Index: r.Index, Reason: r.Reason})
	}

	s.metrics.ObserveSync(metrics.ResultOK, started, statuses)
	s.logger.Info("sync completed",
		zap.Int64(logger.FieldUID, uid),
		zap.Int(logger.FieldCount, len(req.Memos)),
		zap.Int("deletions", len(req.Deletions)),
		zap.Int("serverMemos", len(resp.ServerMemos)),
		zap.Int("serverDeleted", len(resp.ServerDeleted)),
		zap.Duration(logger.FieldDuration, time.Since(started)))

	return resp, nil
}

func (s *syncService) syncError(uid int64, started time.Time, err error) error {
	switch {
	case errors.Is(err, store.ErrPersist):
		s.metrics.ObserveSync(metrics.ResultPersist, started, nil)
		s.logger.Error("sync persist failed", zap.Int64(logger.FieldUID, uid), zap.Error(err))
		return apperrors.NewAppError(code.ErrorSyncPersist, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.metrics.ObserveSync(metrics.ResultInternal, started, nil)
		return code.ErrorRequestTimeout
	case errors.Is(err, reconcile.ErrEmptyHistory):
		s.metrics.ObserveSync(metrics.ResultInternal, started, nil)
		s.logger.Error("sync aborted on memo without history", zap.Int64(logger.FieldUID, uid), zap.Error(err))
		return apperrors.NewAppError(code.ErrorSyncInternal, err).WithDetails(err.Error())
	}
	s.metrics.ObserveSync(metrics.ResultInternal, started, nil)
	s.logger.Error("sync failed", zap.Int64(logger.FieldUID, uid), zap.Error(err))
	return apperrors.NewAppError(code.ErrorSyncInternal, err)
}

func outcomeToDTO(o domain.Outcome) dto.SyncOutcomeDTO {
	out := dto.SyncOutcomeDTO{ID: o.ID, Status: string(o.Status), Memo: o.Memo}
	if o.DeletedAt != nil {
		t := o.DeletedAt.UTC()
		out.DeletedAt = &t
	}
	return out
}

// Export 导出用户的完整快照
func (s *syncService) Export(ctx context.Context, uid int64) (*dto.ExportResponse, error) {
	st, release, err := s.registry.Acquire(ctx, uid)
	if err != nil {
		s.logger.Error("memo store load failed", zap.Int64(logger.FieldUID, uid), zap.Error(err))
		return nil, apperrors.NewAppError(code.ErrorSyncLoad, err)
	}
	defer release()

	memos, tombstones := store.Lists(st.Snapshot())
	return &dto.ExportResponse{
		Memos:        memos,
		DeletedMemos: tombstones,
		ExportedAt:   time.Now().UTC(),
	}, nil
}

// Health 返回后端与已加载租户信息
func (s *syncService) Health() *dto.HealthDTO {
	n := s.registry.Len()
	s.metrics.SetActiveStores(n)
	return &dto.HealthDTO{Status: "ok", Backend: s.backend, ActiveUsers: n}
}

// 确保 syncService 实现了 SyncService 接口
var _ SyncService = (*syncService)(nil)
