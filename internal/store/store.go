// Package store owns the in-memory mirror of one tenant's memos and runs sync sessions against it.
// store 持有单个租户备忘录的内存镜像，并在其上执行同步会话
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/haierkeys/memo-sync-service/internal/domain"
	"github.com/haierkeys/memo-sync-service/internal/reconcile"
	"github.com/haierkeys/memo-sync-service/pkg/logger"

	"go.uber.org/zap"
)

// ErrPersist wraps every failure of the durable write. The mirror is unchanged when it is returned.
// ErrPersist 包装持久化写入失败，返回该错误时内存镜像保持不变
var ErrPersist = errors.New("store: persist failed")

// ErrLoad wraps failures of the initial load.
var ErrLoad = errors.New("store: load failed")

// MemoStore is the mirror of one tenant. All syncs on it are serialized by mu.
// MemoStore 单个租户的内存镜像，所有同步通过 mu 串行执行
type MemoStore struct {
	uid    int64
	repo   domain.MemoRepository
	logger *zap.Logger
	now    func() time.Time

	mu    sync.Mutex
	state *domain.Snapshot
}

// Option configures a MemoStore.
type Option func(*MemoStore)

// WithClock overrides the clock used for server-side deletion instants.
func WithClock(now func() time.Time) Option {
	return func(s *MemoStore) {
		s.now = now
	}
}

// Open loads the tenant state through repo and returns a ready store.
// Open 通过 repo 加载租户状态
func Open(ctx context.Context, uid int64, repo domain.MemoRepository, lg *zap.Logger, opts ...Option) (*MemoStore, error) {
	s := &MemoStore{
		uid:    uid,
		repo:   repo,
		logger: lg,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	snap, err := repo.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	if snap == nil {
		snap = domain.NewSnapshot()
	}
	// 历史数据中同一 ID 若同时存在，以删除标记为准
	for id := range snap.Tombstones {
		delete(snap.Memos, id)
	}
	s.state = snap
	return s, nil
}

// UID returns the tenant of this store.
func (s *MemoStore) UID() int64 {
	return s.uid
}

// Sync runs one sync session: deletions, then reconciliation of each memo in order,
// then the unseen server lists, then the durable write. The mirror only changes after the write succeeds.
// Sync 执行一次同步会话：先处理删除，再依次裁决每条备忘录，随后计算客户端未提及的数据并持久化；
// 只有写入成功后才替换内存镜像
func (s *MemoStore) Sync(ctx context.Context, req domain.SyncRequest) (*domain.SyncResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := s.now()
	work := s.state.Clone()
	ledger := reconcile.NewLedger(work)
	seen := make(map[string]bool, len(req.Memos)+len(req.Deletions))

	for _, d := range req.Deletions {
		if _, ok := ledger.RecordDeletion(d, now); ok {
			seen[d.ID] = true
		}
	}

	result := &domain.SyncResult{Outcomes: make([]domain.Outcome, 0, len(req.Memos))}
	for _, client := range req.Memos {
		var stored *domain.Memo
		if m, ok := work.Memos[client.ID]; ok {
			stored = &m
		}

		d, err := reconcile.Reconcile(client, stored, ledger.Lookup(client.ID))
		if err != nil {
			return nil, err
		}
		if d.Replace {
			work.Memos[client.ID] = d.Memo.Clone()
		}

		outcome := domain.Outcome{ID: client.ID, Status: d.Status, Memo: d.Memo}
		if d.Tombstone != nil {
			deletedAt := d.Tombstone.DeletedAt
			outcome.DeletedAt = &deletedAt
		}
		result.Outcomes = append(result.Outcomes, outcome)
		seen[client.ID] = true

		s.logger.Debug("memo reconciled",
			zap.Int64(logger.FieldUID, s.uid),
			zap.String(logger.FieldMemoID, client.ID),
			zap.String(logger.FieldStatus, string(d.Status)))
	}

	result.ServerMemos, result.ServerDeleted = unseen(work, seen)

	if err := s.repo.ReplaceAll(ctx, work); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersist, err)
	}
	s.state = work

	return result, nil
}

// Snapshot returns a deep copy of the current mirror.
// Snapshot 返回当前镜像的深拷贝
func (s *MemoStore) Snapshot() *domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// unseen lists memos and tombstones whose ids the client did not mention, sorted by id.
func unseen(snap *domain.Snapshot, seen map[string]bool) ([]domain.Memo, []domain.Tombstone) {
	memos := make([]domain.Memo, 0)
	for id, m := range snap.Memos {
		if !seen[id] {
			memos = append(memos, m.Clone())
		}
	}
	sort.Slice(memos, func(i, j int) bool { return memos[i].ID < memos[j].ID })

	tombstones := make([]domain.Tombstone, 0)
	for id, t := range snap.Tombstones {
		if !seen[id] {
			tombstones = append(tombstones, t)
		}
	}
	sort.Slice(tombstones, func(i, j int) bool { return tombstones[i].ID < tombstones[j].ID })

	return memos, tombstones
}

// Lists returns all memos and tombstones of snap, sorted by id.
// Lists 返回快照中全部备忘录与删除标记，按 ID 排序
func Lists(snap *domain.Snapshot) ([]domain.Memo, []domain.Tombstone) {
	return unseen(snap, nil)
}
