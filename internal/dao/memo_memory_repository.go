package dao

import (
	"context"
	"sync"

	"github.com/haierkeys/memo-sync-service/internal/domain"
)

// memoMemoryFactory 进程内后端，重启后数据丢失，用于测试与临时运行
type memoMemoryFactory struct {
	mu    sync.Mutex
	snaps map[int64]*domain.Snapshot
}

func NewMemoMemoryRepositoryFactory() domain.MemoRepositoryFactory {
	return &memoMemoryFactory{snaps: make(map[int64]*domain.Snapshot)}
}

func (f *memoMemoryFactory) ForUser(uid int64) domain.MemoRepository {
	return &memoMemoryRepository{factory: f, uid: uid}
}

func (f *memoMemoryFactory) Name() string {
	return BackendMemory
}

func (f *memoMemoryFactory) Close() error {
	return nil
}

type memoMemoryRepository struct {
	factory *memoMemoryFactory
	uid     int64
}

func (r *memoMemoryRepository) LoadAll(_ context.Context) (*domain.Snapshot, error) {
	r.factory.mu.Lock()
	defer r.factory.mu.Unlock()
	if snap, ok := r.factory.snaps[r.uid]; ok {
		return snap.Clone(), nil
	}
	return domain.NewSnapshot(), nil
}

func (r *memoMemoryRepository) ReplaceAll(ctx context.Context, snap *domain.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.factory.mu.Lock()
	defer r.factory.mu.Unlock()
	r.factory.snaps[r.uid] = snap.Clone()
	return nil
}
