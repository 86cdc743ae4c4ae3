package store

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/haierkeys/memo-sync-service/internal/domain"
	"github.com/haierkeys/memo-sync-service/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// 共享加载的超时，与发起加载的请求是否取消无关
const defaultLoadTimeout = 30 * time.Second

// Registry lazily opens one MemoStore per tenant and evicts the idle ones.
// A store is only evicted when no caller holds it, so a tenant never has two live mirrors.
// Registry 按租户懒加载 MemoStore 并回收空闲实例；仅在无人持有时回收，保证租户只有一个有效镜像
type Registry struct {
	factory domain.MemoRepositoryFactory
	logger  *zap.Logger
	opts    []Option
	now     func() time.Time

	sf singleflight.Group

	mu      sync.Mutex
	entries map[int64]*entry
}

type entry struct {
	store    *MemoStore
	refs     int
	lastUsed time.Time
}

func NewRegistry(factory domain.MemoRepositoryFactory, lg *zap.Logger, opts ...Option) *Registry {
	return &Registry{
		factory: factory,
		logger:  lg,
		opts:    opts,
		now:     time.Now,
		entries: make(map[int64]*entry),
	}
}

// Acquire returns the tenant store, loading it on first use. Callers must call release when done.
// Acquire 返回租户的 store，首次使用时加载；使用完毕必须调用 release
func (r *Registry) Acquire(ctx context.Context, uid int64) (*MemoStore, func(), error) {
	key := strconv.FormatInt(uid, 10)
	for {
		if s, release, ok := r.take(uid); ok {
			return s, release, nil
		}
		// 同一租户的并发请求共享一次加载，单个请求取消不影响其他等待者
		ch := r.sf.DoChan(key, func() (interface{}, error) {
			loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultLoadTimeout)
			defer cancel()
			return nil, r.load(loadCtx, uid)
		})
		select {
		case res := <-ch:
			if res.Err != nil {
				return nil, nil, res.Err
			}
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		}
	}
}

func (r *Registry) load(ctx context.Context, uid int64) error {
	r.mu.Lock()
	_, ok := r.entries[uid]
	r.mu.Unlock()
	if ok {
		return nil
	}

	s, err := Open(ctx, uid, r.factory.ForUser(uid), r.logger, r.opts...)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[uid]; !ok {
		r.entries[uid] = &entry{store: s, lastUsed: r.now()}
		r.logger.Info("memo store loaded",
			zap.Int64(logger.FieldUID, uid),
			zap.String(logger.FieldBackend, r.factory.Name()))
	}
	return nil
}

func (r *Registry) take(uid int64) (*MemoStore, func(), bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[uid]
	if !ok {
		return nil, nil, false
	}
	e.refs++

	var once sync.Once
	release := func() {
		once.Do(func() {
			r.mu.Lock()
			e.refs--
			e.lastUsed = r.now()
			r.mu.Unlock()
		})
	}
	return e.store, release, true
}

// EvictIdle drops stores that nobody holds and that were last used before idle ago.
// EvictIdle 回收无人持有且超过 idle 未使用的 store
func (r *Registry) EvictIdle(idle time.Duration) []int64 {
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	defer r.mu.Unlock()

	var evicted []int64
	for uid, e := range r.entries {
		if e.refs == 0 && !e.lastUsed.After(cutoff) {
			delete(r.entries, uid)
			evicted = append(evicted, uid)
		}
	}
	sort.Slice(evicted, func(i, j int) bool { return evicted[i] < evicted[j] })
	return evicted
}

// Loaded returns the uids with a live store.
func (r *Registry) Loaded() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	uids := make([]int64, 0, len(r.entries))
	for uid := range r.entries {
		uids = append(uids, uid)
	}
	sort.Slice(uids, func(i, j int) bool { return uids[i] < uids[j] })
	return uids
}

// Len returns the number of live stores.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
