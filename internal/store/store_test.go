package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/haierkeys/memo-sync-service/internal/domain"
	"github.com/haierkeys/memo-sync-service/internal/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// fakeRepo 内存仓储，可注入写入失败
type fakeRepo struct {
	mu      sync.Mutex
	snap    *domain.Snapshot
	writes  int
	loads   int
	failErr error
	loadErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{snap: domain.NewSnapshot()}
}

func (r *fakeRepo) LoadAll(context.Context) (*domain.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loads++
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	return r.snap.Clone(), nil
}

func (r *fakeRepo) ReplaceAll(_ context.Context, snap *domain.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return r.failErr
	}
	r.writes++
	r.snap = snap.Clone()
	return nil
}

func (r *fakeRepo) stored() *domain.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snap.Clone()
}

func memo(id, text string, chain ...string) domain.Memo {
	m := domain.Memo{ID: id, Title: id, Text: text, CreatedAt: t0, UpdatedAt: t0}
	for _, v := range chain {
		m.History = append(m.History, domain.Version{ID: v, Text: text, CreatedAt: t0})
	}
	return m
}

func openStore(t *testing.T, repo *fakeRepo, now time.Time) *MemoStore {
	t.Helper()
	s, err := Open(context.Background(), 1, repo, zap.NewNop(), WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	return s
}

func TestSyncNewMemoAccepted(t *testing.T) {
	repo := newFakeRepo()
	s := openStore(t, repo, t0)

	res, err := s.Sync(context.Background(), domain.SyncRequest{Memos: []domain.Memo{memo("m1", "a", "v1")}})
	require.NoError(t, err)

	require.Len(t, res.Outcomes, 1)
	assert.Equal(t, domain.StatusAccepted, res.Outcomes[0].Status)
	storedM1 := repo.stored().Memos["m1"]
	assert.Equal(t, []string{"v1"}, storedM1.HistoryIDs())
	assert.Empty(t, res.ServerMemos)
	assert.Empty(t, res.ServerDeleted)
}

func TestSyncClientBehindGetsUpdate(t *testing.T) {
	repo := newFakeRepo()
	repo.snap.Memos["m1"] = memo("m1", "b", "v1", "v2")
	s := openStore(t, repo, t0)

	res, err := s.Sync(context.Background(), domain.SyncRequest{Memos: []domain.Memo{memo("m1", "a", "v1")}})
	require.NoError(t, err)

	out := res.Outcomes[0]
	assert.Equal(t, domain.StatusUpdate, out.Status)
	require.NotNil(t, out.Memo)
	assert.Equal(t, []string{"v1", "v2"}, out.Memo.HistoryIDs())
	storedM1 := repo.stored().Memos["m1"]
	assert.Equal(t, []string{"v1", "v2"}, storedM1.HistoryIDs())
}

func TestSyncDivergedIsConflict(t *testing.T) {
	repo := newFakeRepo()
	repo.snap.Memos["m1"] = memo("m1", "server", "v1", "v2a")
	s := openStore(t, repo, t0)

	res, err := s.Sync(context.Background(), domain.SyncRequest{Memos: []domain.Memo{memo("m1", "client", "v1", "v2b")}})
	require.NoError(t, err)

	out := res.Outcomes[0]
	assert.Equal(t, domain.StatusConflict, out.Status)
	assert.Equal(t, []string{"v1", "v2a"}, out.Memo.HistoryIDs())
	assert.Equal(t, "server", repo.stored().Memos["m1"].Text)
}

func TestSyncDeletionWithoutTimestampVisibleToOtherClient(t *testing.T) {
	repo := newFakeRepo()
	repo.snap.Memos["m1"] = memo("m1", "a", "v1")
	now := t0.Add(time.Hour)
	s := openStore(t, repo, now)

	res, err := s.Sync(context.Background(), domain.SyncRequest{Deletions: []domain.Deletion{{ID: "m1"}}})
	require.NoError(t, err)
	assert.Empty(t, res.ServerDeleted, "the deleting client already knows")

	pull, err := s.Sync(context.Background(), domain.SyncRequest{})
	require.NoError(t, err)
	require.Len(t, pull.ServerDeleted, 1)
	assert.Equal(t, "m1", pull.ServerDeleted[0].ID)
	assert.True(t, pull.ServerDeleted[0].DeletedAt.Equal(now))
	assert.Empty(t, pull.ServerMemos)
}

func TestSyncTombstoneDominates(t *testing.T) {
	repo := newFakeRepo()
	deletedAt := t0.Add(time.Minute)
	repo.snap.Tombstones["m1"] = domain.Tombstone{ID: "m1", DeletedAt: deletedAt}
	s := openStore(t, repo, t0)

	res, err := s.Sync(context.Background(), domain.SyncRequest{Memos: []domain.Memo{memo("m1", "x", "v1", "v2", "v3")}})
	require.NoError(t, err)

	out := res.Outcomes[0]
	assert.Equal(t, domain.StatusDeleted, out.Status)
	require.NotNil(t, out.DeletedAt)
	assert.True(t, out.DeletedAt.Equal(deletedAt))
	assert.Nil(t, out.Memo)

	pull, err := s.Sync(context.Background(), domain.SyncRequest{})
	require.NoError(t, err)
	assert.Empty(t, pull.ServerMemos)
}

func TestSyncDeleteAndPushSameIDInOneCall(t *testing.T) {
	repo := newFakeRepo()
	s := openStore(t, repo, t0)

	res, err := s.Sync(context.Background(), domain.SyncRequest{
		Memos:     []domain.Memo{memo("m1", "a", "v1")},
		Deletions: []domain.Deletion{{ID: "m1"}},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDeleted, res.Outcomes[0].Status)
	assert.NotContains(t, repo.stored().Memos, "m1")
}

func TestSyncIdempotent(t *testing.T) {
	repo := newFakeRepo()
	s := openStore(t, repo, t0)
	req := domain.SyncRequest{
		Memos:     []domain.Memo{memo("m1", "a", "v1", "v2"), memo("m2", "b", "w1")},
		Deletions: []domain.Deletion{{ID: "m3"}},
	}

	first, err := s.Sync(context.Background(), req)
	require.NoError(t, err)
	second, err := s.Sync(context.Background(), req)
	require.NoError(t, err)

	for i := range second.Outcomes {
		assert.Equal(t, domain.StatusAccepted, first.Outcomes[i].Status)
		assert.Equal(t, domain.StatusAccepted, second.Outcomes[i].Status)
	}
	assert.Equal(t, repo.stored(), s.Snapshot())
}

func TestSyncServerListsExcludeSeen(t *testing.T) {
	repo := newFakeRepo()
	for _, id := range []string{"a", "b", "c", "d"} {
		repo.snap.Memos[id] = memo(id, id, id+"1")
	}
	repo.snap.Tombstones["x"] = domain.Tombstone{ID: "x", DeletedAt: t0}
	repo.snap.Tombstones["y"] = domain.Tombstone{ID: "y", DeletedAt: t0}
	s := openStore(t, repo, t0)

	res, err := s.Sync(context.Background(), domain.SyncRequest{
		Memos:     []domain.Memo{memo("a", "a", "a1"), memo("x", "x", "x1")},
		Deletions: []domain.Deletion{{ID: "b"}, {ID: ""}},
	})
	require.NoError(t, err)

	var memoIDs []string
	for _, m := range res.ServerMemos {
		memoIDs = append(memoIDs, m.ID)
	}
	var deletedIDs []string
	for _, tb := range res.ServerDeleted {
		deletedIDs = append(deletedIDs, tb.ID)
	}
	assert.Equal(t, []string{"c", "d"}, memoIDs)
	assert.Equal(t, []string{"y"}, deletedIDs)
}

func TestSyncPullReturnsEverything(t *testing.T) {
	repo := newFakeRepo()
	repo.snap.Memos["a"] = memo("a", "a", "a1")
	repo.snap.Tombstones["z"] = domain.Tombstone{ID: "z", DeletedAt: t0}
	s := openStore(t, repo, t0)

	res, err := s.Sync(context.Background(), domain.SyncRequest{})
	require.NoError(t, err)
	assert.Empty(t, res.Outcomes)
	assert.Len(t, res.ServerMemos, 1)
	assert.Len(t, res.ServerDeleted, 1)
}

func TestSyncPersistFailureLeavesMirrorUntouched(t *testing.T) {
	repo := newFakeRepo()
	repo.snap.Memos["m1"] = memo("m1", "a", "v1")
	s := openStore(t, repo, t0)
	before := s.Snapshot()

	boom := errors.New("disk full")
	repo.failErr = boom

	res, err := s.Sync(context.Background(), domain.SyncRequest{
		Memos:     []domain.Memo{memo("m1", "b", "v1", "v2"), memo("m2", "c", "w1")},
		Deletions: []domain.Deletion{{ID: "m9"}},
	})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrPersist)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, before, s.Snapshot())

	repo.failErr = nil
	res, err = s.Sync(context.Background(), domain.SyncRequest{Memos: []domain.Memo{memo("m1", "b", "v1", "v2")}})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, res.Outcomes[0].Status)
}

func TestSyncEmptyHistoryAbortsWithoutWrite(t *testing.T) {
	repo := newFakeRepo()
	s := openStore(t, repo, t0)

	_, err := s.Sync(context.Background(), domain.SyncRequest{Memos: []domain.Memo{memo("ok", "a", "v1"), {ID: "bad"}}})
	assert.ErrorIs(t, err, reconcile.ErrEmptyHistory)
	assert.Equal(t, 0, repo.writes)
	assert.Empty(t, s.Snapshot().Memos)
}

func TestSyncCancelledContext(t *testing.T) {
	repo := newFakeRepo()
	s := openStore(t, repo, t0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Sync(ctx, domain.SyncRequest{Memos: []domain.Memo{memo("m1", "a", "v1")}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, repo.writes)
}

func TestSyncConcurrentCallsAreSerialized(t *testing.T) {
	repo := newFakeRepo()
	s := openStore(t, repo, t0)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("m%02d", i)
			_, err := s.Sync(context.Background(), domain.SyncRequest{Memos: []domain.Memo{memo(id, id, id+"v1")}})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Len(t, s.Snapshot().Memos, n)
	assert.Len(t, repo.stored().Memos, n)
	assert.Equal(t, n, repo.writes)
}

func TestOpenDropsMemosShadowedByTombstones(t *testing.T) {
	repo := newFakeRepo()
	repo.snap.Memos["m1"] = memo("m1", "a", "v1")
	repo.snap.Tombstones["m1"] = domain.Tombstone{ID: "m1", DeletedAt: t0}

	s := openStore(t, repo, t0)
	snap := s.Snapshot()
	assert.NotContains(t, snap.Memos, "m1")
	assert.Contains(t, snap.Tombstones, "m1")
}

func TestOpenLoadError(t *testing.T) {
	repo := newFakeRepo()
	repo.loadErr = errors.New("no db")

	_, err := Open(context.Background(), 1, repo, zap.NewNop())
	assert.ErrorIs(t, err, ErrLoad)
}
