package service

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/haierkeys/memo-sync-service/internal/dao"
	"github.com/haierkeys/memo-sync-service/internal/domain"
	"github.com/haierkeys/memo-sync-service/internal/dto"
	"github.com/haierkeys/memo-sync-service/internal/store"
	"github.com/haierkeys/memo-sync-service/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// recordingStorager 记录写入与删除的 key
type recordingStorager struct {
	mu      sync.Mutex
	sent    map[string][]byte
	deleted []string
	failFor string
}

func (s *recordingStorager) SendContent(_ context.Context, key string, content []byte, _ time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFor != "" && filepath.Dir(key) == s.failFor {
		return "", errors.New("bucket unavailable")
	}
	if s.sent == nil {
		s.sent = make(map[string][]byte)
	}
	s.sent[key] = content
	return key, nil
}

func (s *recordingStorager) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, key)
	return nil
}

func loadedRegistry(t *testing.T, uids ...int64) *store.Registry {
	t.Helper()
	registry := store.NewRegistry(dao.NewMemoMemoryRepositoryFactory(), zap.NewNop())
	for _, uid := range uids {
		st, release, err := registry.Acquire(context.Background(), uid)
		require.NoError(t, err)
		_, err = st.Sync(context.Background(), testNormalizerRequest(`{"id":"m1"}`))
		require.NoError(t, err)
		release()
	}
	return registry
}

func testNormalizerRequest(memos ...string) domain.SyncRequest {
	req, _ := testNormalizer().Request(rawList(memos...), nil)
	return req
}

func TestExecuteBackups(t *testing.T) {
	registry := loadedRegistry(t, 1, 2, 3)
	st := &recordingStorager{}
	svc := NewBackupService(registry, st, BackupConfig{Concurrency: 2}, zap.NewNop())

	n, err := svc.ExecuteBackups(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	require.Len(t, st.sent, 3)

	for key, content := range st.sent {
		assert.Contains(t, key, "/memos-")
		var doc dto.ExportResponse
		require.NoError(t, json.Unmarshal(content, &doc))
		require.Len(t, doc.Memos, 1)
		assert.Equal(t, "m1", doc.Memos[0].ID)
	}
}

func TestExecuteBackupsKeepsNewest(t *testing.T) {
	registry := loadedRegistry(t, 1)
	st := &recordingStorager{}
	svc := NewBackupService(registry, st, BackupConfig{Keep: 2}, zap.NewNop()).(*backupService)

	stamp := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		at := stamp.Add(time.Duration(i) * time.Hour)
		svc.now = func() time.Time { return at }
		_, err := svc.ExecuteBackups(context.Background())
		require.NoError(t, err)
	}

	assert.Equal(t, []string{backupKey(1, stamp)}, st.deleted)
}

func TestExecuteBackupsReportsFailure(t *testing.T) {
	registry := loadedRegistry(t, 1, 2)
	st := &recordingStorager{failFor: "user_2"}
	svc := NewBackupService(registry, st, BackupConfig{Concurrency: 1}, zap.NewNop())

	_, err := svc.ExecuteBackups(context.Background())
	assert.Error(t, err)
}

func TestExecuteBackupsToLocalStorage(t *testing.T) {
	dir := t.TempDir()
	st, err := storage.NewClient(context.Background(), &storage.Config{Type: storage.LOCAL, SavePath: dir})
	require.NoError(t, err)

	svc := NewBackupService(loadedRegistry(t, 5), st, BackupConfig{}, zap.NewNop())
	n, err := svc.ExecuteBackups(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	matches, err := filepath.Glob(filepath.Join(dir, "user_5", "memos-*.json"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	info, err := os.Stat(matches[0])
	require.NoError(t, err)
	assert.NotZero(t, info.Size())
}
