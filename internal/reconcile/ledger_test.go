package reconcile

import (
	"testing"
	"time"

	"github.com/haierkeys/memo-sync-service/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestLedgerRecordDeletion(t *testing.T) {
	now := t0.Add(time.Hour)
	client := t0.Add(30 * time.Minute)

	snap := domain.NewSnapshot()
	snap.Memos["m1"] = memoWithChain("m1", "a", "v1")
	l := NewLedger(snap)

	// 无时间戳：使用服务器时间并移出活动集合
	tomb, ok := l.RecordDeletion(domain.Deletion{ID: "m1"}, now)
	assert.True(t, ok)
	assert.True(t, tomb.DeletedAt.Equal(now))
	assert.NotContains(t, snap.Memos, "m1")
	assert.Contains(t, snap.Tombstones, "m1")

	// 再次删除且无时间戳：保留原时间
	tomb, ok = l.RecordDeletion(domain.Deletion{ID: "m1"}, now.Add(time.Hour))
	assert.True(t, ok)
	assert.True(t, tomb.DeletedAt.Equal(now))

	// 提供新时间：覆盖
	tomb, _ = l.RecordDeletion(domain.Deletion{ID: "m1", DeletedAt: &client}, now)
	assert.True(t, tomb.DeletedAt.Equal(client))
	assert.True(t, l.Lookup("m1").DeletedAt.Equal(client))
}

func TestLedgerIgnoresMissingID(t *testing.T) {
	snap := domain.NewSnapshot()
	l := NewLedger(snap)

	_, ok := l.RecordDeletion(domain.Deletion{}, t0)
	assert.False(t, ok)
	assert.Empty(t, snap.Tombstones)
}

func TestLedgerUnknownIDStillTombstoned(t *testing.T) {
	snap := domain.NewSnapshot()
	l := NewLedger(snap)

	_, ok := l.RecordDeletion(domain.Deletion{ID: "never-seen"}, t0)
	assert.True(t, ok)
	assert.NotNil(t, l.Lookup("never-seen"))
	assert.Nil(t, l.Lookup("other"))
}
