package reconcile

import (
	"time"

	"github.com/haierkeys/memo-sync-service/internal/domain"
)

// Ledger applies deletions to a snapshot it does not own.
// Ledger 在快照上执行删除操作
type Ledger struct {
	snap *domain.Snapshot
}

func NewLedger(snap *domain.Snapshot) *Ledger {
	return &Ledger{snap: snap}
}

// RecordDeletion tombstones d.ID and drops it from the active set.
// A missing DeletedAt means now, unless the id is already tombstoned, in which case the existing instant is kept.
// It reports false when the deletion has no id.
// RecordDeletion 为 d.ID 记录删除标记并从活动集合中移除；
// 未提供时间时使用 now，若已存在删除标记则保留原时间；没有 ID 时返回 false
func (l *Ledger) RecordDeletion(d domain.Deletion, now time.Time) (domain.Tombstone, bool) {
	if d.ID == "" {
		return domain.Tombstone{}, false
	}

	delete(l.snap.Memos, d.ID)

	existing, tombstoned := l.snap.Tombstones[d.ID]
	var t domain.Tombstone
	switch {
	case d.DeletedAt != nil:
		t = domain.Tombstone{ID: d.ID, DeletedAt: d.DeletedAt.UTC()}
	case tombstoned:
		t = existing
	default:
		t = domain.Tombstone{ID: d.ID, DeletedAt: now.UTC()}
	}
	l.snap.Tombstones[d.ID] = t
	return t, true
}

// Lookup returns the tombstone of id, or nil.
func (l *Ledger) Lookup(id string) *domain.Tombstone {
	t, ok := l.snap.Tombstones[id]
	if !ok {
		return nil
	}
	return &t
}
