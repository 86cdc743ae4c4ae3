package dao

import (
	"sort"

	"github.com/haierkeys/memo-sync-service/internal/domain"
	"github.com/haierkeys/memo-sync-service/pkg/convert"
)

// snapshotDocument 文件与 Redis 后端使用的快照文档
type snapshotDocument struct {
	Memos      []domain.Memo      `json:"memos"`
	Tombstones []domain.Tombstone `json:"deletedMemos"`
}

func encodeSnapshot(snap *domain.Snapshot) ([]byte, error) {
	doc := snapshotDocument{
		Memos:      sortedMemos(snap),
		Tombstones: sortedTombstones(snap),
	}
	return convert.Marshal(doc)
}

func decodeSnapshot(data []byte) (*domain.Snapshot, error) {
	var doc snapshotDocument
	if err := convert.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	snap := domain.NewSnapshot()
	for _, m := range doc.Memos {
		snap.Memos[m.ID] = m
	}
	for _, t := range doc.Tombstones {
		snap.Tombstones[t.ID] = t
	}
	return snap, nil
}

func sortedMemos(snap *domain.Snapshot) []domain.Memo {
	out := make([]domain.Memo, 0, len(snap.Memos))
	for _, m := range snap.Memos {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortedTombstones(snap *domain.Snapshot) []domain.Tombstone {
	out := make([]domain.Tombstone, 0, len(snap.Tombstones))
	for _, t := range snap.Tombstones {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
