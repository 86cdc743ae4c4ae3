// Package domain 定义领域模型和接口
package domain

import (
	"encoding/json"
	"time"
)

// Version is one entry of a memo's causal history.
// Version 备忘录历史链中的一个版本
type Version struct {
	ID        string
	Text      string
	CreatedAt time.Time
}

// Memo is a user-owned note. History is ordered oldest first and never empty once normalized.
// Memo 用户拥有的备忘录，History 按从旧到新排列，规范化后不为空
type Memo struct {
	ID        string
	Title     string
	Text      string
	CreatedAt time.Time
	UpdatedAt time.Time
	History   []Version

	// Extra keeps client fields the server does not interpret, so they survive a round trip.
	// Extra 保存服务端不解析的客户端字段，确保原样往返
	Extra map[string]json.RawMessage
}

// Tombstone records that a memo id was deleted.
// Tombstone 删除标记
type Tombstone struct {
	ID        string
	DeletedAt time.Time
}

// HistoryIDs returns the ordered version ids of the memo.
// HistoryIDs 返回历史链的版本 ID 序列
func (m *Memo) HistoryIDs() []string {
	ids := make([]string, len(m.History))
	for i, v := range m.History {
		ids[i] = v.ID
	}
	return ids
}

// Clone returns a deep copy of the memo.
// Clone 深拷贝
func (m Memo) Clone() Memo {
	out := m
	if m.History != nil {
		out.History = append([]Version(nil), m.History...)
	}
	if m.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(m.Extra))
		for k, v := range m.Extra {
			out.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return out
}

// Snapshot is the durable state of one tenant: active memos plus tombstones.
// An id is never present in both maps.
// Snapshot 单个租户的持久状态：活动备忘录与删除标记，同一 ID 不会同时出现在两者中
type Snapshot struct {
	Memos      map[string]Memo
	Tombstones map[string]Tombstone
}

func NewSnapshot() *Snapshot {
	return &Snapshot{
		Memos:      make(map[string]Memo),
		Tombstones: make(map[string]Tombstone),
	}
}

// Clone returns a deep copy of the snapshot.
// Clone 深拷贝快照
func (s *Snapshot) Clone() *Snapshot {
	out := &Snapshot{
		Memos:      make(map[string]Memo, len(s.Memos)),
		Tombstones: make(map[string]Tombstone, len(s.Tombstones)),
	}
	for id, m := range s.Memos {
		out.Memos[id] = m.Clone()
	}
	for id, t := range s.Tombstones {
		out.Tombstones[id] = t
	}
	return out
}
