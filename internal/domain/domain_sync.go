package domain

import "time"

// Status is the per-memo outcome of a sync.
// Status 单条备忘录的同步结果
type Status string

const (
	// StatusAccepted the server now holds the client's memo (or already held an identical one)
	StatusAccepted Status = "accepted"
	// StatusUpdate the server holds a newer descendant of the client's memo
	StatusUpdate Status = "update"
	// StatusConflict the histories diverged; the server copy is returned untouched
	StatusConflict Status = "conflict"
	// StatusDeleted the id is tombstoned
	StatusDeleted Status = "deleted"
)

// Deletion is a client-reported deletion. DeletedAt is nil when the client gave no usable timestamp.
// Deletion 客户端上报的删除，未提供有效时间时 DeletedAt 为 nil
type Deletion struct {
	ID        string
	DeletedAt *time.Time
}

// SyncRequest is one normalized client push.
// SyncRequest 规范化后的客户端同步请求
type SyncRequest struct {
	Memos     []Memo
	Deletions []Deletion
}

// Outcome is the result for one pushed memo. Memo is set for accepted/update/conflict, DeletedAt for deleted.
// Outcome 单条备忘录的结果
type Outcome struct {
	ID        string
	Status    Status
	Memo      *Memo
	DeletedAt *time.Time
}

// SyncResult is everything returned to the client.
// SyncResult 返回给客户端的全部内容
type SyncResult struct {
	Outcomes      []Outcome
	ServerMemos   []Memo
	ServerDeleted []Tombstone
}
