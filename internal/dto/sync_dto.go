// Package dto Defines data transfer objects (request parameters and response structs)
// Package dto 定义数据传输对象（请求参数和响应结构体）
package dto

import (
	"encoding/json"
	"time"

	"github.com/haierkeys/memo-sync-service/internal/domain"
)

// SyncRequest Sync request body. Entries stay raw until the normalizer has checked them.
// SyncRequest 同步请求体，条目在规范化前保持原始 JSON
type SyncRequest struct {
	Memos        []json.RawMessage `json:"memos"`        // Client memos // 客户端备忘录
	DeletedMemos []json.RawMessage `json:"deletedMemos"` // Client deletions {id, deletedAt?} // 客户端删除记录
}

// SyncOutcomeDTO Per-memo sync result
// SyncOutcomeDTO 单条备忘录的同步结果
type SyncOutcomeDTO struct {
	ID        string       `json:"id"`                  // Memo ID // 备忘录 ID
	Status    string       `json:"status"`              // accepted | update | conflict | deleted
	Memo      *domain.Memo `json:"memo,omitempty"`      // Canonical server copy // 服务端规范副本
	DeletedAt *time.Time   `json:"deletedAt,omitempty"` // Tombstone time // 删除时间
}

// RejectedMemoDTO A submitted memo the server could not accept
// RejectedMemoDTO 无法处理的提交条目
type RejectedMemoDTO struct {
	Index  int    `json:"index"`  // Position in memos // 在 memos 中的位置
	Reason string `json:"reason"` // Reason // 原因
}

// SyncResponse Sync response body
// SyncResponse 同步响应体
type SyncResponse struct {
	Results       []SyncOutcomeDTO   `json:"results"`            // One per accepted submission // 每条提交一个结果
	ServerMemos   []domain.Memo      `json:"serverMemos"`        // Memos the client did not send // 客户端未提交的备忘录
	ServerDeleted []domain.Tombstone `json:"serverDeleted"`      // Tombstones the client did not send // 客户端未提交的删除标记
	Rejected      []RejectedMemoDTO  `json:"rejected,omitempty"` // Skipped submissions // 被跳过的条目
}

// ExportResponse Full snapshot download
// ExportResponse 完整快照导出
type ExportResponse struct {
	Memos        []domain.Memo      `json:"memos"`        // Active memos // 活动备忘录
	DeletedMemos []domain.Tombstone `json:"deletedMemos"` // Tombstones // 删除标记
	ExportedAt   time.Time          `json:"exportedAt"`   // Export time // 导出时间
}
