package service

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/haierkeys/memo-sync-service/internal/domain"
	"github.com/haierkeys/memo-sync-service/pkg/util"

	"github.com/google/uuid"
)

const defaultMemoTitle = "Untitled"

// 服务端解析的字段，其余字段原样保存在 Memo.Extra
var memoFields = map[string]bool{
	"id": true, "title": true, "text": true,
	"createdAt": true, "updatedAt": true, "history": true, "versions": true,
}

// RejectedMemo is a submitted memo that cannot be reconciled.
// RejectedMemo 无法参与裁决的提交条目
type RejectedMemo struct {
	Index  int
	Reason string
}

func (r RejectedMemo) Error() string {
	return fmt.Sprintf("memo #%d rejected: %s", r.Index, r.Reason)
}

// Normalizer turns loosely-typed client input into domain values, filling defaults.
// Normalizer 将客户端的松散输入转换为领域对象并补全默认值
type Normalizer struct {
	Now   func() time.Time
	NewID func(memoID string, pos int, text string) string
}

func NewNormalizer() *Normalizer {
	return &Normalizer{
		Now:   time.Now,
		NewID: VersionID,
	}
}

// VersionID derives the id of a version submitted without one.
// The same memo id, position and text always give the same id, so resending a memo reconciles as the same chain.
// VersionID 为缺少 id 的版本生成确定性 id，重复提交同一条目得到相同的历史链
func VersionID(memoID string, pos int, text string) string {
	name := memoID + "/" + strconv.Itoa(pos) + "/" + text
	return "v_" + uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}

// Memo normalizes the index-th submitted memo.
func (n *Normalizer) Memo(index int, raw json.RawMessage) (domain.Memo, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return domain.Memo{}, RejectedMemo{Index: index, Reason: "memo is not an object"}
	}

	id, ok := stringField(obj, "id")
	if !ok || id == "" {
		return domain.Memo{}, RejectedMemo{Index: index, Reason: "missing id"}
	}

	now := n.Now().UTC()
	m := domain.Memo{
		ID:        id,
		Title:     defaultMemoTitle,
		CreatedAt: timeField(obj, "createdAt", now),
		UpdatedAt: timeField(obj, "updatedAt", now),
	}
	if title, ok := stringField(obj, "title"); ok {
		m.Title = title
	}
	if text, ok := stringField(obj, "text"); ok {
		m.Text = text
	}

	rawHistory, ok := obj["history"]
	if !ok {
		rawHistory = obj["versions"]
	}
	var entries []json.RawMessage
	if len(rawHistory) > 0 {
		// 非数组按缺失处理
		_ = json.Unmarshal(rawHistory, &entries)
	}

	seen := make(map[string]bool, len(entries))
	for pos, entry := range entries {
		v := n.version(m.ID, pos, entry, m.Text, now)
		if seen[v.ID] {
			continue
		}
		seen[v.ID] = true
		m.History = append(m.History, v)
	}
	if len(m.History) == 0 {
		m.History = []domain.Version{{ID: n.NewID(m.ID, 0, m.Text), Text: m.Text, CreatedAt: now}}
	}

	for k, v := range obj {
		if memoFields[k] {
			continue
		}
		if m.Extra == nil {
			m.Extra = make(map[string]json.RawMessage)
		}
		m.Extra[k] = v
	}
	return m, nil
}

func (n *Normalizer) version(memoID string, pos int, raw json.RawMessage, fallbackText string, now time.Time) domain.Version {
	var obj map[string]json.RawMessage
	_ = json.Unmarshal(raw, &obj)

	v := domain.Version{Text: fallbackText, CreatedAt: timeField(obj, "createdAt", now)}
	if text, ok := stringField(obj, "text"); ok {
		v.Text = text
	}
	if id, ok := stringField(obj, "id"); ok && id != "" {
		v.ID = id
	} else {
		v.ID = n.NewID(memoID, pos, v.Text)
	}
	return v
}

// Deletion normalizes one deletion entry. Entries without a string id are skipped.
// Deletion 规范化删除条目，没有字符串 id 的条目返回 false
func (n *Normalizer) Deletion(raw json.RawMessage) (domain.Deletion, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return domain.Deletion{}, false
	}
	id, ok := stringField(obj, "id")
	if !ok || id == "" {
		return domain.Deletion{}, false
	}

	d := domain.Deletion{ID: id}
	for _, key := range []string{"deletedAt", "deleted_at"} {
		if s, ok := stringField(obj, key); ok {
			if t, ok := util.ParseTime(s); ok {
				d.DeletedAt = &t
				break
			}
		}
	}
	return d, true
}

// Request normalizes a whole push. Rejected memos are returned separately and never abort the request.
// Request 规范化整个请求，被拒绝的条目单独返回，不会中断请求
func (n *Normalizer) Request(memos, deletions []json.RawMessage) (domain.SyncRequest, []RejectedMemo) {
	req := domain.SyncRequest{
		Memos:     make([]domain.Memo, 0, len(memos)),
		Deletions: make([]domain.Deletion, 0, len(deletions)),
	}
	var rejected []RejectedMemo

	for _, raw := range deletions {
		if d, ok := n.Deletion(raw); ok {
			req.Deletions = append(req.Deletions, d)
		}
	}
	for i, raw := range memos {
		m, err := n.Memo(i, raw)
		if err != nil {
			rejected = append(rejected, err.(RejectedMemo))
			continue
		}
		req.Memos = append(req.Memos, m)
	}
	return req, rejected
}

func stringField(obj map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := obj[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func timeField(obj map[string]json.RawMessage, key string, fallback time.Time) time.Time {
	if s, ok := stringField(obj, key); ok {
		if t, ok := util.ParseTime(s); ok {
			return t
		}
	}
	return fallback
}
