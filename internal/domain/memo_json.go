package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Wire field names. "versions" is accepted as an alias of "history" on input.
const (
	fieldID        = "id"
	fieldTitle     = "title"
	fieldText      = "text"
	fieldCreatedAt = "createdAt"
	fieldUpdatedAt = "updatedAt"
	fieldHistory   = "history"
	fieldVersions  = "versions"
)

var memoKnownFields = map[string]bool{
	fieldID: true, fieldTitle: true, fieldText: true,
	fieldCreatedAt: true, fieldUpdatedAt: true, fieldHistory: true, fieldVersions: true,
}

type versionJSON struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

func (v Version) MarshalJSON() ([]byte, error) {
	return json.Marshal(versionJSON{ID: v.ID, Text: v.Text, CreatedAt: v.CreatedAt.UTC()})
}

func (v *Version) UnmarshalJSON(data []byte) error {
	var raw versionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = Version{ID: raw.ID, Text: raw.Text, CreatedAt: raw.CreatedAt}
	return nil
}

// MarshalJSON writes the canonical memo object with Extra fields merged in.
// MarshalJSON 输出规范的备忘录对象，并合并 Extra 字段
func (m Memo) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Extra)+6)
	for k, v := range m.Extra {
		if !memoKnownFields[k] {
			out[k] = v
		}
	}
	history := m.History
	if history == nil {
		history = []Version{}
	}
	out[fieldID] = m.ID
	out[fieldTitle] = m.Title
	out[fieldText] = m.Text
	out[fieldCreatedAt] = m.CreatedAt.UTC()
	out[fieldUpdatedAt] = m.UpdatedAt.UTC()
	out[fieldHistory] = history
	return json.Marshal(out)
}

// UnmarshalJSON reads a memo written by MarshalJSON. Loosely-typed client input goes through the normalizer instead.
// UnmarshalJSON 读取 MarshalJSON 写出的备忘录，客户端的松散输入由规范化流程处理
func (m *Memo) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var out Memo
	decode := func(key string, dst any) error {
		if v, ok := raw[key]; ok {
			if err := json.Unmarshal(v, dst); err != nil {
				return fmt.Errorf("memo field %s: %w", key, err)
			}
		}
		return nil
	}
	for key, dst := range map[string]any{
		fieldID: &out.ID, fieldTitle: &out.Title, fieldText: &out.Text,
		fieldCreatedAt: &out.CreatedAt, fieldUpdatedAt: &out.UpdatedAt,
	} {
		if err := decode(key, dst); err != nil {
			return err
		}
	}
	historyKey := fieldHistory
	if _, ok := raw[fieldHistory]; !ok {
		historyKey = fieldVersions
	}
	if err := decode(historyKey, &out.History); err != nil {
		return err
	}

	for k, v := range raw {
		if memoKnownFields[k] {
			continue
		}
		if out.Extra == nil {
			out.Extra = make(map[string]json.RawMessage)
		}
		out.Extra[k] = v
	}

	*m = out
	return nil
}

type tombstoneJSON struct {
	ID        string    `json:"id"`
	DeletedAt time.Time `json:"deletedAt"`
}

func (t Tombstone) MarshalJSON() ([]byte, error) {
	return json.Marshal(tombstoneJSON{ID: t.ID, DeletedAt: t.DeletedAt.UTC()})
}

func (t *Tombstone) UnmarshalJSON(data []byte) error {
	var raw tombstoneJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = Tombstone{ID: raw.ID, DeletedAt: raw.DeletedAt}
	return nil
}
