package service

import (
	"encoding/json"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func testNormalizer() *Normalizer {
	return &Normalizer{
		Now: func() time.Time { return t0 },
		NewID: func(_ string, pos int, _ string) string {
			return "v_gen" + strconv.Itoa(pos)
		},
	}
}

func TestNormalizeMemoDefaults(t *testing.T) {
	m, err := testNormalizer().Memo(0, json.RawMessage(`{"id":"m1"}`))
	require.NoError(t, err)

	assert.Equal(t, "m1", m.ID)
	assert.Equal(t, "Untitled", m.Title)
	assert.Equal(t, "", m.Text)
	assert.Equal(t, t0, m.CreatedAt)
	assert.Equal(t, t0, m.UpdatedAt)
	require.Len(t, m.History, 1)
	assert.Equal(t, "v_gen0", m.History[0].ID)
	assert.Nil(t, m.Extra)
}

func TestNormalizeMemoFull(t *testing.T) {
	raw := `{
		"id": "m1", "title": "Plan", "text": "b",
		"createdAt": "2024-01-01T00:00:00Z", "updatedAt": "2024-01-02T00:00:00.5+02:00",
		"history": [{"id":"v1","text":"a","createdAt":"2024-01-01T00:00:00Z"}, {"id":"v2"}],
		"pinned": true, "tags": ["x"]
	}`
	m, err := testNormalizer().Memo(0, json.RawMessage(raw))
	require.NoError(t, err)

	assert.Equal(t, "Plan", m.Title)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), m.CreatedAt)
	assert.Equal(t, time.Date(2024, 1, 1, 22, 0, 0, 500000000, time.UTC), m.UpdatedAt)
	assert.Equal(t, []string{"v1", "v2"}, m.HistoryIDs())
	assert.Equal(t, "a", m.History[0].Text)
	assert.Equal(t, "b", m.History[1].Text, "missing version text falls back to the memo text")
	assert.Equal(t, t0, m.History[1].CreatedAt)
	assert.JSONEq(t, `true`, string(m.Extra["pinned"]))
	assert.JSONEq(t, `["x"]`, string(m.Extra["tags"]))
}

func TestNormalizeMemoVersionsAlias(t *testing.T) {
	m, err := testNormalizer().Memo(0, json.RawMessage(`{"id":"m1","versions":[{"id":"v1"}]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"v1"}, m.HistoryIDs())
	assert.NotContains(t, m.Extra, "versions")
}

func TestNormalizeMemoHistoryRepairs(t *testing.T) {
	raw := `{"id":"m1","text":"t","history":[{"id":"v1"},{"text":"no id"},{"id":"v1","text":"dup"},"junk",{"id":7}]}`
	m, err := testNormalizer().Memo(0, json.RawMessage(raw))
	require.NoError(t, err)

	assert.Equal(t, []string{"v1", "v_gen1", "v_gen3", "v_gen4"}, m.HistoryIDs())
	assert.Equal(t, "t", m.History[0].Text)
	assert.Equal(t, "no id", m.History[1].Text)
}

func TestNormalizeMemoWrongTypes(t *testing.T) {
	raw := `{"id":"m1","title":5,"text":["x"],"createdAt":"yesterday","history":"v1"}`
	m, err := testNormalizer().Memo(0, json.RawMessage(raw))
	require.NoError(t, err)

	assert.Equal(t, "Untitled", m.Title)
	assert.Equal(t, "", m.Text)
	assert.Equal(t, t0, m.CreatedAt)
	assert.Len(t, m.History, 1)
}

func TestNormalizeMemoRejected(t *testing.T) {
	n := testNormalizer()
	for _, raw := range []string{`{}`, `{"id":""}`, `{"id":12}`, `"m1"`, `null`, `[1]`} {
		_, err := n.Memo(3, json.RawMessage(raw))
		var rejected RejectedMemo
		require.ErrorAs(t, err, &rejected, raw)
		assert.Equal(t, 3, rejected.Index)
	}
}

func TestNormalizeDeletion(t *testing.T) {
	n := testNormalizer()

	d, ok := n.Deletion(json.RawMessage(`{"id":"m1","deletedAt":"2024-02-01T00:00:00Z"}`))
	require.True(t, ok)
	require.NotNil(t, d.DeletedAt)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), *d.DeletedAt)

	d, ok = n.Deletion(json.RawMessage(`{"id":"m2","deleted_at":"2024-02-02T00:00:00Z"}`))
	require.True(t, ok)
	require.NotNil(t, d.DeletedAt)
	assert.Equal(t, 2, d.DeletedAt.Day())

	d, ok = n.Deletion(json.RawMessage(`{"id":"m3","deletedAt":"soon"}`))
	require.True(t, ok)
	assert.Nil(t, d.DeletedAt)

	for _, raw := range []string{`{}`, `{"id":""}`, `{"id":1}`, `"m1"`} {
		_, ok := n.Deletion(json.RawMessage(raw))
		assert.False(t, ok, raw)
	}
}

func TestNormalizeRequest(t *testing.T) {
	memos := []json.RawMessage{
		json.RawMessage(`{"id":"a"}`),
		json.RawMessage(`{"title":"no id"}`),
		json.RawMessage(`{"id":"b"}`),
	}
	deletions := []json.RawMessage{
		json.RawMessage(`{"id":"c"}`),
		json.RawMessage(`{"deletedAt":"2024-01-01T00:00:00Z"}`),
	}

	req, rejected := testNormalizer().Request(memos, deletions)

	require.Len(t, req.Memos, 2)
	assert.Equal(t, "a", req.Memos[0].ID)
	assert.Equal(t, "b", req.Memos[1].ID)
	require.Len(t, req.Deletions, 1)
	assert.Equal(t, "c", req.Deletions[0].ID)
	require.Len(t, rejected, 1)
	assert.Equal(t, 1, rejected[0].Index)
}

func TestVersionIDStable(t *testing.T) {
	n := NewNormalizer()
	raw := json.RawMessage(`{"id":"m1","text":"a","history":[{"id":"v1","text":"a"},{"text":"b"}]}`)

	first, err := n.Memo(0, raw)
	require.NoError(t, err)
	second, err := n.Memo(0, raw)
	require.NoError(t, err)
	assert.Equal(t, first.HistoryIDs(), second.HistoryIDs())
	assert.Equal(t, "v1", first.History[0].ID)
	assert.Equal(t, VersionID("m1", 1, "b"), first.History[1].ID)

	assert.Equal(t, VersionID("m1", 0, "a"), VersionID("m1", 0, "a"))
	assert.NotEqual(t, VersionID("m1", 0, "a"), VersionID("m1", 0, "b"))
	assert.NotEqual(t, VersionID("m1", 0, "a"), VersionID("m2", 0, "a"))
	assert.NotEqual(t, VersionID("m1", 0, "a"), VersionID("m1", 1, "a"))
}
