package local_fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFSSendAndDelete(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewClient(&Config{SavePath: dir, CustomPath: "memo"})
	require.NoError(t, err)

	ctx := context.Background()
	mod := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	key, err := fs.SendContent(ctx, "user_1/snapshot.json", []byte(`{"a":1}`), mod)
	require.NoError(t, err)
	assert.Equal(t, "memo/user_1/snapshot.json", key)

	full := filepath.Join(dir, "memo", "user_1", "snapshot.json")
	data, err := os.ReadFile(full)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(data))

	st, err := os.Stat(full)
	require.NoError(t, err)
	assert.True(t, st.ModTime().Equal(mod))

	require.NoError(t, fs.Delete(ctx, "user_1/snapshot.json"))
	require.NoError(t, fs.Delete(ctx, "user_1/snapshot.json"))
	_, err = os.Stat(full)
	assert.True(t, os.IsNotExist(err))
}

func TestLocalFSStaysInsideSavePath(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewClient(&Config{SavePath: dir})
	require.NoError(t, err)

	_, err = fs.SendContent(context.Background(), "../../escape.json", []byte("x"), time.Time{})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "escape.json"))
	assert.NoError(t, err)
}

func TestNewClientRequiresPath(t *testing.T) {
	_, err := NewClient(&Config{})
	assert.Error(t, err)
}
