package cmd

import (
	"os"
	"path/filepath"
	"testing"

	internalApp "github.com/haierkeys/memo-sync-service/internal/app"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestResolveConfigPathCreatesDefault(t *testing.T) {
	chdir(t, t.TempDir())
	configDefault = "security:\n  auth-token-key: " + defaultAuthTokenPlaceholder + "\n"

	env := &runFlags{}
	require.NoError(t, resolveConfigPath(env))
	assert.Equal(t, "config/config.yaml", env.config)

	cfg, _, err := internalApp.LoadConfig(env.config)
	require.NoError(t, err)
	assert.Len(t, cfg.Security.AuthTokenKey, 32)
	assert.NotEqual(t, defaultAuthTokenPlaceholder, cfg.Security.AuthTokenKey)
}

func TestResolveConfigPathPrefersExisting(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("{}"), 0o644))

	env := &runFlags{}
	require.NoError(t, resolveConfigPath(env))
	assert.Equal(t, "config.yaml", env.config)

	env = &runFlags{config: "custom.yaml"}
	require.NoError(t, resolveConfigPath(env))
	assert.Equal(t, "custom.yaml", env.config)
}

func TestInitStorageWithConfig(t *testing.T) {
	dir := t.TempDir()
	cfg, err := internalApp.ParseConfig([]byte("sync:\n  backend: file\n"))
	require.NoError(t, err)
	cfg.Log.File = filepath.Join(dir, "logs", "log.log")
	cfg.Database.Path = filepath.Join(dir, "db", "db.sqlite3")
	cfg.Sync.FileDir = filepath.Join(dir, "memos")

	require.NoError(t, initStorageWithConfig(cfg))
	for _, p := range []string{"logs", "db", "memos"} {
		assert.DirExists(t, filepath.Join(dir, p))
	}
}

func TestBootstrapLoggerLevel(t *testing.T) {
	assert.True(t, newBootstrapLogger(true).Core().Enabled(zapcore.DebugLevel))
	assert.False(t, newBootstrapLogger(false).Core().Enabled(zapcore.DebugLevel))
	assert.NotNil(t, BootstrapLogger())
}

// chdir changes the working directory for the duration of the test (testing.T.Chdir needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
