package dao

import (
	"context"
	"testing"
	"time"

	"github.com/haierkeys/memo-sync-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	db, err := NewDBEngineWithConfig(newTestDB(t), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = CloseDB(db) })

	repo := NewUserRepository(db)

	_, err = repo.GetByUsername(ctx, "alice")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	created, err := repo.Create(ctx, &domain.User{Username: "alice", Password: "hash"})
	require.NoError(t, err)
	assert.NotZero(t, created.UID)
	assert.False(t, created.CreatedAt.IsZero())

	byName, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.UID, byName.UID)
	assert.Equal(t, "hash", byName.Password)

	byUID, err := repo.GetByUID(ctx, created.UID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byUID.Username)

	_, err = repo.Create(ctx, &domain.User{Username: "alice", Password: "other"})
	assert.Error(t, err, "username is unique")

	_, err = repo.GetByUID(ctx, created.UID+100)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTokenRepository(t *testing.T) {
	ctx := context.Background()
	db, err := NewDBEngineWithConfig(newTestDB(t), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = CloseDB(db) })

	repo := NewTokenRepository(db)
	now := time.Now()

	revoked, err := repo.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, repo.Revoke(ctx, "jti-1", 1, now.Add(time.Hour)))
	require.NoError(t, repo.Revoke(ctx, "jti-1", 1, now.Add(time.Hour)), "revoking twice is a no-op")
	require.NoError(t, repo.Revoke(ctx, "jti-2", 1, now.Add(-time.Hour)))

	revoked, err = repo.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	n, err := repo.PurgeExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	revoked, err = repo.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
	revoked, err = repo.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
}
