package dao

import (
	"context"
	"errors"
	"time"

	"github.com/haierkeys/memo-sync-service/internal/domain"
	"github.com/haierkeys/memo-sync-service/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// tokenRepository 实现 domain.TokenRepository 接口
type tokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository 创建 TokenRepository 实例
func NewTokenRepository(db *gorm.DB) domain.TokenRepository {
	return &tokenRepository{db: db}
}

// Revoke 注销令牌
func (r *tokenRepository) Revoke(ctx context.Context, jti string, uid int64, expiresAt time.Time) error {
	m := &model.RevokedToken{
		JTI:       jti,
		UID:       uid,
		ExpiresAt: expiresAt.UTC(),
		CreatedAt: time.Now().UTC(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(m).Error
}

// IsRevoked 令牌是否已注销
func (r *tokenRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var m model.RevokedToken
	err := r.db.WithContext(ctx).Select("jti").Where("jti = ?", jti).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// PurgeExpired 清理已过期的注销记录
func (r *tokenRepository) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at < ?", before.UTC()).Delete(&model.RevokedToken{})
	return res.RowsAffected, res.Error
}
