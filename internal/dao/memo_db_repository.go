package dao

import (
	"context"
	"fmt"

	"github.com/haierkeys/memo-sync-service/internal/domain"
	"github.com/haierkeys/memo-sync-service/internal/model"
	"github.com/haierkeys/memo-sync-service/pkg/convert"

	"gorm.io/gorm"
)

const dbBatchSize = 200

// memoDBFactory 基于 gorm 的后端，所有租户共用两张表，以 uid 区分
type memoDBFactory struct {
	db *gorm.DB
}

// NewMemoDBRepositoryFactory 创建数据库后端
func NewMemoDBRepositoryFactory(db *gorm.DB) domain.MemoRepositoryFactory {
	return &memoDBFactory{db: db}
}

func (f *memoDBFactory) ForUser(uid int64) domain.MemoRepository {
	return &memoDBRepository{db: f.db, uid: uid}
}

func (f *memoDBFactory) Name() string {
	return BackendDatabase
}

// Close 连接由调用方持有，这里不关闭
func (f *memoDBFactory) Close() error {
	return nil
}

// memoDBRepository 实现 domain.MemoRepository 接口
type memoDBRepository struct {
	db  *gorm.DB
	uid int64
}

// LoadAll 读取该用户的全部备忘录与删除标记
func (r *memoDBRepository) LoadAll(ctx context.Context) (*domain.Snapshot, error) {
	var memos []model.Memo
	if err := r.db.WithContext(ctx).Where("uid = ?", r.uid).Find(&memos).Error; err != nil {
		return nil, err
	}
	var tombstones []model.MemoTombstone
	if err := r.db.WithContext(ctx).Where("uid = ?", r.uid).Find(&tombstones).Error; err != nil {
		return nil, err
	}

	snap := domain.NewSnapshot()
	for _, row := range memos {
		var m domain.Memo
		if err := convert.Unmarshal([]byte(row.Payload), &m); err != nil {
			return nil, fmt.Errorf("decode memo %q: %w", row.MemoID, err)
		}
		m.ID = row.MemoID
		snap.Memos[row.MemoID] = m
	}
	for _, row := range tombstones {
		snap.Tombstones[row.MemoID] = domain.Tombstone{ID: row.MemoID, DeletedAt: row.DeletedAt.UTC()}
	}
	return snap, nil
}

// ReplaceAll 在一个事务中删除该用户的全部行并重新写入
func (r *memoDBRepository) ReplaceAll(ctx context.Context, snap *domain.Snapshot) error {
	memoRows := make([]model.Memo, 0, len(snap.Memos))
	for _, m := range sortedMemos(snap) {
		payload, err := convert.Marshal(m)
		if err != nil {
			return fmt.Errorf("encode memo %q: %w", m.ID, err)
		}
		memoRows = append(memoRows, model.Memo{UID: r.uid, MemoID: m.ID, Payload: string(payload)})
	}
	tombRows := make([]model.MemoTombstone, 0, len(snap.Tombstones))
	for _, t := range sortedTombstones(snap) {
		tombRows = append(tombRows, model.MemoTombstone{UID: r.uid, MemoID: t.ID, DeletedAt: t.DeletedAt.UTC()})
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("uid = ?", r.uid).Delete(&model.Memo{}).Error; err != nil {
			return err
		}
		if err := tx.Where("uid = ?", r.uid).Delete(&model.MemoTombstone{}).Error; err != nil {
			return err
		}
		if len(memoRows) > 0 {
			if err := tx.CreateInBatches(memoRows, dbBatchSize).Error; err != nil {
				return err
			}
		}
		if len(tombRows) > 0 {
			if err := tx.CreateInBatches(tombRows, dbBatchSize).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
