package dao

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/haierkeys/memo-sync-service/internal/domain"
	"github.com/haierkeys/memo-sync-service/pkg/fileurl"
)

// memoFileFactory 每个租户一个 JSON 文件
type memoFileFactory struct {
	dir string
}

// NewMemoFileRepositoryFactory 创建文件后端，dir 为空时报错
func NewMemoFileRepositoryFactory(dir string) (domain.MemoRepositoryFactory, error) {
	if dir == "" {
		return nil, errors.New("file backend: dir is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("file backend: %w", err)
	}
	return &memoFileFactory{dir: dir}, nil
}

func (f *memoFileFactory) ForUser(uid int64) domain.MemoRepository {
	return &memoFileRepository{path: filepath.Join(f.dir, "user_"+strconv.FormatInt(uid, 10)+".json")}
}

func (f *memoFileFactory) Name() string {
	return BackendFile
}

func (f *memoFileFactory) Close() error {
	return nil
}

// memoFileRepository 写入临时文件后原子重命名，崩溃时旧文件保持完整
type memoFileRepository struct {
	path string
}

func (r *memoFileRepository) LoadAll(_ context.Context) (*domain.Snapshot, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return domain.NewSnapshot(), nil
	}
	if err != nil {
		return nil, err
	}
	snap, err := decodeSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.path, err)
	}
	return snap, nil
}

func (r *memoFileRepository) ReplaceAll(ctx context.Context, snap *domain.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}
	return fileurl.WriteFileAtomic(r.path, data, 0o600)
}
