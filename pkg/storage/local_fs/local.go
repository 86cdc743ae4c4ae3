package local_fs

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/haierkeys/memo-sync-service/pkg/fileurl"
)

type Config struct {
	SavePath   string
	CustomPath string
}

type LocalFS struct {
	Config *Config
}

func NewClient(cf *Config) (*LocalFS, error) {
	if cf.SavePath == "" {
		return nil, fmt.Errorf("local_fs: save path is empty")
	}
	return &LocalFS{Config: cf}, nil
}

// fullPath 清理键，保证结果位于保存目录之内
func (p *LocalFS) fullPath(pathKey string) string {
	key := path.Clean("/" + path.Join(p.Config.CustomPath, pathKey))
	return filepath.Join(p.Config.SavePath, filepath.FromSlash(key))
}

// SendContent 写入内容，返回相对保存目录的键
func (p *LocalFS) SendContent(_ context.Context, pathKey string, content []byte, modTime time.Time) (string, error) {
	dst := p.fullPath(pathKey)
	if err := fileurl.WriteFileAtomic(dst, content, 0o644); err != nil {
		return "", fmt.Errorf("local_fs: %w", err)
	}
	if !modTime.IsZero() {
		_ = os.Chtimes(dst, modTime, modTime)
	}
	return path.Join(p.Config.CustomPath, pathKey), nil
}

func (p *LocalFS) Delete(_ context.Context, pathKey string) error {
	if err := os.Remove(p.fullPath(pathKey)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("local_fs: %w", err)
	}
	return nil
}
