// Package storage writes exported snapshot files to local disk or S3-compatible object storage.
// storage 将导出的快照文件写入本地磁盘或兼容 S3 的对象存储
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/haierkeys/memo-sync-service/pkg/storage/aws_s3"
	"github.com/haierkeys/memo-sync-service/pkg/storage/local_fs"
)

type Type = string

const LOCAL Type = "localfs"
const S3 Type = "s3"

// Config Unified storage configuration
// Config 统一的存储配置
type Config struct {
	Type       Type   `yaml:"type" default:"localfs"`
	CustomPath string `yaml:"custom-path"`

	// S3 / MinIO
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region" default:"us-east-1"`
	BucketName      string `yaml:"bucket-name"`
	AccessKeyID     string `yaml:"access-key-id"`
	AccessKeySecret string `yaml:"access-key-secret"`

	// Local FS
	SavePath string `yaml:"save-path" default:"storage/backup"`
}

type Storager interface {
	SendContent(ctx context.Context, pathKey string, content []byte, modTime time.Time) (string, error)
	Delete(ctx context.Context, pathKey string) error
}

var (
	_ Storager = (*local_fs.LocalFS)(nil)
	_ Storager = (*aws_s3.S3)(nil)
)

func NewClient(ctx context.Context, config *Config) (Storager, error) {
	if config == nil {
		return nil, fmt.Errorf("storage: nil config")
	}

	switch config.Type {
	case LOCAL:
		return local_fs.NewClient(&local_fs.Config{
			SavePath:   config.SavePath,
			CustomPath: config.CustomPath,
		})
	case S3:
		return aws_s3.NewClient(ctx, &aws_s3.Config{
			Endpoint:        config.Endpoint,
			Region:          config.Region,
			BucketName:      config.BucketName,
			AccessKeyID:     config.AccessKeyID,
			AccessKeySecret: config.AccessKeySecret,
			CustomPath:      config.CustomPath,
		})
	}
	return nil, fmt.Errorf("storage: unsupported type %q", config.Type)
}
