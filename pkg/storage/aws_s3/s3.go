package aws_s3

import (
	"bytes"
	"context"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
)

type Config struct {
	Endpoint        string // Custom endpoint, e.g. MinIO // 自定义端点，例如 MinIO
	Region          string
	BucketName      string
	AccessKeyID     string
	AccessKeySecret string
	CustomPath      string
}

type S3 struct {
	S3Client *s3.Client
	Config   *Config
}

// NewClient 创建 S3 存储实例，配置 Endpoint 时使用 path-style 访问
func NewClient(ctx context.Context, conf *Config) (*S3, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(conf.AccessKeyID, conf.AccessKeySecret, "")),
		config.WithRegion(conf.Region),
	)
	if err != nil {
		return nil, errors.Wrap(err, "aws_s3")
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if conf.Endpoint != "" {
			o.UsePathStyle = true
			o.BaseEndpoint = aws.String(conf.Endpoint)
		}
	})

	return &S3{S3Client: client, Config: conf}, nil
}

func (p *S3) objectKey(fileKey string) string {
	return path.Join(p.Config.CustomPath, fileKey)
}

// SendContent 上传内容
func (p *S3) SendContent(ctx context.Context, fileKey string, content []byte, modTime time.Time) (string, error) {
	key := p.objectKey(fileKey)

	input := &s3.PutObjectInput{
		Bucket:      aws.String(p.Config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(content),
		ContentType: aws.String("application/json"),
	}
	if !modTime.IsZero() {
		input.Metadata = map[string]string{"mod-time": modTime.UTC().Format(time.RFC3339)}
	}

	if _, err := p.S3Client.PutObject(ctx, input); err != nil {
		return "", errors.Wrap(err, "aws_s3")
	}
	return key, nil
}

func (p *S3) Delete(ctx context.Context, fileKey string) error {
	_, err := p.S3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(p.Config.BucketName),
		Key:    aws.String(p.objectKey(fileKey)),
	})
	return errors.Wrap(err, "aws_s3")
}
