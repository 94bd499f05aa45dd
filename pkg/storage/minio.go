package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/Samikshyapaudel0/complanify-cms/config"
)

// Object 待写入的文件
type Object struct {
	Filename    string // 原始文件名，仅用于取扩展名
	Size        int64
	ContentType string
	Body        io.Reader
}

// BlobStore 附件存储能力
// Store 返回的 key 即投诉记录中的 file_path
type BlobStore interface {
	Store(ctx context.Context, folder string, obj Object) (string, error)
	PresignedURL(ctx context.Context, key string) (string, error)
	Remove(ctx context.Context, key string) error
}

// MinIOStore 基于 MinIO 的 BlobStore 实现
type MinIOStore struct {
	client     *minio.Client
	bucketName string
	presignTTL time.Duration
	logger     *zap.Logger
}

// NewMinIOStore 连接 MinIO，bucket 不存在时自动创建
func NewMinIOStore(ctx context.Context, cfg *config.StorageConfig, logger *zap.Logger) (*MinIOStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("创建 MinIO 客户端失败: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("检查 bucket 失败: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("创建 bucket 失败: %w", err)
		}
		logger.Info("已创建附件 bucket", zap.String("bucket", cfg.BucketName))
	}

	ttl := cfg.PresignTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	logger.Info("MinIO 连接成功", zap.String("endpoint", cfg.Endpoint), zap.String("bucket", cfg.BucketName))

	return &MinIOStore{
		client:     client,
		bucketName: cfg.BucketName,
		presignTTL: ttl,
		logger:     logger,
	}, nil
}

// Store 上传对象，返回对象 key
func (s *MinIOStore) Store(ctx context.Context, folder string, obj Object) (string, error) {
	key := ObjectKey(folder, obj.Filename)

	contentType := obj.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if _, err := s.client.PutObject(ctx, s.bucketName, key, obj.Body, obj.Size, minio.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		return "", fmt.Errorf("上传附件失败: %w", err)
	}

	return key, nil
}

// PresignedURL 生成限时下载链接
func (s *MinIOStore) PresignedURL(ctx context.Context, key string) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucketName, key, s.presignTTL, nil)
	if err != nil {
		return "", fmt.Errorf("生成下载链接失败: %w", err)
	}
	return u.String(), nil
}

// Remove 删除对象，对象不存在视为成功
func (s *MinIOStore) Remove(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucketName, key, minio.RemoveObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil
		}
		return fmt.Errorf("删除附件失败: %w", err)
	}
	return nil
}

// ObjectKey 生成 <folder>/<uuid><ext> 形式的对象 key
func ObjectKey(folder, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join(folder, uuid.New().String()+ext)
}
