package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"

	"resume-processor/internal/config"
	applog "resume-processor/internal/logger"
)

// ObjectStorage 归档用对象存储接口
type ObjectStorage interface {
	// ArchiveOriginal 归档原始简历文件，返回对象键
	ArchiveOriginal(ctx context.Context, fileName string, reader io.Reader, fileSize int64) (string, error)

	// ArchiveParsedRecord 归档解析结果JSON，返回对象键
	ArchiveParsedRecord(ctx context.Context, fileName string, recordJSON []byte) (string, error)

	// GetOriginal 下载归档的原始文件
	GetOriginal(ctx context.Context, objectKey string) ([]byte, error)

	// GetParsedRecord 下载归档的解析结果
	GetParsedRecord(ctx context.Context, objectKey string) ([]byte, error)
}

// 确保MinIO实现了ObjectStorage接口
var _ ObjectStorage = (*MinIO)(nil)

// MinIO 基于MinIO的归档存储
// 原始文件与解析结果分桶存放，对象键带随机UUID避免同名覆盖
type MinIO struct {
	client         *minio.Client
	originalBucket string
	parsedBucket   string
	logger         zerolog.Logger
}

// NewMinIO 创建MinIO归档存储并确保存储桶存在
func NewMinIO(ctx context.Context, cfg *config.MinIOConfig) (*MinIO, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MinIO配置不能为空")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("创建MinIO客户端失败: %w", err)
	}

	m := &MinIO{
		client:         client,
		originalBucket: cfg.OriginalsBucket,
		parsedBucket:   cfg.ParsedBucket,
		logger:         applog.Logger.With().Str("component", "minio").Logger(),
	}

	for _, bucket := range []string{m.originalBucket, m.parsedBucket} {
		if err := m.ensureBucketExists(ctx, bucket); err != nil {
			return nil, fmt.Errorf("确保存储桶 %s 存在失败: %w", bucket, err)
		}
	}

	m.logger.Info().
		Str("endpoint", cfg.Endpoint).
		Str("originals_bucket", m.originalBucket).
		Str("parsed_bucket", m.parsedBucket).
		Msg("MinIO归档存储初始化完成")
	return m, nil
}

// ensureBucketExists 确保存储桶存在，不存在则创建
func (m *MinIO) ensureBucketExists(ctx context.Context, bucketName string) error {
	exists, err := m.client.BucketExists(ctx, bucketName)
	if err != nil {
		return fmt.Errorf("检查存储桶 %s 是否存在时出错: %w", bucketName, err)
	}
	if !exists {
		if err := m.client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("创建存储桶 %s 失败: %w", bucketName, err)
		}
		m.logger.Info().Str("bucket", bucketName).Msg("存储桶已创建")
	}
	return nil
}

// objectKeyFor 生成对象键: <日期>/<uuid>/<文件名>
// UUID段保证同名文件互不覆盖
func objectKeyFor(fileName string) string {
	return fmt.Sprintf("%s/%s/%s",
		time.Now().UTC().Format("2006-01-02"),
		uuid.NewString(),
		filepath.Base(fileName))
}

// ArchiveOriginal 归档原始简历文件到originalsBucket
func (m *MinIO) ArchiveOriginal(ctx context.Context, fileName string, reader io.Reader, fileSize int64) (string, error) {
	objectKey := objectKeyFor(fileName)
	contentType := contentTypeFor(filepath.Ext(fileName))

	_, err := m.client.PutObject(ctx, m.originalBucket, objectKey, reader, fileSize,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("上传对象 %s/%s 失败: %w", m.originalBucket, objectKey, err)
	}

	m.logger.Debug().
		Str("bucket", m.originalBucket).
		Str("object", objectKey).
		Int64("size", fileSize).
		Msg("原始文件已归档")
	return objectKey, nil
}

// ArchiveParsedRecord 归档解析结果JSON到parsedBucket
func (m *MinIO) ArchiveParsedRecord(ctx context.Context, fileName string, recordJSON []byte) (string, error) {
	objectKey := objectKeyFor(fileName)

	_, err := m.client.PutObject(ctx, m.parsedBucket, objectKey,
		bytes.NewReader(recordJSON), int64(len(recordJSON)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return "", fmt.Errorf("上传对象 %s/%s 失败: %w", m.parsedBucket, objectKey, err)
	}

	m.logger.Debug().
		Str("bucket", m.parsedBucket).
		Str("object", objectKey).
		Int("size", len(recordJSON)).
		Msg("解析结果已归档")
	return objectKey, nil
}

// GetOriginal 下载归档的原始文件
func (m *MinIO) GetOriginal(ctx context.Context, objectKey string) ([]byte, error) {
	return m.download(ctx, m.originalBucket, objectKey)
}

// GetParsedRecord 下载归档的解析结果
func (m *MinIO) GetParsedRecord(ctx context.Context, objectKey string) ([]byte, error) {
	return m.download(ctx, m.parsedBucket, objectKey)
}

func (m *MinIO) download(ctx context.Context, bucketName, objectKey string) ([]byte, error) {
	obj, err := m.client.GetObject(ctx, bucketName, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("获取对象 %s/%s 失败: %w", bucketName, objectKey, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("读取对象 %s/%s 数据失败: %w", bucketName, objectKey, err)
	}
	return data, nil
}

// contentTypeFor 根据扩展名返回内容类型
func contentTypeFor(ext string) string {
	switch strings.ToLower(ext) {
	case ".pdf":
		return "application/pdf"
	case ".txt":
		return "text/plain"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
