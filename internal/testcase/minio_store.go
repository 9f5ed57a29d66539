package testcase

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/hiturf/mcp-oi-assistant/internal/constants"
	"github.com/hiturf/mcp-oi-assistant/internal/model"
	"github.com/hiturf/mcp-oi-assistant/pkg/errors"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// MinioStore MinIO对象存储后端：对象名为 <id>.in / <id>.out
type MinioStore struct {
	client  *minio.Client
	bucket  string
	timeout time.Duration
}

// MinioOptions MinIO连接参数
type MinioOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

// NewMinioStore 创建MinIO测试用例存储
func NewMinioStore(opts MinioOptions) (*MinioStore, error) {
	if opts.Endpoint == "" || opts.Bucket == "" {
		return nil, errors.NewConfigurationError("testcase.minio", "endpoint 与 bucket 不能为空")
	}
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, errors.NewConfigurationError("testcase.minio", fmt.Sprintf("连接失败: %v", err))
	}
	return &MinioStore{client: client, bucket: opts.Bucket, timeout: 30 * time.Second}, nil
}

// Lookup 按标识下载输入与期望输出
func (s *MinioStore) Lookup(ctx context.Context, id string) (*model.TestCase, error) {
	safeID, err := SanitizeID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	input, err := s.fetchObject(ctx, safeID+constants.InputExtension)
	if err != nil {
		return nil, err
	}
	expected, err := s.fetchObject(ctx, safeID+constants.AnswerExtension)
	if err != nil {
		return nil, err
	}
	return &model.TestCase{ID: safeID, Input: input, Expected: expected}, nil
}

func (s *MinioStore) fetchObject(ctx context.Context, objectName string) (string, error) {
	object, err := s.client.GetObject(ctx, s.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("get object fail: %s", objectName), err)
	}
	defer object.Close()

	content, err := io.ReadAll(object)
	if err != nil {
		// MinIO 的对象不存在错误在读取时才暴露
		if resp := minio.ToErrorResponse(err); resp.Code == "NoSuchKey" {
			return "", errors.NewNotFoundError(fmt.Sprintf("测试用例对象 %s", objectName))
		}
		return "", errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("read object fail: %s", objectName), err)
	}
	zap.L().Debug("测试用例对象下载完成", zap.String("object", objectName), zap.Int("size", len(content)))
	return string(content), nil
}
