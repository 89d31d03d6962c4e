// Package minio stores redaction artifacts in an S3-compatible bucket.
package minio

import (
	"context"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/turtacn/Antecedent-Intelligence/internal/config"
	"github.com/turtacn/Antecedent-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Antecedent-Intelligence/pkg/errors"
)

// MinIOAPI is the subset of *minio.Client used by this package.
type MinIOAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
}

var (
	ErrBucketRequired = errors.New(errors.CodeValidation, "minio bucket is required")
	ErrObjectNotFound = errors.New(errors.CodeNotFound, "object not found")
)

const defaultRegion = "us-east-1"

// NewClient connects to the endpoint in cfg and makes sure the configured
// bucket exists.
func NewClient(ctx context.Context, cfg config.MinIOConfig, logger logging.Logger) (MinIOAPI, error) {
	if cfg.Bucket == "" {
		return nil, ErrBucketRequired
	}
	if cfg.Region == "" {
		cfg.Region = defaultRegion
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStorageError, "failed to create minio client")
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := EnsureBucket(ctx, client, cfg.Bucket, cfg.Region, logger); err != nil {
		return nil, err
	}

	logger.Info("MinIO client connected",
		logging.String("endpoint", cfg.Endpoint),
		logging.String("bucket", cfg.Bucket),
		logging.Bool("ssl", cfg.UseSSL))
	return client, nil
}

// EnsureBucket creates bucket when it does not exist yet.
func EnsureBucket(ctx context.Context, api MinIOAPI, bucket, region string, logger logging.Logger) error {
	exists, err := api.BucketExists(ctx, bucket)
	if err != nil {
		return errors.Wrap(err, errors.CodeStorageError, "failed to check bucket existence").WithDetail("bucket=" + bucket)
	}
	if exists {
		return nil
	}
	if err := api.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return errors.Wrap(err, errors.CodeStorageError, "failed to create bucket").WithDetail("bucket=" + bucket)
	}
	logger.Info("Created bucket", logging.String("bucket", bucket))
	return nil
}

//Personal.AI order the ending
