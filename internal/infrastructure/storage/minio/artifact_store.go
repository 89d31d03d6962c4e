package minio

import (
	"bytes"
	"context"
	"path"
	"sort"
	"strings"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/Antecedent-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Antecedent-Intelligence/pkg/errors"
)

const htmlContentType = "text/html; charset=utf-8"

// ArtifactStore writes named artifacts under an optional key prefix of one
// bucket. Puts with the same name overwrite.
type ArtifactStore struct {
	api    MinIOAPI
	bucket string
	prefix string
	logger logging.Logger
}

// NewArtifactStore returns a store backed by api.
func NewArtifactStore(api MinIOAPI, bucket, prefix string, logger logging.Logger) *ArtifactStore {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ArtifactStore{
		api:    api,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		logger: logger.Named("artifact_store"),
	}
}

func (s *ArtifactStore) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

// Put uploads data as name and returns its s3 location.
func (s *ArtifactStore) Put(ctx context.Context, name string, data []byte) (string, error) {
	if name == "" {
		return "", errors.New(errors.CodeInvalidParam, "artifact name is required")
	}
	key := s.key(name)
	info, err := s.api.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: htmlContentType,
	})
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeArtifactWriteError, "failed to upload artifact").WithDetail("key=" + key)
	}
	s.logger.Debug("Artifact uploaded", logging.String("key", key), logging.Int64("size", info.Size))
	return "s3://" + s.bucket + "/" + key, nil
}

// Exists reports whether name has been stored.
func (s *ArtifactStore) Exists(ctx context.Context, name string) (bool, error) {
	_, err := s.api.StatObject(ctx, s.bucket, s.key(name), minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return false, nil
	}
	return false, errors.Wrap(err, errors.CodeStorageError, "failed to stat artifact")
}

// Delete removes name. Deleting a missing object is not an error.
func (s *ArtifactStore) Delete(ctx context.Context, name string) error {
	if err := s.api.RemoveObject(ctx, s.bucket, s.key(name), minio.RemoveObjectOptions{}); err != nil {
		return errors.Wrap(err, errors.CodeStorageError, "failed to delete artifact")
	}
	return nil
}

// List returns the stored artifact names, sorted.
func (s *ArtifactStore) List(ctx context.Context) ([]string, error) {
	opts := minio.ListObjectsOptions{Recursive: true}
	if s.prefix != "" {
		opts.Prefix = s.prefix + "/"
	}
	var names []string
	for obj := range s.api.ListObjects(ctx, s.bucket, opts) {
		if obj.Err != nil {
			return nil, errors.Wrap(obj.Err, errors.CodeStorageError, "failed to list artifacts")
		}
		names = append(names, strings.TrimPrefix(obj.Key, opts.Prefix))
	}
	sort.Strings(names)
	return names, nil
}

// Location describes the store for logs and reports.
func (s *ArtifactStore) Location() string {
	return "s3://" + path.Join(s.bucket, s.prefix)
}

//Personal.AI order the ending
