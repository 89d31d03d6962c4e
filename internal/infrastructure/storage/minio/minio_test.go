package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/Antecedent-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Antecedent-Intelligence/pkg/errors"
)

type MockMinIOAPI struct {
	mock.Mock
	uploaded map[string][]byte
}

func (m *MockMinIOAPI) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	args := m.Called(ctx, bucketName)
	return args.Bool(0), args.Error(1)
}

func (m *MockMinIOAPI) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	return m.Called(ctx, bucketName, opts).Error(0)
}

func (m *MockMinIOAPI) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	args := m.Called(ctx, bucketName, objectName, objectSize, opts.ContentType)
	if args.Error(1) == nil {
		data, _ := io.ReadAll(reader)
		if m.uploaded == nil {
			m.uploaded = map[string][]byte{}
		}
		m.uploaded[objectName] = data
	}
	return args.Get(0).(minio.UploadInfo), args.Error(1)
}

func (m *MockMinIOAPI) StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	args := m.Called(ctx, bucketName, objectName)
	return args.Get(0).(minio.ObjectInfo), args.Error(1)
}

func (m *MockMinIOAPI) RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error {
	return m.Called(ctx, bucketName, objectName).Error(0)
}

func (m *MockMinIOAPI) ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	args := m.Called(ctx, bucketName, opts.Prefix)
	return args.Get(0).(<-chan minio.ObjectInfo)
}

func objectChan(infos ...minio.ObjectInfo) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(infos))
	for _, i := range infos {
		ch <- i
	}
	close(ch)
	return ch
}

func TestEnsureBucket(t *testing.T) {
	ctx := context.Background()
	log := logging.NewNopLogger()

	t.Run("existing bucket", func(t *testing.T) {
		api := new(MockMinIOAPI)
		api.On("BucketExists", ctx, "b").Return(true, nil)
		require.NoError(t, EnsureBucket(ctx, api, "b", "us-east-1", log))
		api.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("creates missing bucket", func(t *testing.T) {
		api := new(MockMinIOAPI)
		api.On("BucketExists", ctx, "b").Return(false, nil)
		api.On("MakeBucket", ctx, "b", minio.MakeBucketOptions{Region: "us-east-1"}).Return(nil)
		require.NoError(t, EnsureBucket(ctx, api, "b", "us-east-1", log))
		api.AssertExpectations(t)
	})

	t.Run("stat error", func(t *testing.T) {
		api := new(MockMinIOAPI)
		api.On("BucketExists", ctx, "b").Return(false, fmt.Errorf("refused"))
		err := EnsureBucket(ctx, api, "b", "us-east-1", log)
		assert.True(t, errors.IsCode(err, errors.CodeStorageError))
	})
}

func TestArtifactStore_Put(t *testing.T) {
	ctx := context.Background()
	api := new(MockMinIOAPI)
	body := []byte("<html></html>")
	api.On("PutObject", ctx, "redactions", "run/DEBUG_x.html", int64(len(body)), htmlContentType).
		Return(minio.UploadInfo{Size: int64(len(body))}, nil)

	store := NewArtifactStore(api, "redactions", "/run/", nil)
	loc, err := store.Put(ctx, "DEBUG_x.html", body)
	require.NoError(t, err)
	assert.Equal(t, "s3://redactions/run/DEBUG_x.html", loc)
	assert.True(t, bytes.Equal(body, api.uploaded["run/DEBUG_x.html"]))
	assert.Equal(t, "s3://redactions/run", store.Location())
}

func TestArtifactStore_PutErrors(t *testing.T) {
	ctx := context.Background()
	api := new(MockMinIOAPI)
	api.On("PutObject", ctx, "b", "a.html", int64(1), htmlContentType).
		Return(minio.UploadInfo{}, fmt.Errorf("quota"))

	store := NewArtifactStore(api, "b", "", nil)
	_, err := store.Put(ctx, "a.html", []byte("x"))
	assert.True(t, errors.IsCode(err, errors.ErrCodeArtifactWriteError))

	_, err = store.Put(ctx, "", []byte("x"))
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

func TestArtifactStore_Exists(t *testing.T) {
	ctx := context.Background()
	api := new(MockMinIOAPI)
	api.On("StatObject", ctx, "b", "here.html").Return(minio.ObjectInfo{Key: "here.html"}, nil)
	api.On("StatObject", ctx, "b", "gone.html").Return(minio.ObjectInfo{},
		minio.ErrorResponse{Code: "NoSuchKey", StatusCode: http.StatusNotFound})

	store := NewArtifactStore(api, "b", "", nil)
	ok, err := store.Exists(ctx, "here.html")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Exists(ctx, "gone.html")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArtifactStore_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	api := new(MockMinIOAPI)
	api.On("ListObjects", ctx, "b", "p/").Return(objectChan(
		minio.ObjectInfo{Key: "p/z.html"},
		minio.ObjectInfo{Key: "p/a.html"},
	))
	api.On("RemoveObject", ctx, "b", "p/a.html").Return(nil)

	store := NewArtifactStore(api, "b", "p", nil)
	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.html", "z.html"}, names)
	require.NoError(t, store.Delete(ctx, "a.html"))
}

func TestArtifactStore_ListError(t *testing.T) {
	ctx := context.Background()
	api := new(MockMinIOAPI)
	api.On("ListObjects", ctx, "b", "").Return(objectChan(minio.ObjectInfo{Err: fmt.Errorf("denied")}))

	_, err := NewArtifactStore(api, "b", "", nil).List(ctx)
	assert.True(t, errors.IsCode(err, errors.CodeStorageError))
}

//Personal.AI order the ending
