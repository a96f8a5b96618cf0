package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/enerlink/parceiros-api-go/internal/domain"
	"github.com/enerlink/parceiros-api-go/internal/infra/cache"
	"github.com/enerlink/parceiros-api-go/internal/infra/observability"
)

type fakeBlobStore struct {
	files     []domain.StoredFile
	objects   map[string]string
	listCalls int
	listErr   error
}

func (f *fakeBlobStore) Upload(ctx context.Context, bucket, path, contentType string, body io.Reader) error {
	return nil
}

func (f *fakeBlobStore) Download(ctx context.Context, bucket, path string) (io.ReadCloser, error) {
	content, ok := f.objects[path]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "object", ID: path}
	}
	return io.NopCloser(strings.NewReader(content)), nil
}

func (f *fakeBlobStore) Remove(ctx context.Context, bucket, path string) error {
	return nil
}

func (f *fakeBlobStore) List(ctx context.Context, bucket, prefix string) ([]domain.StoredFile, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.files, nil
}

func (f *fakeBlobStore) PublicURL(bucket, path string) string {
	return "https://storage.test/" + bucket + "/" + path
}

func newFilesService(blobs *fakeBlobStore) *FilesService {
	c := cache.New[[]domain.StoredFile](time.Minute)
	return NewFilesService(blobs, "partner-files", c, observability.NewMetrics(), zap.NewNop())
}

func TestFilesListCachesListing(t *testing.T) {
	blobs := &fakeBlobStore{
		files: []domain.StoredFile{{Name: "tarifas.pdf", Path: "contracts/tarifas.pdf"}},
	}
	svc := newFilesService(blobs)

	first, err := svc.List(context.Background(), "contracts")
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := svc.List(context.Background(), "contracts")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, blobs.listCalls, "second listing served from cache")
}

func TestFilesListPropagatesBackendError(t *testing.T) {
	blobs := &fakeBlobStore{listErr: errors.New("storage unreachable")}
	svc := newFilesService(blobs)

	_, err := svc.List(context.Background(), "contracts")
	require.Error(t, err)
}

func TestFilesOpenStreamsObject(t *testing.T) {
	blobs := &fakeBlobStore{
		objects: map[string]string{"contracts/tarifas.pdf": "%PDF-1.7 tarifas"},
	}
	svc := newFilesService(blobs)

	body, err := svc.Open(context.Background(), "contracts/tarifas.pdf")
	require.NoError(t, err)
	defer body.Close()

	content, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 tarifas", string(content))
}

func TestFilesOpenUnknownPath(t *testing.T) {
	blobs := &fakeBlobStore{objects: map[string]string{}}
	svc := newFilesService(blobs)

	_, err := svc.Open(context.Background(), "contracts/missing.pdf")
	var notFound *domain.ErrNotFound
	require.ErrorAs(t, err, &notFound)
}
