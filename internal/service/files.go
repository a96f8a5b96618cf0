package service

import (
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/enerlink/parceiros-api-go/internal/domain"
	"github.com/enerlink/parceiros-api-go/internal/infra/observability"
	"github.com/enerlink/parceiros-api-go/internal/port"
)

// FilesService exposes the shared document area backed by the storage
// bucket. Listings are cached briefly since the bucket changes rarely.
type FilesService struct {
	blobs   port.BlobStore
	bucket  string
	cache   port.Cache[[]domain.StoredFile]
	metrics *observability.Metrics
	logger  *zap.Logger
}

func NewFilesService(blobs port.BlobStore, bucket string, cache port.Cache[[]domain.StoredFile], metrics *observability.Metrics, logger *zap.Logger) *FilesService {
	return &FilesService{
		blobs:   blobs,
		bucket:  bucket,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
	}
}

// List returns the files under a prefix, newest first.
func (s *FilesService) List(ctx context.Context, prefix string) ([]domain.StoredFile, error) {
	key := "files:" + prefix
	if cached, ok := s.cache.Get(key); ok {
		s.metrics.IncrCacheHit("files")
		return cached, nil
	}
	s.metrics.IncrCacheMiss("files")

	files, err := s.blobs.List(ctx, s.bucket, prefix)
	if err != nil {
		s.logger.Error("files: list failed", zap.String("prefix", prefix), zap.Error(err))
		return nil, err
	}

	s.cache.Set(key, files)
	return files, nil
}

// Open streams a stored file's content. The caller must close the reader.
func (s *FilesService) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	body, err := s.blobs.Download(ctx, s.bucket, path)
	if err != nil {
		s.logger.Error("files: download failed", zap.String("path", path), zap.Error(err))
		return nil, err
	}
	return body, nil
}

// URL returns the public retrieval URL for a stored file.
func (s *FilesService) URL(path string) string {
	return s.blobs.PublicURL(s.bucket, path)
}
