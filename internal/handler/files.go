package handler

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/enerlink/parceiros-api-go/internal/service"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Files — /v1/files
// ============================================================

func listFilesHandler(filesSvc *service.FilesService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/files")
		defer span.End()

		prefix := r.URL.Query().Get("prefix")
		if prefix != "" {
			span.SetAttributes(attribute.String("files.prefix", prefix))
		}

		files, err := filesSvc.List(ctx, prefix)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"items": files,
			"total": len(files),
		})
	}
}

func fileDownloadHandler(filesSvc *service.FilesService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/files/download")
		defer span.End()

		path := r.URL.Query().Get("path")
		if path == "" {
			writeError(w, http.StatusBadRequest, "path is required")
			return
		}
		span.SetAttributes(attribute.String("files.path", path))

		body, err := filesSvc.Open(ctx, path)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		defer body.Close()

		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
		w.WriteHeader(http.StatusOK)
		if _, err := io.Copy(w, body); err != nil {
			logger.Warn("files: streaming interrupted", zap.String("path", path), zap.Error(err))
		}
	}
}

func fileURLHandler(filesSvc *service.FilesService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/files/url")
		defer span.End()

		path := r.URL.Query().Get("path")
		if path == "" {
			writeError(w, http.StatusBadRequest, "path is required")
			return
		}
		span.SetAttributes(attribute.String("files.path", path))

		writeJSON(w, http.StatusOK, map[string]string{"url": filesSvc.URL(path)})
	}
}
