package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/enerlink/parceiros-api-go/internal/domain"
)

// ============================================================
// BlobStore implementation — Supabase Storage object API
// ============================================================

func (c *Client) storageURL(parts ...string) string {
	return fmt.Sprintf("%s/storage/v1/object/%s", c.baseURL, strings.Join(parts, "/"))
}

// Upload writes an object. An existing object at the same path is replaced.
func (c *Client) Upload(ctx context.Context, bucket, path, contentType string, body io.Reader) error {
	ctx, span := tracer.Start(ctx, "Supabase.StorageUpload")
	defer span.End()

	// Uploads stream whole files; cap how many run at once.
	if err := c.uploads.Acquire(ctx); err != nil {
		return err
	}
	defer c.uploads.Release()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.storageURL(bucket, path), body)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.serviceRoleKey))
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("supabase: storage upload failed",
			zap.String("bucket", bucket),
			zap.String("path", path),
			zap.Error(err),
		)
		return &domain.ErrExternalService{Service: "supabase/storage", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		c.logger.Warn("supabase: storage upload non-2xx",
			zap.String("bucket", bucket),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(respBody)),
		)
		return &domain.ErrExternalService{
			Service: "supabase/storage",
			Err:     fmt.Errorf("upload returned %d: %s", resp.StatusCode, string(respBody)),
		}
	}

	c.logger.Debug("supabase: storage upload OK",
		zap.String("bucket", bucket),
		zap.String("path", path),
	)
	return nil
}

func (c *Client) Download(ctx context.Context, bucket, path string) (io.ReadCloser, error) {
	ctx, span := tracer.Start(ctx, "Supabase.StorageDownload")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.storageURL(bucket, path), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.serviceRoleKey))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/storage", Err: err}
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, &domain.ErrNotFound{Resource: "object", ID: path}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &domain.ErrExternalService{
			Service: "supabase/storage",
			Err:     fmt.Errorf("download returned %d: %s", resp.StatusCode, string(respBody)),
		}
	}

	return resp.Body, nil
}

func (c *Client) Remove(ctx context.Context, bucket, path string) error {
	ctx, span := tracer.Start(ctx, "Supabase.StorageRemove")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.storageURL(bucket, path), nil)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.serviceRoleKey))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.ErrExternalService{Service: "supabase/storage", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return &domain.ErrNotFound{Resource: "object", ID: path}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return &domain.ErrExternalService{
			Service: "supabase/storage",
			Err:     fmt.Errorf("remove returned %d: %s", resp.StatusCode, string(respBody)),
		}
	}
	return nil
}

// storageObject is the list API response shape.
type storageObject struct {
	Name     string `json:"name"`
	Metadata struct {
		Size int64 `json:"size"`
	} `json:"metadata"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Client) List(ctx context.Context, bucket, prefix string) ([]domain.StoredFile, error) {
	ctx, span := tracer.Start(ctx, "Supabase.StorageList")
	defer span.End()

	payload, err := json.Marshal(map[string]any{
		"prefix": prefix,
		"limit":  1000,
		"sortBy": map[string]string{"column": "updated_at", "order": "desc"},
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/storage/v1/object/list/%s", c.baseURL, bucket)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(payload)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.serviceRoleKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/storage", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.ErrExternalService{
			Service: "supabase/storage",
			Err:     fmt.Errorf("list returned %d: %s", resp.StatusCode, string(body)),
		}
	}

	var objects []storageObject
	if err := json.Unmarshal(body, &objects); err != nil {
		return nil, fmt.Errorf("decode storage list: %w", err)
	}

	files := make([]domain.StoredFile, 0, len(objects))
	for _, o := range objects {
		p := o.Name
		if prefix != "" {
			p = prefix + "/" + o.Name
		}
		files = append(files, domain.StoredFile{
			Name:      o.Name,
			Path:      p,
			SizeBytes: o.Metadata.Size,
			UpdatedAt: o.UpdatedAt,
		})
	}
	return files, nil
}

// PublicURL builds the unauthenticated retrieval URL for an object.
func (c *Client) PublicURL(bucket, path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, bucket, path)
}
