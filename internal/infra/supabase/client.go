// Package supabase adapts the hosted backend (PostgREST + Auth + Storage)
// behind the gateway ports. All table access goes through one authenticated
// HTTP client.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/enerlink/parceiros-api-go/internal/domain"
	"github.com/enerlink/parceiros-api-go/internal/infra/resilience"
)

var tracer = otel.Tracer("supabase")

// Client wraps HTTP calls to the Supabase PostgREST API.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	serviceRoleKey string
	cb             *gobreaker.CircuitBreaker
	cfg            resilience.Config
	uploads        *resilience.Bulkhead
	logger         *zap.Logger
}

// NewClient creates a Supabase client.
func NewClient(httpClient *http.Client, baseURL, apiKey, serviceRoleKey string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, logger *zap.Logger) *Client {
	maxConcurrency := cfg.MaxConcurrency
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}
	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		apiKey:         apiKey,
		serviceRoleKey: serviceRoleKey,
		cb:             cb,
		cfg:            cfg,
		uploads:        resilience.NewBulkhead(maxConcurrency),
		logger:         logger,
	}
}

func (c *Client) setHeaders(req *http.Request, prefer string) {
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.serviceRoleKey))
	req.Header.Set("Content-Type", "application/json")
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}
}

// doRequest executes an authenticated GET/DELETE-style request against
// /rest/v1. Returns nil on 404/204 so callers can treat "no rows" uniformly.
func (c *Client) doRequest(ctx context.Context, method, path string) ([]byte, error) {
	url := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, path)
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		c.logger.Error("supabase: failed to create request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}
	c.setHeaders(req, "return=representation")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("supabase: request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("supabase: failed to read response body",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNoContent {
		return nil, nil // no data
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("supabase: non-2xx response",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return nil, statusError(resp.StatusCode, body)
	}

	c.logger.Debug("supabase: request OK",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
	)

	return body, nil
}

func (c *Client) doPost(ctx context.Context, table string, data map[string]any) ([]byte, error) {
	url := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, table)
	jsonBody, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, err
	}
	c.setHeaders(req, "return=representation")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("supabase: POST request failed",
			zap.String("table", table),
			zap.Error(err),
		)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("supabase: POST non-2xx",
			zap.String("table", table),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return nil, statusError(resp.StatusCode, body)
	}

	c.logger.Debug("supabase: POST OK", zap.String("table", table), zap.Int("status", resp.StatusCode))
	return body, nil
}

// doPatch patches rows matching the path filter and returns the updated
// representation.
func (c *Client) doPatch(ctx context.Context, path string, data map[string]any) ([]byte, error) {
	url := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, path)
	jsonBody, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, err
	}
	c.setHeaders(req, "return=representation")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("supabase: PATCH request failed",
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("supabase: PATCH non-2xx",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return nil, statusError(resp.StatusCode, body)
	}

	c.logger.Debug("supabase: PATCH OK", zap.String("path", path))
	return body, nil
}

func (c *Client) doDelete(ctx context.Context, path string) error {
	url := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	c.setHeaders(req, "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("supabase: DELETE request failed",
			zap.String("path", path),
			zap.Error(err),
		)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Warn("supabase: DELETE non-2xx",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return statusError(resp.StatusCode, body)
	}

	c.logger.Debug("supabase: DELETE OK", zap.String("path", path))
	return nil
}

// statusError maps PostgREST failure statuses to domain errors. 409 means a
// unique or foreign key violation.
func statusError(status int, body []byte) error {
	if status == http.StatusConflict {
		return &domain.ErrConflict{Message: fmt.Sprintf("conflict: %s", string(body))}
	}
	return fmt.Errorf("supabase returned status %d: %s", status, string(body))
}

// fetchList runs a read query through the circuit breaker with retries and
// decodes the row array.
func fetchList[T any](ctx context.Context, c *Client, name, path string) ([]T, error) {
	var rows []T

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			body, err := c.doRequest(ctx, http.MethodGet, path)
			if err != nil {
				return err
			}
			if body == nil || string(body) == "[]" {
				rows = []T{}
				return nil
			}
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("decode %s: %w", name, err)
			}
			return nil
		})
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, &domain.ErrCircuitOpen{Service: "supabase/" + name}
		}
		return nil, &domain.ErrExternalService{Service: "supabase/" + name, Err: err}
	}

	return rows, nil
}

type writeResult struct {
	body []byte
	err  error
}

// execWrite runs a backend write through the circuit breaker. Writes are
// never retried; a duplicate POST could create a second row. Conflicts are
// caller mistakes and do not count against the breaker.
func (c *Client) execWrite(name string, fn func() ([]byte, error)) ([]byte, error) {
	v, err := c.cb.Execute(func() (any, error) {
		body, err := fn()
		if _, ok := err.(*domain.ErrConflict); ok {
			return writeResult{nil, err}, nil
		}
		return writeResult{body, nil}, err
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, &domain.ErrCircuitOpen{Service: "supabase/" + name}
		}
		return nil, wrapWriteErr(name, err)
	}
	res := v.(writeResult)
	if res.err != nil {
		return nil, res.err
	}
	return res.body, nil
}

// insertOne posts a row and decodes the server representation.
func insertOne[T any](ctx context.Context, c *Client, name, table string, row map[string]any) (T, error) {
	var zero T

	body, err := c.execWrite(name, func() ([]byte, error) {
		return c.doPost(ctx, table, row)
	})
	if err != nil {
		return zero, err
	}

	var results []T
	if err := json.Unmarshal(body, &results); err != nil {
		return zero, fmt.Errorf("decode %s: %w", name, err)
	}
	if len(results) == 0 {
		return zero, fmt.Errorf("no result returned from %s insert", table)
	}
	return results[0], nil
}

// patchOne patches the row with the given id and decodes the representation.
func patchOne[T any](ctx context.Context, c *Client, name, table, id string, patch map[string]any) (T, error) {
	var zero T

	body, err := c.execWrite(name, func() ([]byte, error) {
		return c.doPatch(ctx, fmt.Sprintf("%s?id=eq.%s", table, url.QueryEscape(id)), patch)
	})
	if err != nil {
		return zero, err
	}

	var results []T
	if err := json.Unmarshal(body, &results); err != nil {
		return zero, fmt.Errorf("decode %s: %w", name, err)
	}
	if len(results) == 0 {
		return zero, &domain.ErrNotFound{Resource: name, ID: id}
	}
	return results[0], nil
}

func deleteOne(ctx context.Context, c *Client, name, table, id string) error {
	_, err := c.execWrite(name, func() ([]byte, error) {
		return nil, c.doDelete(ctx, fmt.Sprintf("%s?id=eq.%s", table, url.QueryEscape(id)))
	})
	return err
}

// wrapWriteErr keeps typed domain errors intact and wraps everything else as
// an external service failure.
func wrapWriteErr(name string, err error) error {
	switch err.(type) {
	case *domain.ErrConflict, *domain.ErrNotFound:
		return err
	}
	return &domain.ErrExternalService{Service: "supabase/" + name, Err: err}
}
