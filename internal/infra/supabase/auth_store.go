package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/enerlink/parceiros-api-go/internal/domain"
)

// ============================================================
// AuthStore implementation — principals and refresh tokens via PostgREST
// ============================================================

func (c *Client) GetPrincipalByEmail(ctx context.Context, email string) (*domain.Principal, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetPrincipalByEmail")
	defer span.End()

	path := fmt.Sprintf("principals?email=eq.%s&limit=1", url.QueryEscape(email))
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}
	if body == nil || string(body) == "[]" {
		return nil, nil // not found is not an error for auth lookup
	}

	var rows []domain.Principal
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode principals: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (c *Client) GetPrincipalByID(ctx context.Context, id string) (*domain.Principal, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetPrincipalByID")
	defer span.End()

	path := fmt.Sprintf("principals?id=eq.%s&limit=1", url.QueryEscape(id))
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}
	if body == nil || string(body) == "[]" {
		return nil, &domain.ErrNotFound{Resource: "principal", ID: id}
	}

	var rows []domain.Principal
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode principals: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "principal", ID: id}
	}
	return &rows[0], nil
}

func (c *Client) UpdatePrincipal(ctx context.Context, id string, updates map[string]any) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpdatePrincipal")
	defer span.End()

	path := fmt.Sprintf("principals?id=eq.%s", url.QueryEscape(id))
	_, err := c.doPatch(ctx, path, updates)
	return err
}

// --- Refresh tokens ---

func (c *Client) StoreRefreshToken(ctx context.Context, principalID, tokenHash string, expiresAt time.Time) error {
	ctx, span := tracer.Start(ctx, "Supabase.StoreRefreshToken")
	defer span.End()

	data := map[string]any{
		"id":           uuid.New().String(),
		"principal_id": principalID,
		"token_hash":   tokenHash,
		"expires_at":   expiresAt.Format(time.RFC3339),
		"revoked":      false,
	}

	_, err := c.doPost(ctx, "auth_refresh_tokens", data)
	return err
}

func (c *Client) GetRefreshToken(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetRefreshToken")
	defer span.End()

	path := fmt.Sprintf("auth_refresh_tokens?token_hash=eq.%s&revoked=eq.false&limit=1", url.QueryEscape(tokenHash))
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}
	if body == nil || string(body) == "[]" {
		return nil, nil
	}

	var rows []domain.RefreshToken
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode auth_refresh_tokens: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (c *Client) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	ctx, span := tracer.Start(ctx, "Supabase.RevokeRefreshToken")
	defer span.End()

	path := fmt.Sprintf("auth_refresh_tokens?token_hash=eq.%s", url.QueryEscape(tokenHash))
	_, err := c.doPatch(ctx, path, map[string]any{"revoked": true})
	return err
}

func (c *Client) RevokeAllRefreshTokens(ctx context.Context, principalID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.RevokeAllRefreshTokens")
	defer span.End()

	path := fmt.Sprintf("auth_refresh_tokens?principal_id=eq.%s&revoked=eq.false", url.QueryEscape(principalID))
	_, err := c.doPatch(ctx, path, map[string]any{"revoked": true})
	return err
}
