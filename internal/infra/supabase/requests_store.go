package supabase

import (
	"context"

	"github.com/enerlink/parceiros-api-go/internal/domain"
)

// RequestsGateway implements port.Gateway for the requests table.
type RequestsGateway struct {
	c *Client
}

func NewRequestsGateway(c *Client) *RequestsGateway {
	return &RequestsGateway{c: c}
}

func (g *RequestsGateway) FetchAll(ctx context.Context) ([]domain.Request, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListRequests")
	defer span.End()

	return fetchList[domain.Request](ctx, g.c, "requests", "requests?order=created_at.desc")
}

func (g *RequestsGateway) Create(ctx context.Context, in domain.RequestInput) (domain.Request, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateRequest")
	defer span.End()

	row := map[string]any{
		"subject":       in.Subject,
		"client_name":   in.ClientName,
		"client_tax_id": in.ClientTaxID,
		"status":        domain.RequestOpen,
		"category":      in.Category,
		"priority":      in.Priority,
		"message":       in.Message,
		"suppliers":     in.Suppliers,
		"sub_user":      in.SubUser,
	}
	return insertOne[domain.Request](ctx, g.c, "request", "requests", row)
}

func (g *RequestsGateway) Update(ctx context.Context, id string, patch map[string]any) (domain.Request, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateRequest")
	defer span.End()

	return patchOne[domain.Request](ctx, g.c, "request", "requests", id, patch)
}

func (g *RequestsGateway) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteRequest")
	defer span.End()

	return deleteOne(ctx, g.c, "request", "requests", id)
}
