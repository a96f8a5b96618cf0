package supabase

import (
	"context"

	"github.com/enerlink/parceiros-api-go/internal/domain"
)

// UsersGateway implements port.Gateway for the users table.
type UsersGateway struct {
	c *Client
}

func NewUsersGateway(c *Client) *UsersGateway {
	return &UsersGateway{c: c}
}

func (g *UsersGateway) FetchAll(ctx context.Context) ([]domain.PortalUser, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListUsers")
	defer span.End()

	return fetchList[domain.PortalUser](ctx, g.c, "users", "users?order=created_at.desc")
}

func (g *UsersGateway) Create(ctx context.Context, in domain.PortalUserInput) (domain.PortalUser, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateUser")
	defer span.End()

	status := in.Status
	if status == "" {
		status = domain.UserActive
	}

	row := map[string]any{
		"name":    in.Name,
		"email":   in.Email,
		"phone":   in.Phone,
		"company": in.Company,
		"status":  status,
		"role":    in.Role,
	}
	if in.ParentPartnerID != nil {
		row["parent_partner_id"] = *in.ParentPartnerID
	}
	return insertOne[domain.PortalUser](ctx, g.c, "user", "users", row)
}

func (g *UsersGateway) Update(ctx context.Context, id string, patch map[string]any) (domain.PortalUser, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateUser")
	defer span.End()

	return patchOne[domain.PortalUser](ctx, g.c, "user", "users", id, patch)
}

func (g *UsersGateway) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteUser")
	defer span.End()

	return deleteOne(ctx, g.c, "user", "users", id)
}
