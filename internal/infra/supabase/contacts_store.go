package supabase

import (
	"context"

	"github.com/enerlink/parceiros-api-go/internal/domain"
)

// ContactsGateway implements port.Gateway for the contacts table.
type ContactsGateway struct {
	c *Client
}

func NewContactsGateway(c *Client) *ContactsGateway {
	return &ContactsGateway{c: c}
}

func (g *ContactsGateway) FetchAll(ctx context.Context) ([]domain.Contact, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListContacts")
	defer span.End()

	return fetchList[domain.Contact](ctx, g.c, "contacts", "contacts?order=created_at.desc")
}

func (g *ContactsGateway) Create(ctx context.Context, in domain.ContactInput) (domain.Contact, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateContact")
	defer span.End()

	row := map[string]any{
		"name":    in.Name,
		"email":   in.Email,
		"phone":   in.Phone,
		"company": in.Company,
	}
	return insertOne[domain.Contact](ctx, g.c, "contact", "contacts", row)
}

func (g *ContactsGateway) Update(ctx context.Context, id string, patch map[string]any) (domain.Contact, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateContact")
	defer span.End()

	return patchOne[domain.Contact](ctx, g.c, "contact", "contacts", id, patch)
}

func (g *ContactsGateway) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteContact")
	defer span.End()

	return deleteOne(ctx, g.c, "contact", "contacts", id)
}
