package supabase

import (
	"context"

	"github.com/enerlink/parceiros-api-go/internal/domain"
)

// OccurrencesGateway implements port.Gateway for the occurrences table.
type OccurrencesGateway struct {
	c *Client
}

func NewOccurrencesGateway(c *Client) *OccurrencesGateway {
	return &OccurrencesGateway{c: c}
}

// withCode derives the display code from the database-assigned sequence.
func withCode(o domain.Occurrence) domain.Occurrence {
	o.Code = domain.OccurrenceCode(o.Seq)
	return o
}

func (g *OccurrencesGateway) FetchAll(ctx context.Context) ([]domain.Occurrence, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListOccurrences")
	defer span.End()

	rows, err := fetchList[domain.Occurrence](ctx, g.c, "occurrences", "occurrences?order=created_at.desc")
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i] = withCode(rows[i])
	}
	return rows, nil
}

func (g *OccurrencesGateway) Create(ctx context.Context, in domain.OccurrenceInput) (domain.Occurrence, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateOccurrence")
	defer span.End()

	row := map[string]any{
		"subject":        in.Subject,
		"description":    in.Description,
		"client_name":    in.ClientName,
		"meter_point_id": in.MeterPointID,
		"status":         domain.OccurrencePending,
		"author_id":      in.AuthorID,
	}
	created, err := insertOne[domain.Occurrence](ctx, g.c, "occurrence", "occurrences", row)
	if err != nil {
		return domain.Occurrence{}, err
	}
	return withCode(created), nil
}

func (g *OccurrencesGateway) Update(ctx context.Context, id string, patch map[string]any) (domain.Occurrence, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateOccurrence")
	defer span.End()

	updated, err := patchOne[domain.Occurrence](ctx, g.c, "occurrence", "occurrences", id, patch)
	if err != nil {
		return domain.Occurrence{}, err
	}
	return withCode(updated), nil
}

func (g *OccurrencesGateway) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteOccurrence")
	defer span.End()

	return deleteOne(ctx, g.c, "occurrence", "occurrences", id)
}
