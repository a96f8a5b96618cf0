package supabase

import (
	"context"

	"github.com/enerlink/parceiros-api-go/internal/domain"
)

// SimulationsGateway implements port.Gateway for the simulations table.
type SimulationsGateway struct {
	c *Client
}

func NewSimulationsGateway(c *Client) *SimulationsGateway {
	return &SimulationsGateway{c: c}
}

func (g *SimulationsGateway) FetchAll(ctx context.Context) ([]domain.Simulation, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListSimulations")
	defer span.End()

	return fetchList[domain.Simulation](ctx, g.c, "simulations", "simulations?order=created_at.desc")
}

func (g *SimulationsGateway) Create(ctx context.Context, in domain.SimulationInput) (domain.Simulation, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateSimulation")
	defer span.End()

	row := map[string]any{
		"name":            in.Name,
		"tax_id":          in.TaxID,
		"tariff":          in.Tariff,
		"priority":        in.Priority,
		"est_consumption": in.EstConsumption,
		"est_commission":  in.EstCommission,
		"notes":           in.Notes,
		"status":          "pending",
	}
	if in.InvoicePath != "" {
		row["invoice_path"] = in.InvoicePath
	}
	if in.OwnerID != "" {
		row["owner_id"] = in.OwnerID
	}
	return insertOne[domain.Simulation](ctx, g.c, "simulation", "simulations", row)
}

func (g *SimulationsGateway) Update(ctx context.Context, id string, patch map[string]any) (domain.Simulation, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateSimulation")
	defer span.End()

	return patchOne[domain.Simulation](ctx, g.c, "simulation", "simulations", id, patch)
}

func (g *SimulationsGateway) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteSimulation")
	defer span.End()

	return deleteOne(ctx, g.c, "simulation", "simulations", id)
}
