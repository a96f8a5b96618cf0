package supabase

import (
	"context"

	"github.com/enerlink/parceiros-api-go/internal/domain"
)

// ContractsGateway implements port.Gateway for the contracts table.
type ContractsGateway struct {
	c *Client
}

func NewContractsGateway(c *Client) *ContractsGateway {
	return &ContractsGateway{c: c}
}

func (g *ContractsGateway) FetchAll(ctx context.Context) ([]domain.Contract, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListContracts")
	defer span.End()

	return fetchList[domain.Contract](ctx, g.c, "contracts", "contracts?order=created_at.desc")
}

func (g *ContractsGateway) Create(ctx context.Context, in domain.ContractInput) (domain.Contract, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateContract")
	defer span.End()

	status := in.Status
	if status == "" {
		status = domain.ContractPending
	}

	// seq is assigned by the database sequence on insert.
	row := map[string]any{
		"tax_id":            in.TaxID,
		"client_name":       in.ClientName,
		"supply_point":      in.SupplyPoint,
		"supplier":          in.Supplier,
		"status":            status,
		"supply_start_date": in.SupplyStartDate,
		"consumption":       in.Consumption,
		"commission":        in.Commission,
		"sub_user":          in.SubUser,
	}
	return insertOne[domain.Contract](ctx, g.c, "contract", "contracts", row)
}

func (g *ContractsGateway) Update(ctx context.Context, id string, patch map[string]any) (domain.Contract, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateContract")
	defer span.End()

	return patchOne[domain.Contract](ctx, g.c, "contract", "contracts", id, patch)
}

func (g *ContractsGateway) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteContract")
	defer span.End()

	return deleteOne(ctx, g.c, "contract", "contracts", id)
}
