package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/enerlink/parceiros-api-go/internal/domain"
	"github.com/enerlink/parceiros-api-go/internal/port"
	"github.com/enerlink/parceiros-api-go/internal/resource"
	"github.com/enerlink/parceiros-api-go/internal/validate"
)

var portalTracer = otel.Tracer("service/portal")

// PortalService owns the per-entity session stores and the cross-entity
// views built on top of them.
type PortalService struct {
	Contacts    *resource.Store[domain.Contact, domain.ContactInput]
	Contracts   *resource.Store[domain.Contract, domain.ContractInput]
	Requests    *resource.Store[domain.Request, domain.RequestInput]
	Occurrences *resource.Store[domain.Occurrence, domain.OccurrenceInput]
	Users       *resource.Store[domain.PortalUser, domain.PortalUserInput]
	Simulations *resource.Store[domain.Simulation, domain.SimulationInput]

	logger *zap.Logger
}

// Gateways bundles the typed table gateways the portal needs.
type Gateways struct {
	Contacts    port.Gateway[domain.Contact, domain.ContactInput]
	Contracts   port.Gateway[domain.Contract, domain.ContractInput]
	Requests    port.Gateway[domain.Request, domain.RequestInput]
	Occurrences port.Gateway[domain.Occurrence, domain.OccurrenceInput]
	Users       port.Gateway[domain.PortalUser, domain.PortalUserInput]
	Simulations port.Gateway[domain.Simulation, domain.SimulationInput]
}

// NewPortalService wires one store per entity. All stores share the
// notifier, so every outcome surfaces on the same message stream.
func NewPortalService(gw Gateways, notifier port.Notifier, logger *zap.Logger) *PortalService {
	return &PortalService{
		Contacts: resource.NewStore("contacts", gw.Contacts, notifier, logger,
			validate.Contact, func(c domain.Contact) string { return c.ID }),
		Contracts: resource.NewStore("contracts", gw.Contracts, notifier, logger,
			validate.Contract, func(c domain.Contract) string { return c.ID }),
		Requests: resource.NewStore("requests", gw.Requests, notifier, logger,
			validate.Request, func(r domain.Request) string { return r.ID }),
		Occurrences: resource.NewStore("occurrences", gw.Occurrences, notifier, logger,
			validate.Occurrence, func(o domain.Occurrence) string { return o.ID }),
		Users: resource.NewStore("users", gw.Users, notifier, logger,
			validate.PortalUser, func(u domain.PortalUser) string { return u.ID }),
		Simulations: resource.NewStore("simulations", gw.Simulations, notifier, logger,
			validate.Simulation, func(s domain.Simulation) string { return s.ID }),
		logger: logger,
	}
}

// RefreshAll fetches every collection concurrently. Each store handles its
// own failure notification; the first error is returned for readiness
// reporting only.
func (s *PortalService) RefreshAll(ctx context.Context) error {
	ctx, span := portalTracer.Start(ctx, "PortalService.RefreshAll")
	defer span.End()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.Contacts.FetchAll(ctx) })
	g.Go(func() error { return s.Contracts.FetchAll(ctx) })
	g.Go(func() error { return s.Requests.FetchAll(ctx) })
	g.Go(func() error { return s.Occurrences.FetchAll(ctx) })
	g.Go(func() error { return s.Users.FetchAll(ctx) })
	g.Go(func() error { return s.Simulations.FetchAll(ctx) })
	return g.Wait()
}

// Dashboard aggregates per-entity counts from the in-memory collections.
func (s *PortalService) Dashboard(ctx context.Context) domain.DashboardSummary {
	_, span := portalTracer.Start(ctx, "PortalService.Dashboard")
	defer span.End()

	summary := domain.DashboardSummary{
		Contacts:    s.Contacts.Len(),
		Contracts:   s.Contracts.Len(),
		Occurrences: s.Occurrences.Len(),
		Simulations: s.Simulations.Len(),
	}
	for _, c := range s.Contracts.List() {
		if c.Status == domain.ContractActive {
			summary.ActiveContracts++
		}
	}
	for _, r := range s.Requests.List() {
		if r.Status == domain.RequestOpen {
			summary.OpenRequests++
		}
	}
	return summary
}

// ListRequests returns the request collection with the derived time-ago
// label filled in.
func (s *PortalService) ListRequests(now time.Time) []domain.Request {
	rows := s.Requests.List()
	for i := range rows {
		rows[i].TimeAgo = domain.TimeAgo(rows[i].CreatedAt, now)
	}
	return rows
}

// ListOccurrences returns the occurrence collection with the derived
// time-ago label filled in.
func (s *PortalService) ListOccurrences(now time.Time) []domain.Occurrence {
	rows := s.Occurrences.List()
	for i := range rows {
		rows[i].TimeAgo = domain.TimeAgo(rows[i].CreatedAt, now)
	}
	return rows
}
