// Package validate holds one shared schema per entity, applied uniformly
// before any remote call. Failures come back as a structured field list
// rather than a single generic message.
package validate

import (
	"strings"

	"github.com/enerlink/parceiros-api-go/internal/domain"
)

type fieldCheck struct {
	field   string
	message string
	ok      bool
}

func collect(entity string, checks []fieldCheck) error {
	var fields []domain.FieldError
	for _, c := range checks {
		if !c.ok {
			fields = append(fields, domain.FieldError{Field: c.field, Message: c.message})
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return &domain.ErrValidation{Entity: entity, Fields: fields}
}

func present(v string) bool { return strings.TrimSpace(v) != "" }

// emailish is deliberately loose: the backend is the authority, this only
// catches obviously broken input before a round-trip.
func emailish(v string) bool {
	at := strings.Index(v, "@")
	return at > 0 && at < len(v)-1 && !strings.ContainsAny(v, " \t")
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

func Contact(in domain.ContactInput) error {
	return collect("contact", []fieldCheck{
		{"name", "is required", present(in.Name)},
		{"email", "is required", present(in.Email)},
		{"email", "must be a valid email address", !present(in.Email) || emailish(in.Email)},
		{"phone", "is required", present(in.Phone)},
		{"company", "is required", present(in.Company)},
	})
}

func Contract(in domain.ContractInput) error {
	return collect("contract", []fieldCheck{
		{"tax_id", "is required", present(in.TaxID)},
		{"client_name", "is required", present(in.ClientName)},
		{"supply_point", "is required", present(in.SupplyPoint)},
		{"supplier", "is required", present(in.Supplier)},
		{"status", "must be one of active, pending, expired, cancelled",
			!present(in.Status) || oneOf(in.Status,
				domain.ContractActive, domain.ContractPending,
				domain.ContractExpired, domain.ContractCancelled)},
		{"consumption", "must not be negative", in.Consumption >= 0},
		{"commission", "must not be negative", in.Commission >= 0},
	})
}

func Request(in domain.RequestInput) error {
	return collect("request", []fieldCheck{
		{"subject", "is required", present(in.Subject)},
		{"client_name", "is required", present(in.ClientName)},
		{"client_tax_id", "is required", present(in.ClientTaxID)},
		{"category", "is required", present(in.Category)},
		{"message", "is required", present(in.Message)},
	})
}

func Occurrence(in domain.OccurrenceInput) error {
	return collect("occurrence", []fieldCheck{
		{"subject", "is required", present(in.Subject)},
		{"description", "is required", present(in.Description)},
		{"client_name", "is required", present(in.ClientName)},
		{"meter_point_id", "is required", present(in.MeterPointID)},
	})
}

func PortalUser(in domain.PortalUserInput) error {
	return collect("user", []fieldCheck{
		{"name", "is required", present(in.Name)},
		{"email", "is required", present(in.Email)},
		{"email", "must be a valid email address", !present(in.Email) || emailish(in.Email)},
		{"role", "must be one of backoffice, partner, commercial",
			oneOf(in.Role, domain.RoleBackoffice, domain.RolePartner, domain.RoleCommercial)},
		{"status", "must be one of active, inactive",
			!present(in.Status) || oneOf(in.Status, domain.UserActive, domain.UserInactive)},
	})
}

func Simulation(in domain.SimulationInput) error {
	return collect("simulation", []fieldCheck{
		{"name", "is required", present(in.Name)},
		{"tax_id", "is required", present(in.TaxID)},
		{"tariff", "must be one of indexed, fixed, both",
			oneOf(in.Tariff, domain.TariffIndexed, domain.TariffFixed, domain.TariffBoth)},
		{"est_consumption", "must not be negative", in.EstConsumption >= 0},
	})
}
