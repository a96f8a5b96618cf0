package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enerlink/parceiros-api-go/internal/domain"
)

func fieldsOf(t *testing.T, err error) []domain.FieldError {
	t.Helper()
	var verr *domain.ErrValidation
	require.ErrorAs(t, err, &verr)
	return verr.Fields
}

func TestContactValid(t *testing.T) {
	err := Contact(domain.ContactInput{
		Name: "Ana Reis", Email: "ana@acme.pt", Phone: "+351911222333", Company: "Acme",
	})
	assert.NoError(t, err)
}

func TestContactCollectsAllFailures(t *testing.T) {
	fields := fieldsOf(t, Contact(domain.ContactInput{Email: "broken email"}))

	var names []string
	for _, f := range fields {
		names = append(names, f.Field)
	}
	assert.Contains(t, names, "name")
	assert.Contains(t, names, "email")
	assert.Contains(t, names, "phone")
	assert.Contains(t, names, "company")
	assert.GreaterOrEqual(t, len(fields), 4, "every failing field is reported, not just the first")
}

func TestContactWhitespaceOnlyIsMissing(t *testing.T) {
	fields := fieldsOf(t, Contact(domain.ContactInput{Name: "   ", Email: "a@b.pt", Phone: "1", Company: "X"}))
	require.Len(t, fields, 1)
	assert.Equal(t, "name", fields[0].Field)
}

func TestContractStatusEnum(t *testing.T) {
	in := domain.ContractInput{
		TaxID: "507111222", ClientName: "Acme", SupplyPoint: "PT00012345", Supplier: "EDP",
	}
	assert.NoError(t, Contract(in))

	in.Status = "suspended"
	fields := fieldsOf(t, Contract(in))
	require.Len(t, fields, 1)
	assert.Equal(t, "status", fields[0].Field)
}

func TestContractNegativeNumbers(t *testing.T) {
	fields := fieldsOf(t, Contract(domain.ContractInput{
		TaxID: "507111222", ClientName: "Acme", SupplyPoint: "PT1", Supplier: "EDP",
		Consumption: -1, Commission: -2,
	}))
	assert.Len(t, fields, 2)
}

func TestUserRoleRequired(t *testing.T) {
	fields := fieldsOf(t, PortalUser(domain.PortalUserInput{Name: "Rui", Email: "rui@x.pt"}))
	require.Len(t, fields, 1)
	assert.Equal(t, "role", fields[0].Field)
}

func TestSimulationTariffEnum(t *testing.T) {
	in := domain.SimulationInput{Name: "Acme", TaxID: "507111222", Tariff: domain.TariffBoth}
	assert.NoError(t, Simulation(in))

	in.Tariff = "spot"
	fields := fieldsOf(t, Simulation(in))
	require.Len(t, fields, 1)
	assert.Equal(t, "tariff", fields[0].Field)
}

func TestOccurrenceRequiredFields(t *testing.T) {
	fields := fieldsOf(t, Occurrence(domain.OccurrenceInput{Subject: "Outage"}))
	assert.Len(t, fields, 3)
}
