package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enerlink/parceiros-api-go/internal/domain"
)

func TestFilterRequestsMatchesSubjectClientAndTaxID(t *testing.T) {
	rows := []domain.Request{
		{ID: "1", Subject: "Billing question", ClientName: "Acme Energia", ClientTaxID: "507111222"},
		{ID: "2", Subject: "Meter swap", ClientName: "Beta Power", ClientTaxID: "509333444"},
		{ID: "3", Subject: "Contract renewal", ClientName: "acme subsidiary", ClientTaxID: "501555666"},
	}

	got := FilterRequests(rows, "ACME", "")
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "3", got[1].ID)

	got = FilterRequests(rows, "507", "")
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)

	got = FilterRequests(rows, "meter", "")
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].ID)
}

func TestFilterRequestsEmptyQueryKeepsOrder(t *testing.T) {
	rows := []domain.Request{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	got := FilterRequests(rows, "", "")
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "c", got[2].ID)
}

func TestFilterRequestsStatus(t *testing.T) {
	rows := []domain.Request{
		{ID: "1", Status: domain.RequestOpen, Subject: "x"},
		{ID: "2", Status: domain.RequestClosed, Subject: "x"},
	}

	got := FilterRequests(rows, "x", domain.RequestOpen)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
}

func TestFilterContractsByTaxIDAndStatus(t *testing.T) {
	rows := []domain.Contract{
		{ID: "1", ClientName: "Acme", TaxID: "507000111", Status: domain.ContractActive},
		{ID: "2", ClientName: "Acme", TaxID: "507000111", Status: domain.ContractExpired},
		{ID: "3", ClientName: "Other", TaxID: "509999999", Status: domain.ContractActive},
	}

	got := FilterContracts(rows, "507", domain.ContractActive)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
}

func TestFilterNoMatchReturnsEmptyNotNil(t *testing.T) {
	got := FilterContacts([]domain.Contact{{Name: "Ana"}}, "zzz")
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestPaginate(t *testing.T) {
	rows := []int{1, 2, 3, 4, 5}

	assert.Equal(t, []int{1, 2}, Paginate(rows, 1, 2))
	assert.Equal(t, []int{3, 4}, Paginate(rows, 2, 2))
	assert.Equal(t, []int{5}, Paginate(rows, 3, 2))
	assert.Empty(t, Paginate(rows, 4, 2))
	assert.Equal(t, []int{1, 2}, Paginate(rows, 0, 2), "page below 1 clamps to the first page")
}
