package service

import (
	"strings"

	"github.com/enerlink/parceiros-api-go/internal/domain"
)

// containsFold reports whether any of the fields contains q, ignoring case.
// An empty query matches everything.
func containsFold(q string, fields ...string) bool {
	if q == "" {
		return true
	}
	q = strings.ToLower(q)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// filter keeps the rows for which match returns true, preserving order.
func filter[T any](rows []T, match func(T) bool) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if match(r) {
			out = append(out, r)
		}
	}
	return out
}

func FilterContacts(rows []domain.Contact, q string) []domain.Contact {
	return filter(rows, func(c domain.Contact) bool {
		return containsFold(q, c.Name, c.Email, c.Company)
	})
}

func FilterContracts(rows []domain.Contract, q, status string) []domain.Contract {
	return filter(rows, func(c domain.Contract) bool {
		if status != "" && c.Status != status {
			return false
		}
		return containsFold(q, c.ClientName, c.TaxID, c.SupplyPoint, c.Supplier)
	})
}

func FilterRequests(rows []domain.Request, q, status string) []domain.Request {
	return filter(rows, func(r domain.Request) bool {
		if status != "" && r.Status != status {
			return false
		}
		return containsFold(q, r.Subject, r.ClientName, r.ClientTaxID)
	})
}

func FilterOccurrences(rows []domain.Occurrence, q, status string) []domain.Occurrence {
	return filter(rows, func(o domain.Occurrence) bool {
		if status != "" && o.Status != status {
			return false
		}
		return containsFold(q, o.Subject, o.ClientName, o.Code, o.MeterPointID)
	})
}

func FilterUsers(rows []domain.PortalUser, q, status string) []domain.PortalUser {
	return filter(rows, func(u domain.PortalUser) bool {
		if status != "" && u.Status != status {
			return false
		}
		return containsFold(q, u.Name, u.Email, u.Company)
	})
}

func FilterSimulations(rows []domain.Simulation, q, status string) []domain.Simulation {
	return filter(rows, func(s domain.Simulation) bool {
		if status != "" && s.Status != status {
			return false
		}
		return containsFold(q, s.Name, s.TaxID)
	})
}

// Paginate slices rows for a 1-based page. Out-of-range pages yield an
// empty slice.
func Paginate[T any](rows []T, page, pageSize int) []T {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	start := (page - 1) * pageSize
	if start >= len(rows) {
		return []T{}
	}
	end := start + pageSize
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}
