package workflow

import (
	"net/url"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Query narrows list views. Empty fields match everything and the status
// "all" matches any record.
type Query struct {
	SearchText string
	Status     string
	FromDate   string
	ToDate     string
}

// Searchable is implemented by the records list views can filter.
type Searchable interface {
	searchFields() []string
	filterStatus() string
	filterCreatedAt() time.Time
}

func (m Membership) searchFields() []string {
	return []string{m.FullName, m.RegistrationNumber, m.Email, m.WhatsAppNumber}
}

func (m Membership) filterStatus() string { return string(m.Status) }

func (m Membership) filterCreatedAt() time.Time { return m.CreatedAt }

func (o Offer) searchFields() []string {
	return []string{o.Company, o.Position, o.Country, o.Field}
}

func (o Offer) filterStatus() string { return "" }

func (o Offer) filterCreatedAt() time.Time { return o.CreatedAt }

func (d ApplicationDetail) searchFields() []string {
	return append(d.Member.searchFields(), d.Offer.searchFields()...)
}

func (d ApplicationDetail) filterStatus() string { return string(d.Application.Status) }

func (d ApplicationDetail) filterCreatedAt() time.Time { return d.Application.CreatedAt }

// ParseQuery reads q, status, from and to from URL query values.
func ParseQuery(values url.Values) Query {
	return Query{
		SearchText: strings.TrimSpace(values.Get("q")),
		Status:     strings.TrimSpace(values.Get("status")),
		FromDate:   dateBound(values.Get("from")),
		ToDate:     dateBound(values.Get("to")),
	}
}

// Matches reports whether record satisfies every populated criterion of q.
func Matches(record Searchable, q Query) bool {
	if text := strings.ToLower(strings.TrimSpace(q.SearchText)); text != "" {
		found := false
		for _, field := range record.searchFields() {
			if strings.Contains(strings.ToLower(field), text) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if status := normalizeToken(q.Status); status != "" && status != "all" {
		if normalizeToken(record.filterStatus()) != status {
			return false
		}
	}

	day := record.filterCreatedAt().UTC().Format(dateLayout)
	if from := dateBound(q.FromDate); from != "" && day < from {
		return false
	}
	if to := dateBound(q.ToDate); to != "" && day > to {
		return false
	}
	return true
}

// Filter returns the records of items matching q, preserving order.
func Filter[T Searchable](items []T, q Query) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if Matches(item, q) {
			out = append(out, item)
		}
	}
	return out
}

func dateBound(value string) string {
	value = strings.TrimSpace(value)
	if len(value) > len(dateLayout) {
		value = value[:len(dateLayout)]
	}
	return value
}
