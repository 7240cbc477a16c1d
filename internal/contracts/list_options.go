package contracts

import (
	"sort"
	"time"

	"github.com/goliatone/go-estate/internal/progression"
)

// SortField selects the ordering applied to contract listings.
type SortField string

const (
	SortByCreatedAt SortField = "created_at"
	SortByExpiresAt SortField = "expires_at"
	SortByReference SortField = "reference"
)

// ListOptions narrows contract listings.
type ListOptions struct {
	// Statuses restricts results to the given statuses. Explicitly listed
	// terminal statuses are returned even when IncludeTerminal is false.
	Statuses []Status
	// IncludeTerminal keeps CANCELLED/TERMINATED contracts in unfiltered listings.
	IncludeTerminal bool
	// ExpiringWithin keeps contracts whose expiry falls between now and now+window.
	// Contracts already expired or without an expiry are dropped.
	ExpiringWithin time.Duration
	SortBy         SortField
	Descending     bool
}

// Summary aggregates contract counts for dashboard tabs.
type Summary struct {
	Total        int
	Active       int
	Completed    int
	Terminated   int
	ExpiringSoon int
	ByStatus     map[Status]int
}

// FilterContracts applies opts to records in a single pass and sorts the result.
// Records are not copied.
func FilterContracts(records []*Contract, opts ListOptions, resolver *progression.Resolver, now time.Time) []*Contract {
	wanted := make(map[Status]struct{}, len(opts.Statuses))
	for _, status := range opts.Statuses {
		wanted[status] = struct{}{}
	}

	out := make([]*Contract, 0, len(records))
	for _, record := range records {
		if record == nil {
			continue
		}
		if len(wanted) > 0 {
			if _, ok := wanted[record.CurrentStatus]; !ok {
				continue
			}
		} else if !opts.IncludeTerminal && resolver.IsTerminal(record.CurrentStatus) {
			continue
		}
		if opts.ExpiringWithin > 0 && !expiresWithin(record, now, opts.ExpiringWithin) {
			continue
		}
		out = append(out, record)
	}

	sortContracts(out, opts.SortBy, opts.Descending)
	return out
}

// Summarize counts records per dashboard tab. Completed means the contract sits
// on the last path step; expiring soon only counts active contracts.
func Summarize(records []*Contract, resolver *progression.Resolver, now time.Time, window time.Duration) Summary {
	summary := Summary{ByStatus: make(map[Status]int)}
	path := resolver.Table().Path()
	var final Status
	if len(path) > 0 {
		final = path[len(path)-1]
	}

	for _, record := range records {
		if record == nil {
			continue
		}
		summary.Total++
		summary.ByStatus[record.CurrentStatus]++
		switch {
		case resolver.IsTerminal(record.CurrentStatus):
			summary.Terminated++
		case record.CurrentStatus == final:
			summary.Completed++
		default:
			summary.Active++
			if window > 0 && expiresWithin(record, now, window) {
				summary.ExpiringSoon++
			}
		}
	}
	return summary
}

func expiresWithin(record *Contract, now time.Time, window time.Duration) bool {
	if record.ExpiresAt == nil {
		return false
	}
	expires := *record.ExpiresAt
	return !expires.Before(now) && !expires.After(now.Add(window))
}

func sortContracts(records []*Contract, field SortField, descending bool) {
	less := func(a, b *Contract) bool {
		switch field {
		case SortByExpiresAt:
			switch {
			case a.ExpiresAt == nil:
				return false
			case b.ExpiresAt == nil:
				return true
			case !a.ExpiresAt.Equal(*b.ExpiresAt):
				return a.ExpiresAt.Before(*b.ExpiresAt)
			}
		case SortByReference:
			if a.Reference != b.Reference {
				return a.Reference < b.Reference
			}
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
		}
		return a.Reference < b.Reference
	}

	sort.SliceStable(records, func(i, j int) bool {
		if descending {
			return less(records[j], records[i])
		}
		return less(records[i], records[j])
	})
}
