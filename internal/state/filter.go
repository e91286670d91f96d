package state

import (
	"fmt"
	"strings"

	"github.com/five82/extman/internal/gateway"
)

// Filter selects which extensions are visible.
type Filter int

const (
	FilterAll Filter = iota
	FilterActive
	FilterInactive
)

// Filters lists every filter in tab order.
var Filters = []Filter{FilterAll, FilterActive, FilterInactive}

// String returns the lowercase name used on the command line.
func (f Filter) String() string {
	switch f {
	case FilterActive:
		return "active"
	case FilterInactive:
		return "inactive"
	default:
		return "all"
	}
}

// Label returns the display label.
func (f Filter) Label() string {
	switch f {
	case FilterActive:
		return "Active"
	case FilterInactive:
		return "Inactive"
	default:
		return "All"
	}
}

// Next returns the following filter in tab order, wrapping around.
func (f Filter) Next() Filter {
	for i, candidate := range Filters {
		if candidate == f {
			return Filters[(i+1)%len(Filters)]
		}
	}
	return FilterAll
}

// ParseFilter maps "all", "active" or "inactive" (any case) to a Filter.
func ParseFilter(value string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "all":
		return FilterAll, nil
	case "active":
		return FilterActive, nil
	case "inactive":
		return FilterInactive, nil
	}
	return FilterAll, fmt.Errorf("unknown filter %q (want all, active or inactive)", value)
}

// Matches reports whether ext passes f.
func (f Filter) Matches(ext gateway.Extension) bool {
	switch f {
	case FilterActive:
		return ext.IsActive
	case FilterInactive:
		return !ext.IsActive
	default:
		return true
	}
}

// Visible returns the order-preserving subsequence of items that pass f.
// The result is a fresh slice; items is never modified.
func Visible(items []gateway.Extension, f Filter) []gateway.Extension {
	out := make([]gateway.Extension, 0, len(items))
	for _, ext := range items {
		if f.Matches(ext) {
			out = append(out, ext)
		}
	}
	return out
}

// Counts tallies items per filter.
type Counts struct {
	All      int
	Active   int
	Inactive int
}

// For returns the tally for f.
func (c Counts) For(f Filter) int {
	switch f {
	case FilterActive:
		return c.Active
	case FilterInactive:
		return c.Inactive
	default:
		return c.All
	}
}

// CountFilters tallies items for every filter.
func CountFilters(items []gateway.Extension) Counts {
	c := Counts{All: len(items)}
	for _, ext := range items {
		if ext.IsActive {
			c.Active++
		} else {
			c.Inactive++
		}
	}
	return c
}
