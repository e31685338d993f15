package listings

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/elarose/storefront/pkg/pagination"
)

// SortOrder orders listings by price. The zero value keeps dataset order.
type SortOrder string

const (
	SortDefault   SortOrder = ""
	SortPriceAsc  SortOrder = "price_asc"
	SortPriceDesc SortOrder = "price_desc"
)

// ParseSortOrder accepts the query-string forms of SortOrder.
func ParseSortOrder(value string) (SortOrder, bool) {
	switch SortOrder(strings.ToLower(strings.TrimSpace(value))) {
	case SortDefault:
		return SortDefault, true
	case SortPriceAsc:
		return SortPriceAsc, true
	case SortPriceDesc:
		return SortPriceDesc, true
	}
	return SortDefault, false
}

// Filter narrows the listing set. Empty fields are ignored.
type Filter struct {
	City        string
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	MinBedrooms int
	Type        string
	Search      string
}

func (f Filter) Matches(l Listing) bool {
	if c := strings.TrimSpace(f.City); c != "" && !strings.EqualFold(strings.TrimSpace(l.City), c) {
		return false
	}
	if f.MinPrice != nil && l.PriceCAD.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && l.PriceCAD.GreaterThan(*f.MaxPrice) {
		return false
	}
	if l.Bedrooms < f.MinBedrooms {
		return false
	}
	if t := strings.TrimSpace(f.Type); t != "" && !strings.EqualFold(l.Type, t) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		haystack := strings.ToLower(strings.Join([]string{l.Title, l.Address, l.City, l.Description}, " "))
		if !strings.Contains(haystack, q) {
			return false
		}
	}
	return true
}

// Query is a filter plus ordering and paging.
type Query struct {
	Filter   Filter
	Sort     SortOrder
	Page     int
	PageSize int
}

// Run filters, sorts and pages items without modifying them.
func (q Query) Run(items []Listing) pagination.Page[Listing] {
	return pagination.SlicePage(sortListings(filterListings(items, q.Filter), q.Sort), q.Page, q.PageSize)
}

func filterListings(items []Listing, f Filter) []Listing {
	out := make([]Listing, 0, len(items))
	for _, l := range items {
		if f.Matches(l) {
			out = append(out, l)
		}
	}
	return out
}

func sortListings(items []Listing, order SortOrder) []Listing {
	switch order {
	case SortPriceAsc:
		sort.SliceStable(items, func(i, j int) bool { return items[i].PriceCAD.LessThan(items[j].PriceCAD) })
	case SortPriceDesc:
		sort.SliceStable(items, func(i, j int) bool { return items[i].PriceCAD.GreaterThan(items[j].PriceCAD) })
	}
	return items
}
