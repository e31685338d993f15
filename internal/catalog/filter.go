package catalog

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/elarose/storefront/pkg/db/models"
	"github.com/elarose/storefront/pkg/enums"
	"github.com/elarose/storefront/pkg/pagination"
)

// Filter narrows a fetched product set. Every criterion is optional and all
// of them must hold.
type Filter struct {
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Search   string
	Sizes    []string
	Colors   []string
}

// Matches reports whether p satisfies every criterion in f.
func (f Filter) Matches(p models.Product) bool {
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.Description), q) {
			return false
		}
	}
	if len(f.Sizes) > 0 && !offersAny(p.Sizes, f.Sizes) {
		return false
	}
	if len(f.Colors) > 0 && !offersAny(p.Colors, f.Colors) {
		return false
	}
	return true
}

func offersAny(offered []string, wanted []string) bool {
	for _, w := range wanted {
		for _, o := range offered {
			if strings.EqualFold(strings.TrimSpace(o), strings.TrimSpace(w)) {
				return true
			}
		}
	}
	return false
}

// ApplyFilter returns the products matching f in their original order.
func ApplyFilter(products []models.Product, f Filter) []models.Product {
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if f.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}

// SortProducts returns a reordered copy. Newest keeps the input order, which
// the repository already returns newest first.
func SortProducts(products []models.Product, order enums.ProductSort) []models.Product {
	out := make([]models.Product, len(products))
	copy(out, products)

	var less func(a, b models.Product) bool
	switch order {
	case enums.SortPriceAsc:
		less = func(a, b models.Product) bool { return a.Price.LessThan(b.Price) }
	case enums.SortPriceDesc:
		less = func(a, b models.Product) bool { return a.Price.GreaterThan(b.Price) }
	case enums.SortName:
		less = func(a, b models.Product) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	case enums.SortRating:
		less = func(a, b models.Product) bool { return a.AverageRating > b.AverageRating }
	default:
		return out
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// FilterState is the browse state of a catalog page. Any change to the
// filter or sort returns the state to page one.
type FilterState struct {
	Filter   Filter
	Sort     enums.ProductSort
	Page     int
	PageSize int
}

func NewFilterState(pageSize int) FilterState {
	return FilterState{Sort: enums.SortNewest, Page: 1, PageSize: pageSize}
}

func (s FilterState) WithFilter(f Filter) FilterState {
	s.Filter = f
	s.Page = 1
	return s
}

func (s FilterState) WithSort(order enums.ProductSort) FilterState {
	s.Sort = order
	s.Page = 1
	return s
}

func (s FilterState) WithPage(page int) FilterState {
	if page < 1 {
		page = 1
	}
	s.Page = page
	return s
}

// Run filters, sorts and paginates products.
func (s FilterState) Run(products []models.Product) pagination.Page[models.Product] {
	filtered := ApplyFilter(products, s.Filter)
	sorted := SortProducts(filtered, s.Sort)
	return pagination.SlicePage(sorted, s.Page, s.PageSize)
}
