package enums

import "fmt"

// ProductSort is the ordering applied to a filtered catalog.
type ProductSort string

const (
	SortNewest    ProductSort = "newest"
	SortPriceAsc  ProductSort = "price_asc"
	SortPriceDesc ProductSort = "price_desc"
	SortName      ProductSort = "name"
	SortRating    ProductSort = "rating"
)

// ParseProductSort accepts an empty value as newest.
func ParseProductSort(value string) (ProductSort, error) {
	switch ProductSort(value) {
	case "":
		return SortNewest, nil
	case SortNewest, SortPriceAsc, SortPriceDesc, SortName, SortRating:
		return ProductSort(value), nil
	}
	return "", fmt.Errorf("invalid sort %q", value)
}
