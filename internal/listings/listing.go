package listings

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Listing is one property in the MapleNest dataset.
type Listing struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	City        string          `json:"city"`
	Province    string          `json:"province"`
	Address     string          `json:"address"`
	PriceCAD    decimal.Decimal `json:"priceCAD"`
	Bedrooms    int             `json:"bedrooms"`
	Bathrooms   float64         `json:"bathrooms"`
	Sqft        int             `json:"sqft"`
	Type        string          `json:"type"`
	Images      []string        `json:"images"`
	Description string          `json:"description"`
	Coordinates *Coordinates    `json:"coordinates,omitempty"`
}

// MapMarker is the projection the map view needs.
type MapMarker struct {
	ID          string          `json:"id"`
	Coordinates Coordinates     `json:"coordinates"`
	Title       string          `json:"title"`
	Images      []string        `json:"images"`
	PriceCAD    decimal.Decimal `json:"priceCAD"`
}

// Markers projects listings onto the map. Listings without coordinates are
// skipped.
func Markers(items []Listing) []MapMarker {
	out := make([]MapMarker, 0, len(items))
	for _, l := range items {
		if l.Coordinates == nil {
			continue
		}
		out = append(out, MapMarker{
			ID:          l.ID,
			Coordinates: *l.Coordinates,
			Title:       l.Title,
			Images:      l.Images,
			PriceCAD:    l.PriceCAD,
		})
	}
	return out
}

func (l Listing) fullAddress() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{l.Address, l.City, l.Province} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, ", ") + ", Canada"
}
