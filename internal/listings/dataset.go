package listings

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/elarose/storefront/pkg/logger"
	"github.com/elarose/storefront/pkg/maps"
)

// LoadFile reads the listing dataset from path.
func LoadFile(path string) ([]Listing, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open listings dataset: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses a JSON array of listings and checks ids are present and
// unique.
func Decode(r io.Reader) ([]Listing, error) {
	var items []Listing
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode listings dataset: %w", err)
	}
	seen := make(map[string]struct{}, len(items))
	for i := range items {
		id := strings.TrimSpace(items[i].ID)
		if id == "" {
			return nil, fmt.Errorf("listing at index %d has no id", i)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("duplicate listing id %q", id)
		}
		if items[i].PriceCAD.IsNegative() {
			return nil, fmt.Errorf("listing %q has a negative price", id)
		}
		seen[id] = struct{}{}
		items[i].ID = id
		if items[i].Images == nil {
			items[i].Images = []string{}
		}
	}
	return items, nil
}

type geocoder interface {
	Geocode(ctx context.Context, address string) (*maps.GeocodeResult, error)
}

// GeocodeMissing fills in coordinates for listings that lack them and
// returns how many were resolved. Lookups that fail are logged and the
// listing keeps no coordinates.
func GeocodeMissing(ctx context.Context, items []Listing, geo geocoder, logg *logger.Logger) int {
	resolved := 0
	for i := range items {
		if items[i].Coordinates != nil {
			continue
		}
		address := items[i].fullAddress()
		if address == "" {
			continue
		}
		result, err := geo.Geocode(ctx, address)
		if err != nil {
			if logg != nil {
				logg.Warn(logg.WithFields(ctx, map[string]any{
					"listing_id": items[i].ID,
					"error":      err.Error(),
				}), "listing geocode failed")
			}
			continue
		}
		items[i].Coordinates = &Coordinates{Lat: result.Location.Latitude, Lng: result.Location.Longitude}
		resolved++
	}
	return resolved
}
