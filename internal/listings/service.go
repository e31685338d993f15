package listings

import (
	"context"
	"fmt"
	"strings"

	pkgerrors "github.com/elarose/storefront/pkg/errors"
	"github.com/elarose/storefront/pkg/pagination"
)

const (
	defaultPageSize = 9
	maxPageSize     = 48
)

// Service serves the read-only listing catalog.
type Service interface {
	List(ctx context.Context, query Query) (pagination.Page[Listing], error)
	Get(ctx context.Context, id string) (*Listing, error)
	Markers(ctx context.Context, filter Filter) ([]MapMarker, error)
}

type ServiceParams struct {
	Listings        []Listing
	DefaultPageSize int
}

type service struct {
	items    []Listing
	byID     map[string]int
	pageSize int
}

// NewService indexes items. The slice is copied so later changes by the
// caller are not observed.
func NewService(params ServiceParams) (Service, error) {
	if params.Listings == nil {
		return nil, fmt.Errorf("listings dataset required")
	}
	items := make([]Listing, len(params.Listings))
	copy(items, params.Listings)
	byID := make(map[string]int, len(items))
	for i, l := range items {
		byID[l.ID] = i
	}
	pageSize := params.DefaultPageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &service{items: items, byID: byID, pageSize: pageSize}, nil
}

func (s *service) List(_ context.Context, query Query) (pagination.Page[Listing], error) {
	if err := validateFilter(query.Filter); err != nil {
		return pagination.Page[Listing]{}, err
	}
	switch {
	case query.PageSize <= 0:
		query.PageSize = s.pageSize
	case query.PageSize > maxPageSize:
		query.PageSize = maxPageSize
	}
	return query.Run(s.items), nil
}

func (s *service) Get(_ context.Context, id string) (*Listing, error) {
	idx, ok := s.byID[strings.TrimSpace(id)]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
	}
	listing := s.items[idx]
	return &listing, nil
}

func (s *service) Markers(_ context.Context, filter Filter) ([]MapMarker, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	return Markers(filterListings(s.items, filter)), nil
}

func validateFilter(f Filter) error {
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return pkgerrors.Fields("invalid price range", map[string]string{"minPrice": "must not exceed maxPrice"})
	}
	if f.MinBedrooms < 0 {
		return pkgerrors.Fields("invalid filter", map[string]string{"minBedrooms": "must not be negative"})
	}
	return nil
}
