package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/elarose/storefront/api/responses"
	"github.com/elarose/storefront/api/validators"
	"github.com/elarose/storefront/internal/listings"
	pkgerrors "github.com/elarose/storefront/pkg/errors"
	"github.com/elarose/storefront/pkg/logger"
)

func parseListingFilter(r *http.Request) (listings.Filter, error) {
	minPrice, err := validators.ParseQueryDecimal(r, "minPrice")
	if err != nil {
		return listings.Filter{}, err
	}
	maxPrice, err := validators.ParseQueryDecimal(r, "maxPrice")
	if err != nil {
		return listings.Filter{}, err
	}
	bedrooms, err := validators.ParseQueryInt(r, "bedrooms", 0, 0, 20)
	if err != nil {
		return listings.Filter{}, err
	}
	q := r.URL.Query()
	return listings.Filter{
		City:        strings.TrimSpace(q.Get("city")),
		MinPrice:    minPrice,
		MaxPrice:    maxPrice,
		MinBedrooms: bedrooms,
		Type:        strings.TrimSpace(q.Get("type")),
		Search:      validators.SanitizeString(q.Get("search"), maxSearchLength),
	}, nil
}

// ListingsList pages the MapleNest listings. Query: city, minPrice,
// maxPrice, bedrooms, type, search, sort, page, pageSize.
func ListingsList(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := parseListingFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, ok := listings.ParseSortOrder(r.URL.Query().Get("sort"))
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Fields("invalid sort", map[string]string{"sort": "unsupported value"}))
			return
		}
		page, err := validators.ParseQueryInt(r, "page", 1, 1, 10000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		pageSize, err := validators.ParseQueryInt(r, "pageSize", 0, 0, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.List(r.Context(), listings.Query{Filter: filter, Sort: order, Page: page, PageSize: pageSize})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func ListingsMarkers(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := parseListingFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		markers, err := svc.Markers(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, markers)
	}
}

func ListingsDetail(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listing, err := svc.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, listing)
	}
}
