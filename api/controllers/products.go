package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/averyhale/meadowcart-backend/api/responses"
	"github.com/averyhale/meadowcart-backend/api/validators"
	product "github.com/averyhale/meadowcart-backend/internal/products"
	"github.com/averyhale/meadowcart-backend/pkg/logger"
)

// ProductsList serves the public catalog with optional search, featured
// filter, and paging.
func ProductsList(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters, err := listFiltersFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListProducts(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ProductBySlug serves one product detail page.
func ProductBySlug(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dto, err := svc.GetProductBySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func listFiltersFromQuery(r *http.Request) (product.ListFilters, error) {
	limit, err := validators.ParseQueryInt(r, "limit", 0, 0, 100)
	if err != nil {
		return product.ListFilters{}, err
	}
	offset, err := validators.ParseQueryInt(r, "offset", 0, 0, 10000)
	if err != nil {
		return product.ListFilters{}, err
	}
	featured, err := validators.ParseQueryBool(r, "featured")
	if err != nil {
		return product.ListFilters{}, err
	}
	return product.ListFilters{
		Query:        validators.SanitizeString(r.URL.Query().Get("q"), 120),
		FeaturedOnly: featured,
		Limit:        limit,
		Offset:       offset,
	}, nil
}
