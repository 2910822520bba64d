package controllers

import (
	"net/http"
	"strings"

	"github.com/confeccionesismael/storefront-backend/api/responses"
	"github.com/confeccionesismael/storefront-backend/api/validators"
	"github.com/confeccionesismael/storefront-backend/internal/catalog"
	pkgerrors "github.com/confeccionesismael/storefront-backend/pkg/errors"
	"github.com/confeccionesismael/storefront-backend/pkg/logger"
	"github.com/confeccionesismael/storefront-backend/pkg/pagination"
	"github.com/go-chi/chi/v5"
)

// ListProducts returns a cursor page of active products, optionally filtered
// by category slug.
func ListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListProducts(r.Context(), catalog.ListFilter{
			CategorySlug: validators.SanitizeString(r.URL.Query().Get("category"), 100),
			Cursor:       strings.TrimSpace(r.URL.Query().Get("cursor")),
			Limit:        limit,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

// GetProduct returns the full detail for one product by slug.
func GetProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := strings.TrimSpace(chi.URLParam(r, "slug"))
		if slug == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product slug required"))
			return
		}

		detail, err := svc.GetProduct(r.Context(), slug)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, detail)
	}
}

// ListCategories returns every active category.
func ListCategories(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := svc.ListCategories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"categories": categories})
	}
}
