package controllers

import (
	"net/http"

	"github.com/confeccionesismael/storefront-backend/api/responses"
	"github.com/confeccionesismael/storefront-backend/internal/shipping"
	"github.com/confeccionesismael/storefront-backend/pkg/logger"
)

// ListShippingZones returns the active delivery zones and their costs.
func ListShippingZones(svc shipping.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		zones, err := svc.ListZones(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"zones": zones})
	}
}
