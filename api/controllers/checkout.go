package controllers

import (
	"net/http"

	"github.com/confeccionesismael/storefront-backend/api/responses"
	"github.com/confeccionesismael/storefront-backend/api/validators"
	checkoutsvc "github.com/confeccionesismael/storefront-backend/internal/checkout"
	"github.com/confeccionesismael/storefront-backend/pkg/enums"
	pkgerrors "github.com/confeccionesismael/storefront-backend/pkg/errors"
	"github.com/confeccionesismael/storefront-backend/pkg/logger"
	"github.com/google/uuid"
)

type checkoutRequest struct {
	CustomerName   string     `json:"customer_name" validate:"required,min=2,max=150"`
	CustomerPhone  string     `json:"customer_phone" validate:"required,max=30"`
	CustomerEmail  string     `json:"customer_email" validate:"omitempty,email"`
	Address        string     `json:"address" validate:"omitempty,max=500"`
	Notes          string     `json:"notes" validate:"omitempty,max=1000"`
	IsPickup       bool       `json:"is_pickup"`
	ShippingZoneID *uuid.UUID `json:"shipping_zone_id"`
	PaymentMethod  string     `json:"payment_method" validate:"omitempty,oneof=arrange cash_on_delivery transfer"`
}

// Checkout converts the request's active cart into an order.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		owner, err := cartOwnerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Execute(r.Context(), checkoutsvc.Input{
			Owner:         owner,
			CustomerName:  payload.CustomerName,
			CustomerPhone: payload.CustomerPhone,
			CustomerEmail: payload.CustomerEmail,
			Address:       payload.Address,
			Notes:         payload.Notes,
			IsPickup:      payload.IsPickup,
			ShippingZone:  payload.ShippingZoneID,
			PaymentMethod: enums.PaymentMethod(payload.PaymentMethod),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}
