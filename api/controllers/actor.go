package controllers

import (
	"net/http"

	"github.com/confeccionesismael/storefront-backend/api/middleware"
	"github.com/confeccionesismael/storefront-backend/internal/cart"
	"github.com/confeccionesismael/storefront-backend/internal/orders"
	"github.com/confeccionesismael/storefront-backend/pkg/enums"
	pkgerrors "github.com/confeccionesismael/storefront-backend/pkg/errors"
	"github.com/google/uuid"
)

// cartOwnerFromRequest resolves the cart identity for the request. A logged-in
// user owns their account cart even while the guest cookie is still present.
func cartOwnerFromRequest(r *http.Request) (cart.Owner, error) {
	if raw := middleware.UserIDFromContext(r.Context()); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			return cart.Owner{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
		}
		return cart.Owner{UserID: &userID}, nil
	}
	if sessionKey := middleware.SessionKeyFromContext(r.Context()); sessionKey != "" {
		return cart.Owner{SessionKey: sessionKey}, nil
	}
	return cart.Owner{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "no session")
}

func userIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return userID, nil
}

func actorFromRequest(r *http.Request) (orders.Actor, error) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		return orders.Actor{}, err
	}
	role, err := enums.ParseUserRole(middleware.RoleFromContext(r.Context()))
	if err != nil {
		return orders.Actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid role")
	}
	return orders.Actor{UserID: &userID, Role: role}, nil
}
