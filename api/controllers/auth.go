package controllers

import (
	"net/http"

	"github.com/confeccionesismael/storefront-backend/api/middleware"
	"github.com/confeccionesismael/storefront-backend/api/responses"
	"github.com/confeccionesismael/storefront-backend/api/validators"
	"github.com/confeccionesismael/storefront-backend/internal/accounts"
	pkgerrors "github.com/confeccionesismael/storefront-backend/pkg/errors"
	"github.com/confeccionesismael/storefront-backend/pkg/logger"
)

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required,min=2,max=150"`
	Phone    string `json:"phone" validate:"omitempty,max=30"`
	Address  string `json:"address" validate:"omitempty,max=500"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type updateProfileRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,min=2,max=150"`
	Phone    *string `json:"phone" validate:"omitempty,max=30"`
	Address  *string `json:"address" validate:"omitempty,max=500"`
}

// Register creates a customer account and logs it in, folding any guest cart
// into the new account's cart.
func Register(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "accounts service unavailable"))
			return
		}

		var payload registerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Register(r.Context(), accounts.RegisterInput{
			Email:           payload.Email,
			Password:        payload.Password,
			FullName:        payload.FullName,
			Phone:           payload.Phone,
			Address:         payload.Address,
			GuestSessionKey: middleware.SessionKeyFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, session)
	}
}

// Login authenticates a customer or admin and merges the guest cart.
func Login(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "accounts service unavailable"))
			return
		}

		var payload loginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Login(r.Context(), accounts.LoginInput{
			Email:           payload.Email,
			Password:        payload.Password,
			GuestSessionKey: middleware.SessionKeyFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, session)
	}
}

// GetProfile returns the authenticated user's account details.
func GetProfile(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.GetProfile(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, profile)
	}
}

// UpdateProfile applies a partial edit to the authenticated user's profile.
func UpdateProfile(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProfileRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.UpdateProfile(r.Context(), userID, accounts.UpdateProfileInput{
			FullName: payload.FullName,
			Phone:    payload.Phone,
			Address:  payload.Address,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, profile)
	}
}
