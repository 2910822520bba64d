package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/confeccionesismael/storefront-backend/api/middleware"
	cartsvc "github.com/confeccionesismael/storefront-backend/internal/cart"
	"github.com/confeccionesismael/storefront-backend/pkg/types"
	"github.com/google/uuid"
)

type stubCartService struct {
	lastOwner    cartsvc.Owner
	lastVariant  uuid.UUID
	lastQuantity int
	dto          *cartsvc.CartDTO
	err          error
}

func (s *stubCartService) GetCart(ctx context.Context, owner cartsvc.Owner) (*cartsvc.CartDTO, error) {
	s.lastOwner = owner
	return s.dto, s.err
}

func (s *stubCartService) AddItem(ctx context.Context, owner cartsvc.Owner, variantID uuid.UUID, quantity int) (*cartsvc.CartDTO, error) {
	s.lastOwner = owner
	s.lastVariant = variantID
	s.lastQuantity = quantity
	return s.dto, s.err
}

func (s *stubCartService) SetQuantity(ctx context.Context, owner cartsvc.Owner, itemID uuid.UUID, quantity int) (*cartsvc.CartDTO, error) {
	s.lastOwner = owner
	s.lastQuantity = quantity
	return s.dto, s.err
}

func (s *stubCartService) RemoveItem(ctx context.Context, owner cartsvc.Owner, itemID uuid.UUID) (*cartsvc.CartDTO, error) {
	s.lastOwner = owner
	return s.dto, s.err
}

func (s *stubCartService) Clear(ctx context.Context, owner cartsvc.Owner) (*cartsvc.CartDTO, error) {
	s.lastOwner = owner
	return s.dto, s.err
}

func (s *stubCartService) MergeGuestCart(ctx context.Context, sessionKey string, userID uuid.UUID) error {
	return s.err
}

func guestRequest(method, target string, body []byte) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	return req.WithContext(middleware.WithSessionKey(req.Context(), "guest-key"))
}

func TestGetCartUsesGuestSession(t *testing.T) {
	svc := &stubCartService{dto: &cartsvc.CartDTO{}}
	handler := GetCart(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, guestRequest(http.MethodGet, "/cart", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastOwner.SessionKey != "guest-key" {
		t.Fatalf("expected guest owner, got %+v", svc.lastOwner)
	}
}

func TestGetCartPrefersUserIdentity(t *testing.T) {
	svc := &stubCartService{dto: &cartsvc.CartDTO{}}
	handler := GetCart(svc, nil)

	userID := uuid.New()
	req := guestRequest(http.MethodGet, "/cart", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastOwner.UserID == nil || *svc.lastOwner.UserID != userID {
		t.Fatalf("expected user owner, got %+v", svc.lastOwner)
	}
	if svc.lastOwner.SessionKey != "" {
		t.Fatal("session key should be dropped for logged-in users")
	}
}

func TestGetCartWithoutIdentity(t *testing.T) {
	handler := GetCart(&stubCartService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAddCartItem(t *testing.T) {
	svc := &stubCartService{dto: &cartsvc.CartDTO{}}
	handler := AddCartItem(svc, nil)

	variantID := uuid.New()
	body, _ := json.Marshal(map[string]any{"variant_id": variantID, "quantity": 2})
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, guestRequest(http.MethodPost, "/cart/items", body))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if svc.lastVariant != variantID || svc.lastQuantity != 2 {
		t.Fatalf("unexpected call: variant %s qty %d", svc.lastVariant, svc.lastQuantity)
	}
}

func TestAddCartItemRejectsHugeQuantity(t *testing.T) {
	handler := AddCartItem(&stubCartService{}, nil)

	body, _ := json.Marshal(map[string]any{"variant_id": uuid.New(), "quantity": 5000})
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, guestRequest(http.MethodPost, "/cart/items", body))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	var envelope types.ErrorEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != "INVALID_QUANTITY" {
		t.Fatalf("unexpected code %s", envelope.Error.Code)
	}
}

func TestAddCartItemRejectsUnknownFields(t *testing.T) {
	handler := AddCartItem(&stubCartService{}, nil)

	body := []byte(`{"variant_id":"` + uuid.NewString() + `","qty":2}`)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, guestRequest(http.MethodPost, "/cart/items", body))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
