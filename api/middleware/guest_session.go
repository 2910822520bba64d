package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/confeccionesismael/storefront-backend/pkg/config"
	"github.com/confeccionesismael/storefront-backend/pkg/logger"
	"github.com/google/uuid"
)

type guestSessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	GuestSessionKey(sessionKey string) string
}

// GuestSession ensures every request carries a guest session key. The key
// rides a cookie so anonymous carts survive page reloads; the Redis record
// tracks liveness and expires idle guest sessions along with their carts.
// Failures to touch Redis are logged, never fatal: a cart lookup still works
// off the cookie alone.
func GuestSession(cfg config.SessionConfig, store guestSessionStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionKey := ""
			if cookie, err := r.Cookie(cfg.GuestCookieName); err == nil {
				sessionKey = cookie.Value
			}
			if sessionKey == "" {
				sessionKey = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.GuestCookieName,
					Value:    sessionKey,
					Path:     "/",
					MaxAge:   int(cfg.GuestTTL.Seconds()),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := r.Context()
			if store != nil {
				if err := store.Set(ctx, store.GuestSessionKey(sessionKey), time.Now().UTC().Format(time.RFC3339), cfg.GuestTTL); err != nil && logg != nil {
					logg.Warn(logg.WithSessionKey(ctx, sessionKey), "guest_session.touch_failed")
				}
			}

			ctx = WithSessionKey(ctx, sessionKey)
			if logg != nil {
				ctx = logg.WithSessionKey(ctx, sessionKey)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
