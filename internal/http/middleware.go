package http

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const sessionCookie = "cart_session"

type contextKey string

const sessionKey contextKey = "session_id"

// SessionMiddleware attaches an anonymous session ID to every request.
// API clients may pass X-Session-ID; browsers get a cookie minted on first
// contact. The same ID keys the session's cart across requests.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.Header.Get("X-Session-ID")
		if sessionID == "" {
			if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
				sessionID = c.Value
			}
		}
		if sessionID == "" {
			sessionID = uuid.New().String()
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookie,
				Value:    sessionID,
				Path:     "/",
				Expires:  time.Now().Add(30 * 24 * time.Hour),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), sessionKey, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFromContext(ctx context.Context) string {
	if sessionID, ok := ctx.Value(sessionKey).(string); ok {
		return sessionID
	}
	return ""
}
