package httpapi

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/mapcrown/mapcrown/internal/app"
)

type sessionKey struct{}

// session attaches the visitor's app.Session, issuing a cookie on first visit.
func (h *handlers) session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if c, err := r.Cookie(h.d.CookieName); err == nil {
			if _, err := uuid.Parse(c.Value); err == nil {
				id = c.Value
			}
		}
		if id == "" {
			id = uuid.NewString()
		}
		http.SetCookie(w, &http.Cookie{
			Name:     h.d.CookieName,
			Value:    id,
			Path:     "/",
			MaxAge:   int(h.d.SessionTTL.Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		s := h.d.Sessions.Get(id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, s)))
	})
}

func sessionFrom(ctx context.Context) *app.Session {
	s, _ := ctx.Value(sessionKey{}).(*app.Session)
	return s
}
