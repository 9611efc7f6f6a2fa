package httpx

import (
	"context"
	"net/http"
	"time"
)

// AuthCookieName matches what the remote API issues; the same bearer token is
// attached to every outgoing API call.
const AuthCookieName = "accessToken"

const authCookieTTL = 7 * 24 * time.Hour

type ctxKey int

const tokenKey ctxKey = iota

// Guard redirects unauthenticated visitors to the auth entry point before any
// protected handler runs. No cookie means no data fetching happens at all.
func Guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(AuthCookieName)
		if err != nil || c.Value == "" {
			http.Redirect(w, r, "/auth", http.StatusSeeOther)
			return
		}
		ctx := context.WithValue(r.Context(), tokenKey, c.Value)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Token returns the bearer token the guard placed on the context.
func Token(ctx context.Context) string {
	if t, ok := ctx.Value(tokenKey).(string); ok {
		return t
	}
	return ""
}

func setAuthCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(authCookieTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
