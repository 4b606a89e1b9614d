package middleware

import "net/http"

// Unlocker reports whether the chat surface has been opened
type Unlocker interface {
	Unlocked() bool
}

// RequireUnlocked answers 404 until u is unlocked, so a locked vault looks
// like a plain calculator to anything probing its routes.
func RequireUnlocked(u Unlocker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !u.Unlocked() {
				http.NotFound(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
