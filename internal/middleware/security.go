package middleware

import (
	"net/http"
)

// SecurityHeaders adds security headers to HTTP responses
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()

		// Prevent clickjacking
		h.Set("X-Frame-Options", "DENY")

		// Prevent MIME type sniffing
		h.Set("X-Content-Type-Options", "nosniff")

		h.Set("Referrer-Policy", "no-referrer")

		// The calculator shell is self-contained: one inline script and
		// style, avatars from any https origin, websocket back to self
		h.Set("Content-Security-Policy",
			"default-src 'self'; "+
				"script-src 'self' 'unsafe-inline'; "+
				"style-src 'self' 'unsafe-inline'; "+
				"img-src 'self' data: https:; "+
				"connect-src 'self' ws: wss:; "+
				"frame-ancestors 'none'")

		h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")

		// Nothing the vault serves may be cached once unlocked
		h.Set("Cache-Control", "no-store")

		next.ServeHTTP(w, r)
	})
}
