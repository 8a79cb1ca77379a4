package middleware

import "net/http"

// NoStore marks responses as private and uncacheable. Every API response is
// scoped to the calling user.
func NoStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "private, no-store")
		next.ServeHTTP(w, r)
	})
}
