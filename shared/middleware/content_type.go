package middleware

import (
	"mime"
	"net/http"
)

// RequireJSON rejects POST, PUT and PATCH requests not declared as
// application/json, bodyless ones included. Browsers can send only form and
// text/plain bodies cross-site without a CORS preflight, so a session cookie
// alone never authorizes a write.
func RequireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil || mediaType != "application/json" {
				http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
