package middleware

import (
	"net/http"
	"strings"
)

// CaseInsensitiveMiddleware lowercases the URL path before routing.
// Odoo model names are lowercase, so /api/odoo/Res.Partner reaches the
// res.partner routes.
func CaseInsensitiveMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.URL.Path = strings.ToLower(r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
