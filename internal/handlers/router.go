package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/xelth-com/eckodoo/internal/buildinfo"
	"github.com/xelth-com/eckodoo/internal/logger"
	"github.com/xelth-com/eckodoo/internal/middleware"
	"github.com/xelth-com/eckodoo/internal/services/odoo"
)

// Router wraps the mux router and the Odoo client
type Router struct {
	*mux.Router
	client *odoo.Client
}

// NewRouter creates a new HTTP router with all routes
func NewRouter(client *odoo.Client, jwtSecret string, log *logger.Logger) *Router {
	r := &Router{
		Router: mux.NewRouter(),
		client: client,
	}
	r.Use(middleware.RequestLogger(log))

	// Health check endpoint
	r.HandleFunc("/health", r.healthCheck).Methods("GET")

	// Odoo routes (protected)
	api := r.PathPrefix("/api/odoo").Subrouter()
	api.Use(middleware.AuthMiddleware(jwtSecret))
	api.HandleFunc("/{model}", r.createRecord).Methods("POST")
	api.HandleFunc("/{model}", r.readRecords).Methods("GET")
	api.HandleFunc("/{model}/fields", r.fieldsGet).Methods("GET")
	api.HandleFunc("/{model}/search", r.searchRecords).Methods("POST")
	api.HandleFunc("/{model}/search_read", r.searchReadRecords).Methods("POST")
	api.HandleFunc("/{model}/count", r.countRecords).Methods("POST")
	api.HandleFunc("/{model}/{id:[0-9]+}", r.updateRecord).Methods("PUT")
	api.HandleFunc("/{model}/{id:[0-9]+}", r.deleteRecord).Methods("DELETE")

	return r
}

// Handler returns the router wrapped in the path-normalizing middleware.
func (r *Router) Handler() http.Handler {
	return middleware.CaseInsensitiveMiddleware(r)
}

// healthCheck returns the health status of the API
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	cfg := r.client.Config()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"build":  buildinfo.Get(),
		"odoo": map[string]interface{}{
			"url":       cfg.BaseURL(),
			"database":  cfg.Database,
			"connected": r.client.UID() > 0,
		},
	})
}

// ensureSession authenticates on first use. It writes the error response
// and returns false when that fails.
func (r *Router) ensureSession(w http.ResponseWriter, req *http.Request) bool {
	if r.client.UID() > 0 {
		return true
	}
	if _, err := r.client.Connect(); err != nil {
		respondOdooError(w, req, err)
		return false
	}
	return true
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// respondOdooError maps client errors to HTTP statuses.
func respondOdooError(w http.ResponseWriter, req *http.Request, err error) {
	log := logger.FromRequest(req)

	var validationErr *odoo.ValidationError
	var authErr *odoo.AuthenticationError
	var remoteErr *odoo.RemoteError

	switch {
	case errors.As(err, &validationErr):
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error": validationErr.Error(),
			"field": validationErr.Field,
		})
	case errors.As(err, &authErr):
		log.Warn().Err(err).Msg("odoo authentication failed")
		respondError(w, http.StatusUnauthorized, authErr.Error())
	case errors.As(err, &remoteErr):
		log.Warn().Err(err).Msg("odoo call failed")
		respondError(w, http.StatusBadGateway, remoteErr.Error())
	default:
		log.Error().Err(err).Msg("unexpected error")
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}
