package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/BlockchainHB/launchfast-sub005/internal/api/handlers"
	"github.com/BlockchainHB/launchfast-sub005/pkg/logger"
)

// NewRouter creates and configures the HTTP router
// SSOT: routing lives in this function only
func NewRouter(
	overrideHandler *handlers.OverrideHandler,
	marketHandler *handlers.MarketHandler,
	healthHandler *handlers.HealthHandler,
	log *logger.Logger,
) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthHandler.Check).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Override endpoints
	api.HandleFunc("/overrides/batch", overrideHandler.BatchUpsert).Methods("POST")
	api.HandleFunc("/overrides/{productID}", overrideHandler.Delete).Methods("DELETE")
	api.HandleFunc("/products/{id}/effective", overrideHandler.GetEffective).Methods("GET")

	// Market endpoints
	api.HandleFunc("/markets/recalculate-affected", marketHandler.RecalculateAffected).Methods("POST")
	api.HandleFunc("/markets/{id}/recalculate", marketHandler.Recalculate).Methods("POST")
	api.HandleFunc("/markets/{id}/snapshot", marketHandler.GetSnapshot).Methods("GET")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
