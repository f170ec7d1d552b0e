package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/brandt/screener/backend/internal/api/handlers"
	"github.com/brandt/screener/backend/internal/auth"
	"github.com/brandt/screener/backend/pkg/logger"
)

// Handlers bundles the route handlers the router mounts.
type Handlers struct {
	Auth      *handlers.AuthHandler
	Screen    *handlers.ScreenHandler
	Watchlist *handlers.WatchlistHandler
	Admin     *handlers.AdminHandler
}

// NewRouter creates and configures the HTTP router. Health and login are
// public; every other /api route requires a bearer token.
func NewRouter(h Handlers, authSvc *auth.Service, corsOrigins []string, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Public
	r.HandleFunc("/api/health", healthCheckHandler).Methods("GET")
	r.HandleFunc("/api/auth/login", h.Auth.Login).Methods("POST")

	// Token-protected
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authMiddleware(authSvc))

	api.HandleFunc("/auth/verify", h.Auth.Verify).Methods("GET")

	api.HandleFunc("/screen", h.Screen.Screen).Methods("POST")
	api.HandleFunc("/fields", h.Screen.Fields).Methods("GET")

	api.HandleFunc("/watchlist", h.Watchlist.List).Methods("GET")
	api.HandleFunc("/watchlist", h.Watchlist.Add).Methods("POST")
	api.HandleFunc("/watchlist/{id}", h.Watchlist.Remove).Methods("DELETE")

	api.HandleFunc("/admin/ingest", h.Admin.Ingest).Methods("POST")
	api.HandleFunc("/admin/ingest/progress", h.Admin.Progress).Methods("GET")
	api.HandleFunc("/admin/update-quotes", h.Admin.UpdateQuotes).Methods("POST")
	api.HandleFunc("/admin/stats", h.Admin.Stats).Methods("GET")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	// CORS wraps the router itself so preflights get answered even though
	// OPTIONS appears in no route's Methods list.
	return corsMiddleware(corsOrigins)(r)
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
	})
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

// authMiddleware verifies the bearer token and stores its subject on the
// request context
func authMiddleware(authSvc *auth.Service) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				unauthorized(w)
				return
			}

			subject, err := authSvc.Verify(token)
			if err != nil {
				unauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(handlers.WithSubject(r.Context(), subject)))
		})
	}
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{
		"error": "Invalid or expired token",
	})
}

// corsMiddleware allows the configured browser origins. The frontend is
// served from another port in development, so credentialed cross-origin
// requests and their preflights must be answered here.
func corsMiddleware(origins []string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && originAllowed(origin, origins) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
				w.Header().Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func originAllowed(origin string, allowed []string) bool {
	for _, candidate := range allowed {
		if candidate == "*" || strings.EqualFold(candidate, origin) {
			return true
		}
	}
	return false
}
