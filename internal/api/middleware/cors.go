package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

var devOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
	"http://127.0.0.1:3000",
	"http://127.0.0.1:5173",
}

// CORS allows the panel frontend to call the sync API and open event streams.
// Streams carry no event ids and replay nothing, so Last-Event-ID is not accepted.
// Rate-limited replies expose Retry-After.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Cache-Control", "Content-Type", RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader, "Retry-After"},
		AllowCredentials: true,
		MaxAge:           600,
	})
}

// DefaultCORS builds the origin list from a comma separated frontend URL setting.
// Local dev servers are added when any configured origin is local.
func DefaultCORS(frontendURLs string) func(http.Handler) http.Handler {
	var origins []string
	local := false
	for _, o := range strings.Split(frontendURLs, ",") {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "" {
			continue
		}
		origins = append(origins, o)
		if strings.Contains(o, "localhost") || strings.Contains(o, "127.0.0.1") {
			local = true
		}
	}
	if local {
		origins = append(origins, devOrigins...)
	}
	return CORS(origins)
}
