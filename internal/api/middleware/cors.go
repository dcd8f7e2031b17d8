package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
	"github.com/phrazzld/taskflow-api/internal/api/shared"
)

// NewCORS allows cross-origin browser clients from any origin and lets them
// read the trace ID header. Preflight requests are answered without
// reaching the wrapped handler.
func NewCORS() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Accept", "Content-Type", shared.TraceIDHeader},
		ExposedHeaders: []string{shared.TraceIDHeader},
		MaxAge:         600,
	})
}
