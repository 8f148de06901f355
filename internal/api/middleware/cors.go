package middleware

import (
	"slices"

	"github.com/go-chi/cors"
)

// NewCORS builds the CORS middleware for the frontend origins.
// A "*" entry opens the API to any origin; credentials are then disabled
// since browsers refuse them alongside a wildcard.
func NewCORS(allowedOrigins []string) *cors.Cors {
	wildcard := slices.Contains(allowedOrigins, "*")

	return cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			APIKeyHeader,
			TimeTokenHeader,
		},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: !wildcard,
		MaxAge:           600,
	})
}
