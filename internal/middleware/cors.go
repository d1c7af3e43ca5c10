package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS allows browser front-ends on origins to call the chat API.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Requested-With"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	})
}
