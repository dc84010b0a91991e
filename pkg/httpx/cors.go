package httpx

import (
	"net/http"

	"github.com/rs/cors"
)

// CORSMiddleware allows cross-origin calls from origin ("*" for any) with
// any request header, and answers preflight requests directly with 204.
func CORSMiddleware(origin string) Middleware {
	if origin == "" {
		origin = "*"
	}
	c := cors.New(cors.Options{
		AllowedOrigins: []string{origin},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodHead,
			http.MethodPut,
			http.MethodPatch,
			http.MethodPost,
			http.MethodDelete,
		},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler
}
