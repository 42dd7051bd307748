package router

import (
	"net/http"
	_ "oauth2-token-store/docs"
	"oauth2-token-store/handler"

	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// NewRouter wires the HTTP routes. metricsHandler may be nil.
func NewRouter(tokenHandler *handler.TokenHandler, metricsHandler http.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handler.HealthCheck)
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}

	if tokenHandler != nil {
		mux.Handle("POST /tokens", handler.ErrorHandlingMiddleware(tokenHandler.StoreToken))
		mux.Handle("POST /tokens/introspect", handler.ErrorHandlingMiddleware(tokenHandler.Introspect))
		mux.Handle("POST /tokens/revoke", handler.ErrorHandlingMiddleware(tokenHandler.Revoke))
		mux.Handle("POST /admin/cleanup", handler.ErrorHandlingMiddleware(tokenHandler.Cleanup))
		mux.Handle("POST /admin/users/{user_id}/revoke", handler.ErrorHandlingMiddleware(tokenHandler.RevokeUser))
	}

	return mux
}
