package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	pkglog "github.com/srujan5570/Communications-App/pkg/log"
)

// NewRouter mounts the WebSocket endpoints, the REST API and /metrics on a
// single handler. The REST engine logs its own requests.
func NewRouter(logger zerolog.Logger, ws *WSHandler, api *HTTPHandler) http.Handler {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(pkglog.GinMiddleware(logger))
	api.RegisterRoutes(engine)

	mux := http.NewServeMux()
	ws.RegisterRoutes(mux)
	mux.Handle("/api/", engine)
	mux.Handle("/health", engine)
	mux.Handle("/metrics", promhttp.Handler())

	return pkglog.HTTPMiddleware(logger, "/health", "/metrics", "/api/")(mux)
}
