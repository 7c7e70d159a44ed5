package handler

import (
	"net/http"

	"github.com/tsfdsong/snowflake/app/idgen/internal/svc"
	"github.com/zeromicro/go-zero/rest"
)

func RegisterHandlers(server *rest.Server, serverCtx *svc.ServiceContext) {
	server.AddRoutes(
		rest.WithMiddlewares(
			[]rest.Middleware{serverCtx.Metrics, serverCtx.Breaker},
			rest.Route{
				Method:  http.MethodGet,
				Path:    "/id/next",
				Handler: nextIdHandler(serverCtx),
			},
			rest.Route{
				Method:  http.MethodGet,
				Path:    "/id/parse/:id",
				Handler: parseIdHandler(serverCtx),
			},
		),
	)

	server.AddRoutes(
		rest.WithMiddlewares(
			[]rest.Middleware{serverCtx.Metrics, serverCtx.RateLimiter, serverCtx.Breaker},
			rest.Route{
				Method:  http.MethodGet,
				Path:    "/id/batch",
				Handler: batchIdHandler(serverCtx),
			},
		),
	)

	server.AddRoutes(
		[]rest.Route{
			{
				Method:  http.MethodGet,
				Path:    "/metrics",
				Handler: metricsHandler(),
			},
		},
	)
}
