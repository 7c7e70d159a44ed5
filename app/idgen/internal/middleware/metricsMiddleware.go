package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/tsfdsong/snowflake/app/idgen/internal/monitor"
)

const parseRoutePrefix = "/id/parse/"

type MetricsMiddleware struct {
}

func NewMetricsMiddleware() *MetricsMiddleware {
	return &MetricsMiddleware{}
}

func (m *MetricsMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := newStatusWriter(w)

		next(rw, r)

		monitor.RecordRequest(routeLabel(r.URL.Path), rw.statusCode, time.Since(start))
	}
}

// routeLabel 路径参数折叠成路由模板，避免标签基数爆炸
func routeLabel(path string) string {
	if strings.HasPrefix(path, parseRoutePrefix) {
		return parseRoutePrefix + ":id"
	}
	return path
}
