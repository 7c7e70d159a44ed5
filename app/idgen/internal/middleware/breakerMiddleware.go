package middleware

import (
	"fmt"
	"net/http"

	"github.com/tsfdsong/snowflake/app/idgen/internal/types"
	"github.com/zeromicro/go-zero/core/breaker"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest/httpx"
)

// BreakerMiddleware 熔断中间件 - 时钟回拨/越界导致连续5xx时快速失败
type BreakerMiddleware struct {
	brk breaker.Breaker
}

func NewBreakerMiddleware(brk breaker.Breaker) *BreakerMiddleware {
	return &BreakerMiddleware{
		brk: brk,
	}
}

func (m *BreakerMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if m.brk == nil {
			next(w, r)
			return
		}

		promise, err := m.brk.Allow()
		if err != nil {
			logx.WithContext(r.Context()).Slowf("circuit breaker open for %s %s", r.Method, r.URL.Path)
			httpx.WriteJsonCtx(r.Context(), w, http.StatusServiceUnavailable, types.ErrorResp{
				Code:    http.StatusServiceUnavailable,
				Message: "Service temporarily unavailable, please try again later",
			})
			return
		}

		rw := newStatusWriter(w)
		next(rw, r)

		if rw.statusCode >= http.StatusInternalServerError {
			promise.Reject(fmt.Sprintf("status %d", rw.statusCode))
		} else {
			promise.Accept()
		}
	}
}

// statusWriter 记录响应状态码
type statusWriter struct {
	http.ResponseWriter
	statusCode int
}

func newStatusWriter(w http.ResponseWriter) *statusWriter {
	if sw, ok := w.(*statusWriter); ok {
		return sw
	}
	return &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *statusWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
