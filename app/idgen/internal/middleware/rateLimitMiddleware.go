package middleware

import (
	"net/http"

	"github.com/tsfdsong/snowflake/app/idgen/internal/types"
	"github.com/zeromicro/go-zero/core/limit"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest/httpx"
)

// RateLimitMiddleware 限流中间件 - 只挂在批量发号路由上
type RateLimitMiddleware struct {
	limiter *limit.TokenLimiter
}

func NewRateLimitMiddleware(limiter *limit.TokenLimiter) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter: limiter,
	}
}

func (m *RateLimitMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if m.limiter == nil || m.limiter.Allow() {
			next(w, r)
			return
		}

		logx.WithContext(r.Context()).Slowf("rate limit exceeded for %s %s", r.Method, r.URL.Path)
		httpx.WriteJsonCtx(r.Context(), w, http.StatusTooManyRequests, types.ErrorResp{
			Code:    http.StatusTooManyRequests,
			Message: "Too many requests, please try again later",
		})
	}
}
