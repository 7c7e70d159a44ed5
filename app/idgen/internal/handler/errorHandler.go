package handler

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"github.com/tsfdsong/snowflake/app/idgen/internal/types"
	"github.com/tsfdsong/snowflake/app/pkg/snowflake"
	"github.com/zeromicro/go-zero/core/logx"
)

// ErrorHandler 错误到HTTP状态码的映射，通过 httpx.SetErrorHandlerCtx 注册
func ErrorHandler(ctx context.Context, err error) (int, any) {
	var codeErr *types.CodeError
	switch {
	case errors.As(err, &codeErr):
		return codeErr.Code, codeErr.Resp()
	case snowflake.IsClockError(err):
		// 时钟异常时拒绝发号，交给调用方重试其他实例
		logx.WithContext(ctx).Errorf("id generation unavailable: %v", err)
		return http.StatusServiceUnavailable, types.ErrorResp{Code: http.StatusServiceUnavailable, Message: errors.Cause(err).Error()}
	default:
		logx.WithContext(ctx).Errorf("internal error: %+v", err)
		return http.StatusInternalServerError, types.ErrorResp{Code: http.StatusInternalServerError, Message: "server internal error"}
	}
}
