package logic

import (
	"context"
	"net/http"

	"github.com/tsfdsong/snowflake/app/idgen/internal/svc"
	"github.com/tsfdsong/snowflake/app/idgen/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type ParseIdLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewParseIdLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ParseIdLogic {
	return &ParseIdLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// ParseId 按本实例的epoch解码，不校验ID是否由本实例发出
func (l *ParseIdLogic) ParseId(req *types.ParseIdReq) (*types.IdResp, error) {
	if req.Id < 0 {
		return nil, types.NewCodeError(http.StatusBadRequest, "id must not be negative")
	}

	return toIdResp(req.Id, l.svcCtx.Generator.Epoch()), nil
}
