package logic

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"github.com/tsfdsong/snowflake/app/idgen/internal/monitor"
	"github.com/tsfdsong/snowflake/app/idgen/internal/svc"
	"github.com/tsfdsong/snowflake/app/idgen/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type BatchIdLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewBatchIdLogic(ctx context.Context, svcCtx *svc.ServiceContext) *BatchIdLogic {
	return &BatchIdLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *BatchIdLogic) BatchId(req *types.BatchIdReq) (*types.BatchIdResp, error) {
	if req.Count < 1 {
		return nil, types.NewCodeError(http.StatusBadRequest, "count must be positive")
	}

	ids := make([]int64, 0, req.Count)
	for i := 0; i < req.Count; i++ {
		id, err := l.svcCtx.Generator.NextID()
		if err != nil {
			// 已发出的ID直接丢弃，不返回部分结果
			return nil, errors.Wrapf(err, "BatchId: issued %d of %d", i, req.Count)
		}
		ids = append(ids, id)
	}

	monitor.RecordBatch(len(ids))
	l.Debugf("issued batch of %d ids", len(ids))

	return &types.BatchIdResp{Ids: ids}, nil
}
