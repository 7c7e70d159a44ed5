package logic

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/tsfdsong/snowflake/app/idgen/internal/svc"
	"github.com/tsfdsong/snowflake/app/idgen/internal/types"
	"github.com/tsfdsong/snowflake/app/pkg/snowflake"

	"github.com/zeromicro/go-zero/core/logx"
)

type NextIdLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewNextIdLogic(ctx context.Context, svcCtx *svc.ServiceContext) *NextIdLogic {
	return &NextIdLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *NextIdLogic) NextId() (*types.IdResp, error) {
	id, err := l.svcCtx.Generator.NextID()
	if err != nil {
		return nil, errors.Wrap(err, "NextId")
	}

	return toIdResp(id, l.svcCtx.Generator.Epoch()), nil
}

func toIdResp(id int64, epoch time.Time) *types.IdResp {
	parts := snowflake.Decompose(id)
	return &types.IdResp{
		Id:           id,
		Timestamp:    parts.Timestamp,
		DatacenterId: parts.DatacenterID,
		MachineId:    parts.MachineID,
		Sequence:     parts.Sequence,
		Time:         parts.Time(epoch).Format(time.RFC3339Nano),
	}
}
