package handler

import (
	"net/http"

	"github.com/tsfdsong/snowflake/app/idgen/internal/logic"
	"github.com/tsfdsong/snowflake/app/idgen/internal/svc"
	"github.com/tsfdsong/snowflake/app/idgen/internal/types"
	"github.com/zeromicro/go-zero/rest/httpx"
)

func batchIdHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.BatchIdReq
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, types.NewCodeError(http.StatusBadRequest, err.Error()))
			return
		}

		l := logic.NewBatchIdLogic(r.Context(), svcCtx)
		resp, err := l.BatchId(&req)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}
