package types

type IdResp struct {
	Id           int64  `json:"id"`
	Timestamp    int64  `json:"timestamp"`
	DatacenterId int64  `json:"datacenterId"`
	MachineId    int64  `json:"machineId"`
	Sequence     int64  `json:"sequence"`
	Time         string `json:"time"`
}

type BatchIdReq struct {
	Count int `form:"count,default=100,range=[1:4096]"`
}

type BatchIdResp struct {
	Ids []int64 `json:"ids"`
}

type ParseIdReq struct {
	Id int64 `path:"id"`
}

// ErrorResp 错误响应体，不实现 error，保证按 JSON 输出
type ErrorResp struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// CodeError 带HTTP状态码的错误
type CodeError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewCodeError(code int, msg string) *CodeError {
	return &CodeError{
		Code:    code,
		Message: msg,
	}
}

func (e *CodeError) Error() string {
	return e.Message
}

func (e *CodeError) Resp() ErrorResp {
	return ErrorResp{
		Code:    e.Code,
		Message: e.Message,
	}
}
