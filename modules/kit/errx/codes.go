package errx

// 跨模块统一的系统类错误码。业务错误码（例如 NOT_CONNECTED）由各业务包自己定义。
const (
	CodeInternal    Code = "INTERNAL_ERROR"
	CodeUnavailable Code = "SERVICE_UNAVAILABLE"
	CodeTimeout     Code = "TIMEOUT"
	CodeRateLimited Code = "RATE_LIMITED"
	// CodeConflict 表示并发写冲突，内部重试用尽后才会抛给调用方，属于可重试的瞬时错误。
	CodeConflict      Code = "CONFLICT"
	CodeReqParamError Code = "REQ_PARAM_ERROR"
)

var (
	ErrInternal    = NewSys(CodeInternal, "服务器内部错误")
	ErrUnavailable = NewSys(CodeUnavailable, "服务不可用")
	ErrTimeout     = NewSys(CodeTimeout, "请求超时")
	ErrRateLimited = NewBiz(CodeRateLimited, "请求过于频繁")
	ErrConflict    = NewSys(CodeConflict, "并发写冲突，请稍后重试")
	ErrReqParamERR = NewBiz(CodeReqParamError, "请求参数错误")
)
