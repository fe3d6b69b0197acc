package transport

// BizCode 是响应体里的 code 字段：0 成功，1~499 业务拒绝，>=500 系统错误。
type BizCode int

const (
	OK           BizCode = 0
	InvalidParam BizCode = 400
	Unauthorized BizCode = 401
	Forbidden    BizCode = 403
	NotFound     BizCode = 404
	RateLimited  BizCode = 429
	SystemError  BizCode = 500
	// Conflict 是并发写冲突重试用尽，调用方可以稍后重试。
	Conflict    BizCode = 503
	Unavailable BizCode = 502
	Timeout     BizCode = 504
)

// 世界玩法的业务拒绝码。
const (
	OutOfBounds           BizCode = 301
	AlreadyOwned          BizCode = 302
	NotConnected          BizCode = 303
	InsufficientPower     BizCode = 304
	InsufficientResources BizCode = 305
	WorldFull             BizCode = 306
	NoSpawnAvailable      BizCode = 307
	Impassable            BizCode = 308
	GateLocked            BizCode = 309
	InvalidOrder          BizCode = 310
	KingdomNotFound       BizCode = 311
	WorldExists           BizCode = 312
)
