package service

import "Dominion/modules/kit/errx"

// 业务拒绝：同步返回，不重试。
var (
	ErrOutOfBounds           = errx.NewBiz("OUT_OF_BOUNDS", "坐标超出地图范围")
	ErrAlreadyOwned          = errx.NewBiz("ALREADY_OWNED", "该领地已经属于你")
	ErrNotConnected          = errx.NewBiz("NOT_CONNECTED", "目标未与己方领地相连")
	ErrInsufficientPower     = errx.NewBiz("INSUFFICIENT_POWER", "兵力不足")
	ErrInsufficientResources = errx.NewBiz("INSUFFICIENT_RESOURCES", "资源不足")
	ErrWorldFull             = errx.NewBiz("WORLD_FULL", "世界王国数已满")
	ErrNoSpawnAvailable      = errx.NewBiz("NO_SPAWN_AVAILABLE", "没有可用的出生点")
	ErrImpassable            = errx.NewBiz("IMPASSABLE", "该地形不可占领")
	ErrGateLocked            = errx.NewBiz("GATE_LOCKED", "关口尚未开启")
	ErrInvalidOrder          = errx.NewBiz("INVALID_ORDER", "造兵单无效")
	ErrKingdomNotFound       = errx.NewBiz("KINGDOM_NOT_FOUND", "王国尚未加入该世界")
	ErrWorldNotFound         = errx.NewBiz("WORLD_NOT_FOUND", "世界不存在")
	ErrWorldExists           = errx.NewBiz("WORLD_EXISTS", "世界已存在")
	ErrInvalidParam          = errx.ErrReqParamERR
)

// ErrConflict 是冲突重试用尽后抛出的瞬时错误。
var ErrConflict = errx.ErrConflict
