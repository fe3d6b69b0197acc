package port

import (
	"context"
	"errors"
	"time"

	"Dominion/internal/world/entity"
)

var (
	// ErrConflict 表示条件更新的守卫字段已被并发修改，调用方应重新读取再校验。
	ErrConflict      = errors.New("store: conditional update lost")
	ErrNotFound      = errors.New("store: world not found")
	ErrAlreadyExists = errors.New("store: world already exists")
)

// WorldStore 是世界状态的存储端口。所有写操作都是单文档、按字段的条件更新：
// 只守卫本次读取过的字段，没有世界级版本号，所以不相关的两个写入不会互相冲突。
type WorldStore interface {
	CreateWorld(ctx context.Context, w *entity.World) error
	// LoadGrids 读取不可变的地形与省份网格。
	LoadGrids(ctx context.Context, id entity.WorldID) (*entity.Grid, *entity.ProvinceGrid, error)
	// LoadState 读取可变状态，返回的 World 不带网格。
	LoadState(ctx context.Context, id entity.WorldID) (*entity.World, error)

	ApplyClaim(ctx context.Context, id entity.WorldID, u ClaimUpdate) error
	ReserveSpawn(ctx context.Context, id entity.WorldID, u SpawnUpdate) error
	EnqueueOrder(ctx context.Context, id entity.WorldID, u OrderUpdate) error
	CompleteOrders(ctx context.Context, id entity.WorldID, u CompletionUpdate) error
	CreditProduction(ctx context.Context, id entity.WorldID, u ProductionUpdate) error
	UnlockProvinces(ctx context.Context, id entity.WorldID, u UnlockUpdate) error
}

// KingdomDelta 是一次占领对某个王国的写入：before 用作守卫，after/power 写回，tile 计数增量写入直方图。
type KingdomDelta struct {
	ID        entity.KingdomID
	Before    entity.Troops
	After     entity.Troops
	Power     int64
	TileDelta int64
}

// ClaimUpdate 守卫：目标格归属仍为 ExpectedOwner（空串表示无主）、连接格 Via 仍属攻方、攻守双方兵力未变。
type ClaimUpdate struct {
	Cell          entity.Point
	Tile          entity.Tile
	ExpectedOwner entity.KingdomID
	Via           entity.Point
	Attacker      KingdomDelta
	// Defender 只在攻击他国领地时存在。
	Defender *KingdomDelta
}

// SpawnUpdate 守卫：王国尚未加入、王国数未达上限、3×3 出生格全部无主。
type SpawnUpdate struct {
	Kingdom     *entity.Kingdom
	Cells       []entity.Point
	MaxKingdoms int
}

// OrderUpdate 守卫：每项资源都不少于 Cost、队尾结束时间仍为 ExpectedQueueEnd。
type OrderUpdate struct {
	Kingdom          entity.KingdomID
	Cost             entity.Resources
	Order            entity.TrainingOrder
	ExpectedQueueEnd time.Time
}

// CompletionUpdate 守卫：这些订单仍在队列里、兵力未变。订单被移除，所以重复执行不会重复入账。
type CompletionUpdate struct {
	Kingdom  entity.KingdomID
	OrderIDs []string
	Before   entity.Troops
	After    entity.Troops
	Power    int64
}

// ProductionUpdate 守卫：ProducedTick 仍等于读取时的 From，且 From < Tick。
type ProductionUpdate struct {
	Kingdom entity.KingdomID
	From    int64
	Tick    int64
	Gain    entity.Resources
}

type GateRef struct {
	Province entity.ProvinceID
	Index    int
}

// UnlockUpdate 守卫：待解锁的省份仍未解锁。关口开启与天数推进是单调写入。
type UnlockUpdate struct {
	Day       int
	Provinces []entity.ProvinceID
	Gates     []GateRef
}
