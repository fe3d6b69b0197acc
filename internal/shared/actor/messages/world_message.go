package messages

import "context"

// WorldMessage 是发往世界 actor 的请求，ManagerActor 按 WorldID 路由。
type WorldMessage interface {
	WorldID() string
	Context() context.Context
}

// WorldBaseMessage 只在进程内传递，Ctx 携带 trace 与截止时间。
type WorldBaseMessage struct {
	Ctx     context.Context
	WorldId string
}

func (w WorldBaseMessage) WorldID() string {
	return w.WorldId
}

func (w WorldBaseMessage) Context() context.Context {
	if w.Ctx == nil {
		return context.Background()
	}
	return w.Ctx
}

// HWCreateWorld 由 ManagerActor 自己处理，不需要世界 actor 在线。
type HWCreateWorld struct {
	WorldBaseMessage
	Size int
	Seed int64
}

type HWGetWorld struct {
	WorldBaseMessage
}

type HWGetGrid struct {
	WorldBaseMessage
}

type HWJoin struct {
	WorldBaseMessage
	KingdomId string
	Name      string
}

type HWClaim struct {
	WorldBaseMessage
	KingdomId string
	X, Y      int
}

type HWTrain struct {
	WorldBaseMessage
	KingdomId string
	Unit      string
	Quantity  int64
}

type HWAdvanceDay struct {
	WorldBaseMessage
	Day int
}

type HWGetKingdom struct {
	WorldBaseMessage
	KingdomId string
}

type HWListReports struct {
	WorldBaseMessage
	KingdomId string
	Limit     int
}
