package port

import (
	"context"
	"time"

	"Dominion/internal/world/entity"
)

type EventType string

const (
	EventTileOwnershipChanged EventType = "tile_ownership_changed"
	EventKingdomStateChanged  EventType = "kingdom_state_changed"
	EventProvinceUnlocked     EventType = "province_unlocked"
)

// Event 是推给订阅方的信封。
type Event struct {
	ID      string         `json:"id"`
	WorldID entity.WorldID `json:"world_id"`
	Type    EventType      `json:"type"`
	At      time.Time      `json:"at"`
	Data    any            `json:"data"`
}

type TileOwnershipChanged struct {
	X          int              `json:"x"`
	Y          int              `json:"y"`
	NewOwnerID entity.KingdomID `json:"new_owner_id"`
	PrevOwner  entity.KingdomID `json:"prev_owner_id,omitempty"`
}

type KingdomStateChanged struct {
	KingdomID entity.KingdomID `json:"kingdom_id"`
	Power     int64            `json:"power"`
	Resources entity.Resources `json:"resources"`
	Troops    entity.Troops    `json:"troops"`
}

type ProvinceUnlocked struct {
	ProvinceID entity.ProvinceID `json:"province_id"`
	Day        int               `json:"day"`
}

// EventPublisher 投递事件，失败只记日志，不影响已提交的状态。
type EventPublisher interface {
	Publish(ctx context.Context, events ...Event)
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, ...Event) {}

// ReportRepository 是战报归档端口。
type ReportRepository interface {
	SaveReports(ctx context.Context, reports []entity.BattleReport) error
	ListReports(ctx context.Context, worldID entity.WorldID, kingdom entity.KingdomID, limit int) ([]entity.BattleReport, error)
}
