package model

import (
	"time"

	"Dominion/internal/world/entity"
)

// BattleReport 是战报的 MySQL 行。
type BattleReport struct {
	ReportId     string    `gorm:"column:report_id;type:varchar(64);comment:战报id;primaryKey;not null;" json:"report_id"`
	WorldId      string    `gorm:"column:world_id;type:varchar(64);comment:世界id;not null;index:idx_world_at,priority:1;" json:"world_id"`
	Attacker     string    `gorm:"column:attacker;type:varchar(64);comment:攻方王国;not null;index:idx_attacker;" json:"attacker"`
	Defender     string    `gorm:"column:defender;type:varchar(64);comment:守方王国;not null;default:'';index:idx_defender;" json:"defender"`
	X            int       `gorm:"column:x;type:int UNSIGNED;comment:x坐标;not null;" json:"x"`
	Y            int       `gorm:"column:y;type:int UNSIGNED;comment:y坐标;not null;" json:"y"`
	Tile         uint8     `gorm:"column:tile;type:tinyint UNSIGNED;comment:地形编码;not null;" json:"tile"`
	Required     int64     `gorm:"column:required;type:bigint;comment:所需兵力;not null;" json:"required"`
	AttackerLoss int64     `gorm:"column:attacker_loss;type:bigint;comment:攻方损失;not null;" json:"attacker_loss"`
	DefenderLoss int64     `gorm:"column:defender_loss;type:bigint;comment:守方损失;not null;default:0;" json:"defender_loss"`
	PowerAfter   int64     `gorm:"column:power_after;type:bigint;comment:攻方剩余兵力;not null;" json:"power_after"`
	KvK          bool      `gorm:"column:kvk;type:tinyint(1);comment:是否攻打他国;not null;default:0;" json:"kvk"`
	At           time.Time `gorm:"column:at;type:timestamp(3);comment:发生时间;not null;index:idx_world_at,priority:2;" json:"at"`
}

func (m *BattleReport) TableName() string {
	return "world_battle_report"
}

func ReportToRow(r entity.BattleReport) BattleReport {
	return BattleReport{
		ReportId:     r.ID,
		WorldId:      string(r.WorldID),
		Attacker:     string(r.Attacker),
		Defender:     string(r.Defender),
		X:            r.Target.X,
		Y:            r.Target.Y,
		Tile:         r.Tile,
		Required:     r.Required,
		AttackerLoss: r.AttackerLoss,
		DefenderLoss: r.DefenderLoss,
		PowerAfter:   r.PowerAfter,
		KvK:          r.KvK,
		At:           r.At,
	}
}

func RowToReport(m BattleReport) entity.BattleReport {
	return entity.BattleReport{
		ID:           m.ReportId,
		WorldID:      entity.WorldID(m.WorldId),
		Attacker:     entity.KingdomID(m.Attacker),
		Defender:     entity.KingdomID(m.Defender),
		Target:       entity.Point{X: m.X, Y: m.Y},
		Tile:         m.Tile,
		Required:     m.Required,
		AttackerLoss: m.AttackerLoss,
		DefenderLoss: m.DefenderLoss,
		PowerAfter:   m.PowerAfter,
		KvK:          m.KvK,
		At:           m.At,
	}
}
