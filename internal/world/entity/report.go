package entity

import "time"

// BattleReport 是一次成功占领的战报，异步归档。
type BattleReport struct {
	ID           string    `json:"id"`
	WorldID      WorldID   `json:"world_id"`
	Attacker     KingdomID `json:"attacker"`
	Defender     KingdomID `json:"defender,omitempty"`
	Target       Point     `json:"target"`
	Tile         Tile      `json:"tile"`
	Required     int64     `json:"required"`
	AttackerLoss int64     `json:"attacker_loss"`
	DefenderLoss int64     `json:"defender_loss"`
	PowerAfter   int64     `json:"power_after"`
	KvK          bool      `json:"kvk"`
	At           time.Time `json:"at"`
}
