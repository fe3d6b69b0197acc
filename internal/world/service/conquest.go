package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"Dominion/internal/world/app/port"
	"Dominion/internal/world/entity"
)

type ClaimResult struct {
	Success        bool             `json:"success"`
	RemainingPower int64            `json:"remaining_power"`
	Required       int64            `json:"required"`
	AttackerLoss   int64            `json:"attacker_loss"`
	DefenderLoss   int64            `json:"defender_loss"`
	PrevOwner      entity.KingdomID `json:"prev_owner,omitempty"`
}

// RequiredPower 是占领无主格子的门槛。
func (ws *WorldSession) RequiredPower(t entity.Tile) int64 {
	c := ws.svc.bal.Claim
	switch entity.ClassOf(t) {
	case entity.ClassResource:
		return c.Resource
	case entity.ClassGate:
		return c.Gate
	case entity.ClassStronghold:
		return c.Stronghold
	case entity.ClassLandmark:
		return c.Landmark
	case entity.ClassCenter:
		return c.Center
	}
	return c.Plain
}

// Claim 按顺序校验：越界、不可通行、未加入、已拥有、不相连、关口未开、兵力不足；
// 通过后计算双方战损，用一次条件更新写入归属、兵力和直方图。
func (ws *WorldSession) Claim(ctx context.Context, kid entity.KingdomID, x, y int) (*ClaimResult, error) {
	pt := entity.Point{X: x, Y: y}
	if !ws.tiles.In(x, y) {
		return nil, ErrOutOfBounds.WithData("x", x).WithData("y", y)
	}
	tile := ws.tiles.At(x, y)
	if !entity.IsPassable(tile) {
		return nil, ErrImpassable.WithData("x", x).WithData("y", y).WithData("tile", tile)
	}

	var (
		res    *ClaimResult
		report entity.BattleReport
		att    *entity.Kingdom
		def    *entity.Kingdom
	)
	err := ws.svc.retry(ctx, "claim", ws.id, func() error {
		w, err := ws.load(ctx)
		if err != nil {
			return err
		}
		var ok bool
		att, ok = w.Kingdoms[kid]
		if !ok {
			return ErrKingdomNotFound.WithData("kingdom_id", kid)
		}
		owner, owned := w.OwnerAt(pt)
		if owned && owner == kid {
			return ErrAlreadyOwned.WithData("x", x).WithData("y", y)
		}
		via, ok := w.OwnedNeighbor(pt, kid)
		if !ok {
			return ErrNotConnected.WithData("x", x).WithData("y", y)
		}
		if gate, ok := w.GateAt(pt); ok && !gate.Open {
			return ErrGateLocked.WithData("x", x).WithData("y", y).WithData("tier", gate.Tier)
		}

		c := ws.svc.bal.Claim
		units := ws.svc.bal.Units
		def = nil
		required := ws.RequiredPower(tile)
		lossPermille := c.NeutralLossPermille
		if owned {
			def = w.Kingdoms[owner]
			if def == nil {
				// 归属指向不存在的王国，视作无主，交给存储守卫兜底
				owned, owner = false, ""
			} else {
				required = def.Power*c.DefenderMarginPermille/1000 + c.DefenderOverhead
				lossPermille = c.KvKLossPermille
			}
		}
		effective := entity.EffectivePower(att.Power, att.Castle, pt, c.DistancePenalty)
		if effective < required {
			return ErrInsufficientPower.
				WithData("required", required).
				WithData("effective", effective).
				WithData("power", att.Power)
		}

		attLoss := required * lossPermille / 1000
		attAfter := entity.Attrition(att.Troops, att.Power, attLoss)
		update := port.ClaimUpdate{
			Cell:          pt,
			Tile:          tile,
			ExpectedOwner: owner,
			Via:           via,
			Attacker: port.KingdomDelta{
				ID:        kid,
				Before:    att.Troops,
				After:     attAfter,
				Power:     entity.Power(attAfter, units),
				TileDelta: 1,
			},
		}
		var defLoss int64
		if def != nil {
			defLoss = att.Power * c.DefenderLossPermille / 1000
			defAfter := entity.Attrition(def.Troops, def.Power, defLoss)
			update.Defender = &port.KingdomDelta{
				ID:        def.ID,
				Before:    def.Troops,
				After:     defAfter,
				Power:     entity.Power(defAfter, units),
				TileDelta: -1,
			}
		}
		if err := ws.svc.store.ApplyClaim(ctx, ws.id, update); err != nil {
			return storeErr(err, ws.id)
		}

		att = applyKingdomDelta(att, update.Attacker, tile)
		if update.Defender != nil {
			def = applyKingdomDelta(def, *update.Defender, tile)
		}
		res = &ClaimResult{
			Success:        true,
			RemainingPower: att.Power,
			Required:       required,
			AttackerLoss:   attLoss,
			DefenderLoss:   defLoss,
			PrevOwner:      owner,
		}
		report = entity.BattleReport{
			ID:           uuid.NewString(),
			WorldID:      ws.id,
			Attacker:     kid,
			Defender:     owner,
			Target:       pt,
			Tile:         tile,
			Required:     required,
			AttackerLoss: attLoss,
			DefenderLoss: defLoss,
			PowerAfter:   att.Power,
			KvK:          def != nil,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	now := ws.svc.now()
	report.At = now
	if ws.svc.journal != nil {
		ws.svc.journal.Append(report)
	}
	items := []eventItem{
		{typ: port.EventTileOwnershipChanged, data: port.TileOwnershipChanged{X: x, Y: y, NewOwnerID: kid, PrevOwner: res.PrevOwner}},
		kingdomChanged(att),
	}
	if def != nil {
		items = append(items, kingdomChanged(def))
	}
	ws.svc.publish(ctx, ws.id, now, items...)
	ws.svc.log.WithContext(ctx).Debug("tile claimed",
		zap.String("kingdom_id", string(kid)),
		zap.Int("x", x), zap.Int("y", y),
		zap.Int64("required", res.Required),
		zap.Int64("power_after", res.RemainingPower),
		zap.Bool("kvk", report.KvK),
	)
	return res, nil
}

// applyKingdomDelta 在读到的副本上重放写入，用于事件与返回值。
func applyKingdomDelta(k *entity.Kingdom, d port.KingdomDelta, tile entity.Tile) *entity.Kingdom {
	out := k.Clone()
	out.Troops = d.After
	out.Power = d.Power
	if out.Tiles == nil {
		out.Tiles = make(entity.Histogram)
	}
	out.Tiles.Add(tile, d.TileDelta)
	return out
}
