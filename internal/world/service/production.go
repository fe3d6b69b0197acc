package service

import (
	"context"
	"sort"

	"Dominion/internal/world/app/port"
	"Dominion/internal/world/entity"
)

// CreditProduction 给每个 ProducedTick < tick 的王国结算产出：
// 单 tick 产出由直方图计算，乘以落后的 tick 数。返回结算的王国数。
// 没有产出的王国只推进 ProducedTick，不发事件。
func (ws *WorldSession) CreditProduction(ctx context.Context, tick int64) (int, error) {
	return ws.creditProduction(ctx, nil, tick)
}

func (ws *WorldSession) creditProduction(ctx context.Context, snap *entity.World, tick int64) (int, error) {
	if snap == nil {
		var err error
		if snap, err = ws.load(ctx); err != nil {
			return 0, err
		}
	}
	ids := make([]entity.KingdomID, 0, len(snap.Kingdoms))
	for id, k := range snap.Kingdoms {
		if k.ProducedTick < tick {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	credited := 0
	for _, id := range ids {
		k, gain, ok, err := ws.creditKingdom(ctx, snap, id, tick)
		if err != nil {
			return credited, err
		}
		if !ok {
			continue
		}
		credited++
		snap.Kingdoms[id] = k
		if !gain.IsZero() {
			ws.svc.publish(ctx, ws.id, ws.svc.now(), kingdomChanged(k))
		}
	}
	return credited, nil
}

func (ws *WorldSession) creditKingdom(ctx context.Context, snap *entity.World, id entity.KingdomID, tick int64) (*entity.Kingdom, entity.Resources, bool, error) {
	var (
		after    *entity.Kingdom
		gain     entity.Resources
		credited bool
	)
	err := ws.retryOn(ctx, "credit_production", snap, func(w *entity.World) error {
		after, gain, credited = nil, entity.Resources{}, false
		k, ok := w.Kingdoms[id]
		if !ok || k.ProducedTick >= tick {
			return nil
		}
		gain = entity.Production(k.Tiles, ws.svc.bal.Production).Scale(tick - k.ProducedTick)
		err := ws.svc.store.CreditProduction(ctx, ws.id, port.ProductionUpdate{
			Kingdom: id,
			From:    k.ProducedTick,
			Tick:    tick,
			Gain:    gain,
		})
		if err != nil {
			return storeErr(err, ws.id)
		}
		after = k.Clone()
		after.Resources = after.Resources.Plus(gain)
		after.ProducedTick = tick
		credited = true
		return nil
	})
	return after, gain, credited, err
}
