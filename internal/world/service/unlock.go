package service

import (
	"context"

	"go.uber.org/zap"

	"Dominion/internal/world/app/port"
	"Dominion/internal/world/entity"
)

// AdvanceDay 解锁所有 UnlockDay ≤ day 的省份，并打开两侧都已解锁的关口。
// 解锁只增不减，返回本次调用新解锁的省份数。
func (ws *WorldSession) AdvanceDay(ctx context.Context, day int) (int, error) {
	return ws.advanceDay(ctx, nil, day)
}

// advanceDay 在 snap 上推进（nil 则读取），成功后把解锁结果同步回 snap。
func (ws *WorldSession) advanceDay(ctx context.Context, snap *entity.World, day int) (int, error) {
	if day < 0 {
		return 0, ErrInvalidParam.WithData("day", day)
	}
	var (
		unlocked []entity.ProvinceID
		gates    []port.GateRef
	)
	err := ws.retryOn(ctx, "advance_day", snap, func(w *entity.World) error {
		unlocked, gates = nil, nil
		provs := w.SortedProvinces()
		open := make(map[entity.ProvinceID]bool, len(provs))
		for _, p := range provs {
			open[p.ID] = p.Unlocked
			if !p.Unlocked && p.UnlockDay <= day {
				unlocked = append(unlocked, p.ID)
				open[p.ID] = true
			}
		}
		for _, p := range provs {
			for i, g := range p.Gates {
				if !g.Open && entity.GateOpen(g.Tier, open[p.ID], open[g.To]) {
					gates = append(gates, port.GateRef{Province: p.ID, Index: i})
				}
			}
		}
		if len(unlocked) == 0 && len(gates) == 0 && day <= w.Day {
			return nil
		}
		err := ws.svc.store.UnlockProvinces(ctx, ws.id, port.UnlockUpdate{
			Day:       day,
			Provinces: unlocked,
			Gates:     gates,
		})
		return storeErr(err, ws.id)
	})
	if err != nil {
		return 0, err
	}
	if snap != nil {
		for _, id := range unlocked {
			snap.ProvinceSet[id].Unlocked = true
		}
		for _, g := range gates {
			snap.ProvinceSet[g.Province].Gates[g.Index].Open = true
		}
		if day > snap.Day {
			snap.Day = day
		}
	}
	if len(unlocked) == 0 {
		return 0, nil
	}
	items := make([]eventItem, len(unlocked))
	for i, id := range unlocked {
		items[i] = eventItem{typ: port.EventProvinceUnlocked, data: port.ProvinceUnlocked{ProvinceID: id, Day: day}}
	}
	ws.svc.publish(ctx, ws.id, ws.svc.now(), items...)
	ws.svc.log.WithContext(ctx).Info("provinces unlocked",
		zap.String("world_id", string(ws.id)),
		zap.Int("day", day),
		zap.Int("count", len(unlocked)),
	)
	return len(unlocked), nil
}
