package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"Dominion/internal/world/app/port"
	"Dominion/internal/world/entity"
)

// MaxOrderQuantity 限制单笔造兵数量，避免成本与时长溢出。
const MaxOrderQuantity = 1_000_000

// EnqueueTraining 立即扣除资源，订单接在队尾：start = max(now, 队尾结束时间)。
func (ws *WorldSession) EnqueueTraining(ctx context.Context, kid entity.KingdomID, unit entity.UnitClass, qty int64) (*entity.TrainingOrder, error) {
	spec, ok := entity.UnitSpec(ws.svc.bal.Units, unit)
	if !ok || qty <= 0 || qty > MaxOrderQuantity {
		return nil, ErrInvalidOrder.WithData("unit", unit).WithData("quantity", qty)
	}
	cost := entity.ResourcesOf(spec.Cost).Scale(qty)

	var (
		order entity.TrainingOrder
		after *entity.Kingdom
	)
	err := ws.svc.retry(ctx, "enqueue_training", ws.id, func() error {
		w, err := ws.load(ctx)
		if err != nil {
			return err
		}
		k, ok := w.Kingdoms[kid]
		if !ok {
			return ErrKingdomNotFound.WithData("kingdom_id", kid)
		}
		if !k.Resources.Covers(cost) {
			return ErrInsufficientResources.
				WithData("cost", cost).
				WithData("available", k.Resources)
		}
		now := ws.svc.now()
		tail := k.QueueEnd()
		start := now
		if tail.After(start) {
			start = tail
		}
		order = entity.TrainingOrder{
			ID:       uuid.NewString(),
			Unit:     unit,
			Quantity: qty,
			StartAt:  start,
			EndAt:    start.Add(time.Duration(spec.TrainSeconds*qty) * time.Second),
		}
		err = ws.svc.store.EnqueueOrder(ctx, ws.id, port.OrderUpdate{
			Kingdom:          kid,
			Cost:             cost,
			Order:            order,
			ExpectedQueueEnd: tail,
		})
		if err != nil {
			return storeErr(err, ws.id)
		}
		after = k.Clone()
		after.Resources = after.Resources.Minus(cost)
		after.Queue = append(after.Queue, order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	ws.svc.publish(ctx, ws.id, order.StartAt, kingdomChanged(after))
	return &order, nil
}

// CompleteDue 把 EndAt ≤ now 的订单计入兵力并移出队列，返回入账的订单数。重复调用不会重复入账。
func (ws *WorldSession) CompleteDue(ctx context.Context, kid entity.KingdomID, now time.Time) (int, error) {
	return ws.completeDue(ctx, nil, kid, now)
}

// CompleteAllDue 对所有有到期订单的王国执行 CompleteDue。
func (ws *WorldSession) CompleteAllDue(ctx context.Context, now time.Time) (int, error) {
	return ws.completeAllDue(ctx, nil, now)
}

func (ws *WorldSession) completeAllDue(ctx context.Context, snap *entity.World, now time.Time) (int, error) {
	if snap == nil {
		var err error
		if snap, err = ws.load(ctx); err != nil {
			return 0, err
		}
	}
	ids := make([]entity.KingdomID, 0)
	for id, k := range snap.Kingdoms {
		if len(k.DueOrders(now)) > 0 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	total := 0
	for _, id := range ids {
		n, err := ws.completeDue(ctx, snap, id, now)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// completeDue 成功后把王国的新状态写回 snap，后续步骤继续用它。
func (ws *WorldSession) completeDue(ctx context.Context, snap *entity.World, kid entity.KingdomID, now time.Time) (int, error) {
	var (
		n     int
		after *entity.Kingdom
	)
	err := ws.retryOn(ctx, "complete_training", snap, func(w *entity.World) error {
		n, after = 0, nil
		k, ok := w.Kingdoms[kid]
		if !ok {
			return ErrKingdomNotFound.WithData("kingdom_id", kid)
		}
		var err error
		after, n, err = ws.completeKingdom(ctx, k, now)
		return err
	})
	if err != nil {
		return 0, err
	}
	if n > 0 {
		if snap != nil {
			snap.Kingdoms[kid] = after
		}
		ws.svc.publish(ctx, ws.id, now, kingdomChanged(after))
	}
	return n, nil
}

func (ws *WorldSession) completeKingdom(ctx context.Context, k *entity.Kingdom, now time.Time) (*entity.Kingdom, int, error) {
	due := k.DueOrders(now)
	if len(due) == 0 {
		return k, 0, nil
	}
	troops := k.Troops
	ids := make([]string, len(due))
	for i, o := range due {
		troops.Add(o.Unit, o.Quantity)
		ids[i] = o.ID
	}
	power := entity.Power(troops, ws.svc.bal.Units)
	err := ws.svc.store.CompleteOrders(ctx, ws.id, port.CompletionUpdate{
		Kingdom:  k.ID,
		OrderIDs: ids,
		Before:   k.Troops,
		After:    troops,
		Power:    power,
	})
	if err != nil {
		return k, 0, storeErr(err, ws.id)
	}
	out := k.Clone()
	out.Queue = out.Queue[len(due):]
	out.Troops = troops
	out.Power = power
	return out, len(due), nil
}
