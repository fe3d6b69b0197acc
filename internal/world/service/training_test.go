package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"Dominion/internal/world/entity"
)

func TestEnqueueTraining_资源不足被拒绝(t *testing.T) {
	w := plainWorld()
	addKingdom(w, "k1", entity.Point{X: 50, Y: 50}, 1000, entity.Resources{Food: 50, Wood: 500, Stone: 500, Gold: 500})
	f := newFixture(t, w, Options{})

	_, err := f.session.EnqueueTraining(context.Background(), "k1", entity.Infantry, 10)
	if !errors.Is(err, ErrInsufficientResources) {
		t.Fatalf("期望 ErrInsufficientResources, err=%v", err)
	}
	k := f.world(t).Kingdoms["k1"]
	if k.Resources.Food != 50 || len(k.Queue) != 0 {
		t.Fatalf("期望资源与队列不变, got=%+v", k)
	}
}

func TestEnqueueTraining_扣资源并按FIFO排队(t *testing.T) {
	w := plainWorld()
	addKingdom(w, "k1", entity.Point{X: 50, Y: 50}, 0, entity.Resources{Food: 1000, Wood: 1000, Stone: 1000, Gold: 1000})
	f := newFixture(t, w, Options{})
	ctx := context.Background()
	t0 := f.now

	first, err := f.session.EnqueueTraining(ctx, "k1", entity.Infantry, 10)
	if err != nil {
		t.Fatalf("期望入队成功, err=%v", err)
	}
	if !first.StartAt.Equal(t0) || !first.EndAt.Equal(t0.Add(20*time.Second)) {
		t.Fatalf("期望 [t0, t0+20s], got=%v..%v", first.StartAt, first.EndAt)
	}
	f.now = t0.Add(5 * time.Second)
	second, err := f.session.EnqueueTraining(ctx, "k1", entity.Siege, 2)
	if err != nil {
		t.Fatalf("期望入队成功, err=%v", err)
	}
	if !second.StartAt.Equal(first.EndAt) || !second.EndAt.Equal(first.EndAt.Add(20*time.Second)) {
		t.Fatalf("期望第二单接在第一单之后, got=%v..%v", second.StartAt, second.EndAt)
	}
	k := f.world(t).Kingdoms["k1"]
	want := entity.Resources{Food: 900, Wood: 840, Stone: 960, Gold: 980}
	if k.Resources != want || len(k.Queue) != 2 {
		t.Fatalf("期望资源 %+v、队列 2 单, got=%+v", want, k)
	}
}

func TestEnqueueTraining_非法兵种与数量(t *testing.T) {
	w := plainWorld()
	addKingdom(w, "k1", entity.Point{X: 50, Y: 50}, 0, entity.Resources{Food: 1000})
	f := newFixture(t, w, Options{})
	ctx := context.Background()

	if _, err := f.session.EnqueueTraining(ctx, "k1", "dragon", 1); !errors.Is(err, ErrInvalidOrder) {
		t.Fatalf("期望 ErrInvalidOrder, err=%v", err)
	}
	if _, err := f.session.EnqueueTraining(ctx, "k1", entity.Infantry, 0); !errors.Is(err, ErrInvalidOrder) {
		t.Fatalf("期望 ErrInvalidOrder, err=%v", err)
	}
}

func TestCompleteDue_只入账到期订单且可重放(t *testing.T) {
	w := plainWorld()
	addKingdom(w, "k1", entity.Point{X: 50, Y: 50}, 100, entity.Resources{Food: 1000, Wood: 1000, Stone: 1000, Gold: 1000})
	f := newFixture(t, w, Options{})
	ctx := context.Background()
	t0 := f.now

	if _, err := f.session.EnqueueTraining(ctx, "k1", entity.Infantry, 10); err != nil {
		t.Fatalf("期望入队成功, err=%v", err)
	}
	if _, err := f.session.EnqueueTraining(ctx, "k1", entity.Archer, 10); err != nil {
		t.Fatalf("期望入队成功, err=%v", err)
	}

	n, err := f.session.CompleteDue(ctx, "k1", t0.Add(25*time.Second))
	if err != nil || n != 1 {
		t.Fatalf("期望完成 1 单, n=%d err=%v", n, err)
	}
	n, err = f.session.CompleteDue(ctx, "k1", t0.Add(25*time.Second))
	if err != nil || n != 0 {
		t.Fatalf("期望重放不重复入账, n=%d err=%v", n, err)
	}
	k := f.world(t).Kingdoms["k1"]
	if k.Troops.Infantry != 110 || k.Troops.Archer != 0 || k.Power != 110 || len(k.Queue) != 1 {
		t.Fatalf("期望步兵 110、队列剩 1 单, got=%+v", k)
	}

	n, err = f.session.CompleteAllDue(ctx, t0.Add(time.Hour))
	if err != nil || n != 1 {
		t.Fatalf("期望完成剩余 1 单, n=%d err=%v", n, err)
	}
	k = f.world(t).Kingdoms["k1"]
	// 110 + 10×1.5
	if k.Troops.Archer != 10 || k.Power != 125 || len(k.Queue) != 0 {
		t.Fatalf("期望弓兵 10、战力 125, got=%+v", k)
	}
}

func TestEnqueueTraining_队列清空后从当前时刻开始(t *testing.T) {
	w := plainWorld()
	addKingdom(w, "k1", entity.Point{X: 50, Y: 50}, 0, entity.Resources{Food: 1000, Wood: 1000})
	f := newFixture(t, w, Options{})
	ctx := context.Background()

	if _, err := f.session.EnqueueTraining(ctx, "k1", entity.Infantry, 1); err != nil {
		t.Fatalf("期望入队成功, err=%v", err)
	}
	f.now = f.now.Add(time.Minute)
	if _, err := f.session.CompleteDue(ctx, "k1", f.now); err != nil {
		t.Fatalf("期望完成成功, err=%v", err)
	}
	o, err := f.session.EnqueueTraining(ctx, "k1", entity.Infantry, 1)
	if err != nil {
		t.Fatalf("期望入队成功, err=%v", err)
	}
	if !o.StartAt.Equal(f.now) {
		t.Fatalf("期望从 now 开始, got=%v want=%v", o.StartAt, f.now)
	}
}
