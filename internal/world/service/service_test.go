package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"Dominion/internal/shared/gameconfig/balance"
	"Dominion/internal/world/entity"
	"Dominion/internal/world/infra/persistence/memory"
)

func TestCreateWorld_生成落库后可以打开并加入(t *testing.T) {
	store := memory.NewWorldStore()
	svc := NewWorldService(Deps{Store: store, Balance: balance.Default()})
	ctx := context.Background()

	w, err := svc.CreateWorld(ctx, CreateWorldRequest{ID: "w1", Size: 96, Seed: 42})
	if err != nil {
		t.Fatalf("期望创建成功, err=%v", err)
	}
	if err := w.Validate(); err != nil {
		t.Fatalf("期望世界不变量成立, err=%v", err)
	}
	if _, err := svc.CreateWorld(ctx, CreateWorldRequest{ID: "w1", Size: 96, Seed: 42}); !errors.Is(err, ErrWorldExists) {
		t.Fatalf("期望 ErrWorldExists, err=%v", err)
	}

	s, err := svc.OpenWorld(ctx, "w1")
	if err != nil {
		t.Fatalf("期望打开成功, err=%v", err)
	}
	res, err := s.Join(ctx, "k1", "")
	if err != nil {
		t.Fatalf("期望加入成功, err=%v", err)
	}
	snap, _ := s.Snapshot(ctx)
	p, ok := snap.ProvinceAt(entity.Point{X: res.SpawnX, Y: res.SpawnY})
	if !ok || p.Layer != entity.LayerOuter {
		t.Fatalf("期望出生在外层省份, got=%+v", p)
	}
}

func TestCreateWorld_尺寸非法(t *testing.T) {
	svc := NewWorldService(Deps{Store: memory.NewWorldStore(), Balance: balance.Default()})
	if _, err := svc.CreateWorld(context.Background(), CreateWorldRequest{Size: 8}); !errors.Is(err, ErrInvalidParam) {
		t.Fatalf("期望 ErrInvalidParam, err=%v", err)
	}
}

func TestOpenWorld_不存在(t *testing.T) {
	svc := NewWorldService(Deps{Store: memory.NewWorldStore(), Balance: balance.Default()})
	if _, err := svc.OpenWorld(context.Background(), "nope"); !errors.Is(err, ErrWorldNotFound) {
		t.Fatalf("期望 ErrWorldNotFound, err=%v", err)
	}
}

func TestListReports_按王国过滤(t *testing.T) {
	reports := memory.NewReportRepository()
	svc := NewWorldService(Deps{Store: memory.NewWorldStore(), Reports: reports, Balance: balance.Default()})
	ctx := context.Background()
	now := time.Unix(100, 0)
	_ = reports.SaveReports(ctx, []entity.BattleReport{
		{ID: "r1", WorldID: "w1", Attacker: "a", At: now},
		{ID: "r2", WorldID: "w1", Attacker: "b", Defender: "a", At: now.Add(time.Second)},
		{ID: "r3", WorldID: "w1", Attacker: "c", At: now},
	})
	got, err := svc.ListReports(ctx, "w1", "a", 0)
	if err != nil || len(got) != 2 || got[0].ID != "r2" {
		t.Fatalf("期望 a 相关 2 条且新的在前, got=%+v err=%v", got, err)
	}
}
