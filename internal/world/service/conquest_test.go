package service

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"testing"

	"Dominion/internal/world/app/port"
	"Dominion/internal/world/entity"
	"Dominion/modules/kit/errx"
)

func TestClaim_相邻平原占领成功并扣除战损(t *testing.T) {
	w := plainWorld()
	addKingdom(w, "k1", entity.Point{X: 50, Y: 50}, 1000, entity.Resources{})
	f := newFixture(t, w, Options{})

	res, err := f.session.Claim(context.Background(), "k1", 51, 50)
	if err != nil {
		t.Fatalf("期望占领成功, err=%v", err)
	}
	if !res.Success || res.Required != 250 || res.AttackerLoss != 50 || res.RemainingPower != 950 {
		t.Fatalf("期望 required=250 loss=50 power=950, got=%+v", res)
	}
	got := f.world(t)
	if owner, _ := got.OwnerAt(entity.Point{X: 51, Y: 50}); owner != "k1" {
		t.Fatalf("期望 (51,50) 属于 k1, got=%q", owner)
	}
	k := got.Kingdoms["k1"]
	if k.Power != 950 || k.Troops.Infantry != 950 || k.Tiles[entity.TilePlain1] != 2 {
		t.Fatalf("期望兵力 950、平原计数 2, got=%+v", k)
	}
	if f.pub.count(port.EventTileOwnershipChanged) != 1 || f.pub.count(port.EventKingdomStateChanged) != 1 {
		t.Fatalf("期望一条归属事件和一条王国事件, got=%+v", f.pub.events)
	}
	if len(f.journal.reports) != 1 || f.journal.reports[0].KvK {
		t.Fatalf("期望记录一条非 KvK 战报, got=%+v", f.journal.reports)
	}
}

func TestClaim_不相连的格子被拒绝且状态不变(t *testing.T) {
	w := plainWorld()
	addKingdom(w, "k1", entity.Point{X: 50, Y: 50}, 1000, entity.Resources{})
	f := newFixture(t, w, Options{})
	before := f.world(t).DenseOwnership()

	_, err := f.session.Claim(context.Background(), "k1", 53, 50)
	if !errors.Is(err, ErrNotConnected) {
		t.Fatalf("期望 ErrNotConnected, err=%v", err)
	}
	got := f.world(t)
	if !slices.Equal(before, got.DenseOwnership()) {
		t.Fatalf("期望归属网格逐格不变, got=%v", got.Ownership)
	}
	if len(got.Ownership) != 1 || got.Kingdoms["k1"].Power != 1000 {
		t.Fatalf("期望状态不变, got ownership=%v power=%d", got.Ownership, got.Kingdoms["k1"].Power)
	}
	if len(f.pub.events) != 0 {
		t.Fatalf("期望没有事件, got=%+v", f.pub.events)
	}
}

func TestClaim_攻打强国兵力不足双方都无损失(t *testing.T) {
	w := plainWorld()
	addKingdom(w, "att", entity.Point{X: 50, Y: 50}, 1000, entity.Resources{})
	addKingdom(w, "def", entity.Point{X: 51, Y: 50}, 1200, entity.Resources{})
	f := newFixture(t, w, Options{})

	_, err := f.session.Claim(context.Background(), "att", 51, 50)
	if !errors.Is(err, ErrInsufficientPower) {
		t.Fatalf("期望 ErrInsufficientPower, err=%v", err)
	}
	var e *errx.Error
	if !errors.As(err, &e) || e.Data()["required"] != int64(1820) {
		t.Fatalf("期望 required=1820, got=%v", err)
	}
	got := f.world(t)
	if owner, _ := got.OwnerAt(entity.Point{X: 51, Y: 50}); owner != "def" {
		t.Fatalf("期望归属不变, got=%q", owner)
	}
	if got.Kingdoms["att"].Power != 1000 || got.Kingdoms["def"].Power != 1200 {
		t.Fatalf("期望双方兵力不变, got att=%d def=%d", got.Kingdoms["att"].Power, got.Kingdoms["def"].Power)
	}
}

func TestClaim_攻占他国领地双方按比例损失且直方图转移(t *testing.T) {
	w := plainWorld()
	addKingdom(w, "att", entity.Point{X: 50, Y: 50}, 10000, entity.Resources{})
	addKingdom(w, "def", entity.Point{X: 51, Y: 50}, 1000, entity.Resources{})
	f := newFixture(t, w, Options{})

	res, err := f.session.Claim(context.Background(), "att", 51, 50)
	if err != nil {
		t.Fatalf("期望攻占成功, err=%v", err)
	}
	// required = 1000×1.1+500 = 1600，攻方损失 30% = 480，守方损失 10000×20% ≥ 1000 全灭
	if res.Required != 1600 || res.AttackerLoss != 480 || res.RemainingPower != 9520 || res.PrevOwner != "def" {
		t.Fatalf("期望 required=1600 loss=480 power=9520, got=%+v", res)
	}
	got := f.world(t)
	if got.Kingdoms["def"].Power != 0 || got.Kingdoms["def"].Tiles[entity.TilePlain1] != 0 {
		t.Fatalf("期望守方全灭且失去格子, got=%+v", got.Kingdoms["def"])
	}
	if got.Kingdoms["att"].Tiles[entity.TilePlain1] != 2 {
		t.Fatalf("期望攻方平原计数 2, got=%+v", got.Kingdoms["att"].Tiles)
	}
	if f.pub.count(port.EventKingdomStateChanged) != 2 {
		t.Fatalf("期望两条王国事件, got=%d", f.pub.count(port.EventKingdomStateChanged))
	}
	if len(f.journal.reports) != 1 || !f.journal.reports[0].KvK {
		t.Fatalf("期望一条 KvK 战报, got=%+v", f.journal.reports)
	}
}

func TestClaim_校验顺序与补充拒绝(t *testing.T) {
	w := plainWorld()
	addKingdom(w, "k1", entity.Point{X: 50, Y: 50}, 1000, entity.Resources{})
	w.Tiles.Set(50, 51, entity.TileMountain)
	w.Tiles.Set(49, 50, entity.TileGateInner)
	w.ProvinceSet[1].Gates = []entity.Gate{{To: 2, Tier: 3, Cells: []entity.Point{{X: 49, Y: 50}}}}
	f := newFixture(t, w, Options{})
	ctx := context.Background()

	if _, err := f.session.Claim(ctx, "k1", 100, 0); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("期望 ErrOutOfBounds, err=%v", err)
	}
	if _, err := f.session.Claim(ctx, "k1", 50, 51); !errors.Is(err, ErrImpassable) {
		t.Fatalf("期望 ErrImpassable, err=%v", err)
	}
	if _, err := f.session.Claim(ctx, "k1", 50, 50); !errors.Is(err, ErrAlreadyOwned) {
		t.Fatalf("期望 ErrAlreadyOwned, err=%v", err)
	}
	if _, err := f.session.Claim(ctx, "nobody", 51, 50); !errors.Is(err, ErrKingdomNotFound) {
		t.Fatalf("期望 ErrKingdomNotFound, err=%v", err)
	}
	if _, err := f.session.Claim(ctx, "k1", 49, 50); !errors.Is(err, ErrGateLocked) {
		t.Fatalf("期望 ErrGateLocked, err=%v", err)
	}
}

func TestClaim_远离主城时距离惩罚生效(t *testing.T) {
	w := plainWorld()
	addKingdom(w, "k1", entity.Point{X: 10, Y: 10}, 260, entity.Resources{})
	// 一条从主城向东延伸的领地
	for x := 11; x <= 40; x++ {
		w.Ownership[entity.Point{X: x, Y: 10}] = "k1"
		w.Kingdoms["k1"].Tiles.Add(entity.TilePlain1, 1)
	}
	f := newFixture(t, w, Options{})

	// 距离 31，惩罚 floor(15.5)=15，有效兵力 245 < 250
	if _, err := f.session.Claim(context.Background(), "k1", 41, 10); !errors.Is(err, ErrInsufficientPower) {
		t.Fatalf("期望远处兵力不足, err=%v", err)
	}
	if _, err := f.session.Claim(context.Background(), "k1", 11, 11); err != nil {
		t.Fatalf("期望主城旁可以占领, err=%v", err)
	}
}

func TestClaim_并发抢同一格时落败方重新校验(t *testing.T) {
	w := plainWorld()
	addKingdom(w, "k1", entity.Point{X: 50, Y: 50}, 1000, entity.Resources{})
	addKingdom(w, "k2", entity.Point{X: 52, Y: 50}, 5000, entity.Resources{})
	f := newFixture(t, w, Options{})

	target := entity.Point{X: 51, Y: 50}
	fired := false
	f.store.SetBeforeWrite(func(op string) {
		if op != "claim" || fired {
			return
		}
		fired = true
		// 模拟另一个进程抢先写入
		raw := f.store.Raw(testWorld)
		raw.Ownership[target] = "k2"
		raw.Kingdoms["k2"].Tiles.Add(entity.TilePlain1, 1)
	})

	_, err := f.session.Claim(context.Background(), "k1", target.X, target.Y)
	if !errors.Is(err, ErrInsufficientPower) {
		t.Fatalf("期望重新校验后兵力不足, err=%v", err)
	}
	got := f.world(t)
	if owner, _ := got.OwnerAt(target); owner != "k2" {
		t.Fatalf("期望归属 k2, got=%q", owner)
	}
	if got.Kingdoms["k1"].Power != 1000 {
		t.Fatalf("期望落败方没有损失, got=%d", got.Kingdoms["k1"].Power)
	}
	if err := got.Validate(); err != nil {
		t.Fatalf("期望世界不变量成立, err=%v", err)
	}
}

func TestClaim_冲突重试用尽返回ErrConflict(t *testing.T) {
	w := plainWorld()
	addKingdom(w, "k1", entity.Point{X: 50, Y: 50}, 1000, entity.Resources{})
	f := newFixture(t, w, Options{})

	calls := 0
	f.store.SetBeforeWrite(func(op string) {
		if op != "claim" {
			return
		}
		calls++
		f.store.Raw(testWorld).Kingdoms["k1"].Troops.Infantry++
	})

	_, err := f.session.Claim(context.Background(), "k1", 51, 50)
	if !errors.Is(err, errx.ErrConflict) {
		t.Fatalf("期望 ErrConflict, err=%v", err)
	}
	if want := f.svc.Balance().MaxConflictRetries + 1; calls != want {
		t.Fatalf("期望尝试 %d 次, got=%d", want, calls)
	}
	if _, owned := f.world(t).OwnerAt(entity.Point{X: 51, Y: 50}); owned {
		t.Fatalf("期望目标格仍无主")
	}
}

func TestClaim_直方图产出与逐格扫描一致(t *testing.T) {
	w := plainWorld()
	addKingdom(w, "k1", entity.Point{X: 50, Y: 50}, 5000, entity.Resources{})
	w.Tiles.Set(51, 51, entity.TileFood)
	w.Tiles.Set(49, 49, entity.TileGold)
	f := newFixture(t, w, Options{})
	ctx := context.Background()

	for _, pt := range []entity.Point{{X: 51, Y: 50}, {X: 51, Y: 51}, {X: 49, Y: 49}, {X: 52, Y: 52}} {
		if _, err := f.session.Claim(ctx, "k1", pt.X, pt.Y); err != nil {
			t.Fatalf("期望占领 %s 成功, err=%v", pt, err)
		}
	}
	got := f.world(t)
	p := f.svc.Balance().Production
	inc := entity.Production(got.Kingdoms["k1"].Tiles, p)
	brute := entity.ProductionFromGrid(got.Tiles, got.Ownership, "k1", p)
	if inc != brute {
		t.Fatalf("期望增量产出与逐格扫描一致, inc=%+v brute=%+v", inc, brute)
	}
}

func TestRequiredPower_门槛按地形严格递增(t *testing.T) {
	f := newFixture(t, plainWorld(), Options{})
	tiles := []entity.Tile{
		entity.TilePlain1, entity.TileFood, entity.TileStronghold,
		entity.TileGateSame, entity.TileLandmarkFirst, entity.TileCenterLandmark,
	}
	prev := int64(0)
	for _, tile := range tiles {
		got := f.session.RequiredPower(tile)
		if got <= prev {
			t.Fatalf("期望 tile=%d 的门槛大于 %d, got=%v", tile, prev, got)
		}
		prev = got
	}
}

func TestClaim_不同王国占领不相干的格子互不冲突(t *testing.T) {
	w := plainWorld()
	addKingdom(w, "k1", entity.Point{X: 20, Y: 50}, 5000, entity.Resources{})
	addKingdom(w, "k2", entity.Point{X: 80, Y: 50}, 5000, entity.Resources{})
	f := newFixture(t, w, Options{})
	ctx := context.Background()
	// 第二个会话在任何写入前打开，网格缓存对 k1 的写入一无所知
	other, err := f.svc.OpenWorld(ctx, testWorld)
	if err != nil {
		t.Fatalf("期望打开第二个会话成功, err=%v", err)
	}

	writes := 0
	f.store.SetBeforeWrite(func(op string) {
		if op != "claim" {
			return
		}
		writes++
		if writes > 1 {
			return
		}
		// k1 读完状态、写入之前，k2 在另一个进程里占了 (81,50)
		raw := f.store.Raw(testWorld)
		k2 := raw.Kingdoms["k2"]
		raw.Ownership[entity.Point{X: 81, Y: 50}] = "k2"
		k2.Troops.Infantry -= 250
		k2.Power = entity.Power(k2.Troops, f.svc.Balance().Units)
		k2.Tiles.Add(entity.TilePlain1, 1)
	})

	if _, err := f.session.Claim(ctx, "k1", 21, 50); err != nil {
		t.Fatalf("期望 k1 占领成功, err=%v", err)
	}
	if writes != 1 {
		t.Fatalf("期望 k1 一次写入成功、没有重试, got=%v", writes)
	}
	if _, err := other.Claim(ctx, "k2", 79, 50); err != nil {
		t.Fatalf("期望 k2 占领成功, err=%v", err)
	}
	if writes != 2 {
		t.Fatalf("期望 k2 也没有重试, got=%v", writes)
	}

	got := f.world(t)
	want := map[entity.Point]entity.KingdomID{
		{X: 20, Y: 50}: "k1", {X: 21, Y: 50}: "k1",
		{X: 80, Y: 50}: "k2", {X: 81, Y: 50}: "k2", {X: 79, Y: 50}: "k2",
	}
	for pt, kid := range want {
		if owner, _ := got.OwnerAt(pt); owner != kid {
			t.Fatalf("期望 %s 属于 %s, got=%q", pt, kid, owner)
		}
	}
	if err := got.Validate(); err != nil {
		t.Fatalf("期望世界不变量成立, err=%v", err)
	}
}

func TestClaim_并发占领不相干的格子都一次成功(t *testing.T) {
	w := plainWorld()
	addKingdom(w, "k1", entity.Point{X: 20, Y: 50}, 5000, entity.Resources{})
	addKingdom(w, "k2", entity.Point{X: 80, Y: 50}, 5000, entity.Resources{})
	f := newFixture(t, w, Options{})
	ctx := context.Background()
	other, err := f.svc.OpenWorld(ctx, testWorld)
	if err != nil {
		t.Fatalf("期望打开第二个会话成功, err=%v", err)
	}
	var writes atomic.Int64
	f.store.SetBeforeWrite(func(op string) {
		if op == "claim" {
			writes.Add(1)
		}
	})

	const steps = 5
	errs := make(chan error, 2*steps)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 1; i <= steps; i++ {
			_, err := f.session.Claim(ctx, "k1", 20, 50+i)
			errs <- err
		}
	}()
	go func() {
		defer wg.Done()
		for i := 1; i <= steps; i++ {
			_, err := other.Claim(ctx, "k2", 80, 50-i)
			errs <- err
		}
	}()
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("期望所有占领成功, err=%v", err)
		}
	}
	if got := writes.Load(); got != 2*steps {
		t.Fatalf("期望每次占领恰好写入一次, got=%v", got)
	}
	got := f.world(t)
	if got.Kingdoms["k1"].Tiles[entity.TilePlain1] != steps+1 || got.Kingdoms["k2"].Tiles[entity.TilePlain1] != steps+1 {
		t.Fatalf("期望两边各占 %d 格, got=%+v %+v", steps+1, got.Kingdoms["k1"].Tiles, got.Kingdoms["k2"].Tiles)
	}
}
