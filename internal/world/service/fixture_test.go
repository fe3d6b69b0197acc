package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"Dominion/internal/shared/gameconfig/balance"
	"Dominion/internal/world/app/port"
	"Dominion/internal/world/entity"
	"Dominion/internal/world/infra/persistence/memory"
)

const testWorld entity.WorldID = "w-test"

type recordingPublisher struct {
	mu     sync.Mutex
	events []port.Event
}

func (p *recordingPublisher) Publish(_ context.Context, events ...port.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
}

func (p *recordingPublisher) count(t port.EventType) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.Type == t {
			n++
		}
	}
	return n
}

// countingStore 统计 LoadState 次数。
type countingStore struct {
	*memory.WorldStore
	loads atomic.Int64
}

func (s *countingStore) LoadState(ctx context.Context, id entity.WorldID) (*entity.World, error) {
	s.loads.Add(1)
	return s.WorldStore.LoadState(ctx, id)
}

type recordingJournal struct {
	mu      sync.Mutex
	reports []entity.BattleReport
}

func (j *recordingJournal) Append(r entity.BattleReport) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.reports = append(j.reports, r)
}

type fixture struct {
	svc     *WorldService
	store   *countingStore
	session *WorldSession
	pub     *recordingPublisher
	journal *recordingJournal
	now     time.Time
}

// plainWorld 是 100×100 全平原、单一外层省份的世界，便于精确构造场景。
func plainWorld() *entity.World {
	const n = 100
	tiles := entity.NewGrid(n)
	provs := entity.NewProvinceGrid(n)
	for i := range tiles.Cells {
		tiles.Cells[i] = entity.TilePlain1
		provs.Cells[i] = 1
	}
	return &entity.World{
		ID:        testWorld,
		Size:      n,
		Seed:      7,
		Tiles:     tiles,
		Provinces: provs,
		Ownership: make(map[entity.Point]entity.KingdomID),
		Kingdoms:  make(map[entity.KingdomID]*entity.Kingdom),
		ProvinceSet: map[entity.ProvinceID]*entity.Province{
			1: {ID: 1, Layer: entity.LayerOuter, Unlocked: true, CellCount: n * n},
		},
		CreatedAt: time.Unix(1_700_000_000, 0),
	}
}

// addKingdom 放一个只拥有主城格的王国，兵力全为步兵。
func addKingdom(w *entity.World, id entity.KingdomID, castle entity.Point, infantry int64, res entity.Resources) {
	troops := entity.Troops{Infantry: infantry}
	w.Kingdoms[id] = &entity.Kingdom{
		ID:        id,
		Name:      string(id),
		Castle:    castle,
		Troops:    troops,
		Power:     entity.Power(troops, balance.Default().Units),
		Resources: res,
		Tiles:     entity.Histogram{w.Tiles.At(castle.X, castle.Y): 1},
	}
	w.Ownership[castle] = id
}

func newFixture(t *testing.T, w *entity.World, opts Options) *fixture {
	t.Helper()
	f := &fixture{
		store:   &countingStore{WorldStore: memory.NewWorldStore()},
		pub:     &recordingPublisher{},
		journal: &recordingJournal{},
		now:     w.CreatedAt,
	}
	f.svc = NewWorldService(Deps{
		Store:     f.store,
		Publisher: f.pub,
		Journal:   f.journal,
		Reports:   memory.NewReportRepository(),
		Balance:   balance.Default(),
		Options:   opts,
		Now:       func() time.Time { return f.now },
	})
	ctx := context.Background()
	if err := f.store.CreateWorld(ctx, w); err != nil {
		t.Fatalf("期望创建世界成功, err=%v", err)
	}
	s, err := f.svc.OpenWorld(ctx, w.ID)
	if err != nil {
		t.Fatalf("期望打开世界成功, err=%v", err)
	}
	f.session = s
	return f
}

func (f *fixture) world(t *testing.T) *entity.World {
	t.Helper()
	w, err := f.session.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("期望读取世界成功, err=%v", err)
	}
	return w
}
