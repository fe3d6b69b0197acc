package memory

import (
	"context"
	"sync"

	"Dominion/internal/world/app/port"
	"Dominion/internal/world/entity"
)

// WorldStore 是进程内实现，守卫语义与 mongodb 版一致，用于单机部署和测试。
type WorldStore struct {
	mu     sync.Mutex
	worlds map[entity.WorldID]*entity.World

	// beforeWrite 在校验守卫之前调用，测试用它模拟并发写入。
	beforeWrite func(op string)
}

func NewWorldStore() *WorldStore {
	return &WorldStore{worlds: make(map[entity.WorldID]*entity.World)}
}

// SetBeforeWrite 注入写前钩子（持锁调用，钩子内可直接改 Raw 返回的世界）。
func (s *WorldStore) SetBeforeWrite(fn func(op string)) {
	s.mu.Lock()
	s.beforeWrite = fn
	s.mu.Unlock()
}

// Raw 返回内部世界指针，只能在 beforeWrite 钩子里或测试中使用。
func (s *WorldStore) Raw(id entity.WorldID) *entity.World {
	return s.worlds[id]
}

func (s *WorldStore) CreateWorld(_ context.Context, w *entity.World) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.worlds[w.ID]; ok {
		return port.ErrAlreadyExists
	}
	s.worlds[w.ID] = w.Clone()
	return nil
}

func (s *WorldStore) LoadGrids(_ context.Context, id entity.WorldID) (*entity.Grid, *entity.ProvinceGrid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.worlds[id]
	if !ok {
		return nil, nil, port.ErrNotFound
	}
	return w.Tiles, w.Provinces, nil
}

func (s *WorldStore) LoadState(_ context.Context, id entity.WorldID) (*entity.World, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.worlds[id]
	if !ok {
		return nil, port.ErrNotFound
	}
	out := w.Clone()
	out.Tiles, out.Provinces = nil, nil
	return out, nil
}

func (s *WorldStore) ApplyClaim(_ context.Context, id entity.WorldID, u port.ClaimUpdate) error {
	return s.write(id, "claim", func(w *entity.World) error {
		if w.Ownership[u.Cell] != u.ExpectedOwner || w.Ownership[u.Via] != u.Attacker.ID {
			return port.ErrConflict
		}
		att, ok := w.Kingdoms[u.Attacker.ID]
		if !ok || att.Troops != u.Attacker.Before {
			return port.ErrConflict
		}
		var def *entity.Kingdom
		if u.Defender != nil {
			def, ok = w.Kingdoms[u.Defender.ID]
			if !ok || def.Troops != u.Defender.Before {
				return port.ErrConflict
			}
		}
		w.Ownership[u.Cell] = u.Attacker.ID
		applyDelta(att, u.Attacker, u.Tile)
		if def != nil {
			applyDelta(def, *u.Defender, u.Tile)
		}
		return nil
	})
}

func applyDelta(k *entity.Kingdom, d port.KingdomDelta, tile entity.Tile) {
	k.Troops = d.After
	k.Power = d.Power
	if d.TileDelta != 0 {
		if k.Tiles == nil {
			k.Tiles = make(entity.Histogram)
		}
		k.Tiles.Add(tile, d.TileDelta)
	}
}

func (s *WorldStore) ReserveSpawn(_ context.Context, id entity.WorldID, u port.SpawnUpdate) error {
	return s.write(id, "spawn", func(w *entity.World) error {
		if _, ok := w.Kingdoms[u.Kingdom.ID]; ok {
			return port.ErrConflict
		}
		if u.MaxKingdoms > 0 && len(w.Kingdoms) >= u.MaxKingdoms {
			return port.ErrConflict
		}
		for _, c := range u.Cells {
			if _, taken := w.Ownership[c]; taken {
				return port.ErrConflict
			}
		}
		for _, c := range u.Cells {
			w.Ownership[c] = u.Kingdom.ID
		}
		w.Kingdoms[u.Kingdom.ID] = u.Kingdom.Clone()
		return nil
	})
}

func (s *WorldStore) EnqueueOrder(_ context.Context, id entity.WorldID, u port.OrderUpdate) error {
	return s.write(id, "enqueue", func(w *entity.World) error {
		k, ok := w.Kingdoms[u.Kingdom]
		if !ok || !k.Resources.Covers(u.Cost) || !k.QueueEnd().Equal(u.ExpectedQueueEnd) {
			return port.ErrConflict
		}
		k.Resources = k.Resources.Minus(u.Cost)
		k.Queue = append(k.Queue, u.Order)
		return nil
	})
}

func (s *WorldStore) CompleteOrders(_ context.Context, id entity.WorldID, u port.CompletionUpdate) error {
	return s.write(id, "complete", func(w *entity.World) error {
		k, ok := w.Kingdoms[u.Kingdom]
		if !ok || k.Troops != u.Before {
			return port.ErrConflict
		}
		drop := make(map[string]struct{}, len(u.OrderIDs))
		for _, oid := range u.OrderIDs {
			drop[oid] = struct{}{}
		}
		kept := k.Queue[:0:0]
		for _, o := range k.Queue {
			if _, ok := drop[o.ID]; ok {
				delete(drop, o.ID)
				continue
			}
			kept = append(kept, o)
		}
		if len(drop) != 0 {
			return port.ErrConflict
		}
		k.Queue = kept
		k.Troops = u.After
		k.Power = u.Power
		return nil
	})
}

func (s *WorldStore) CreditProduction(_ context.Context, id entity.WorldID, u port.ProductionUpdate) error {
	return s.write(id, "produce", func(w *entity.World) error {
		k, ok := w.Kingdoms[u.Kingdom]
		if !ok || k.ProducedTick != u.From || u.From >= u.Tick {
			return port.ErrConflict
		}
		k.Resources = k.Resources.Plus(u.Gain)
		k.ProducedTick = u.Tick
		return nil
	})
}

func (s *WorldStore) UnlockProvinces(_ context.Context, id entity.WorldID, u port.UnlockUpdate) error {
	return s.write(id, "unlock", func(w *entity.World) error {
		for _, pid := range u.Provinces {
			p, ok := w.ProvinceSet[pid]
			if !ok || p.Unlocked {
				return port.ErrConflict
			}
		}
		for _, g := range u.Gates {
			p, ok := w.ProvinceSet[g.Province]
			if !ok || g.Index < 0 || g.Index >= len(p.Gates) {
				return port.ErrConflict
			}
		}
		for _, pid := range u.Provinces {
			w.ProvinceSet[pid].Unlocked = true
		}
		for _, g := range u.Gates {
			w.ProvinceSet[g.Province].Gates[g.Index].Open = true
		}
		if u.Day > w.Day {
			w.Day = u.Day
		}
		return nil
	})
}

// write 在锁内先在副本上校验并修改，全部通过后才替换，保证守卫失败时没有部分写入。
func (s *WorldStore) write(id entity.WorldID, op string, fn func(w *entity.World) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.beforeWrite != nil {
		s.beforeWrite(op)
	}
	w, ok := s.worlds[id]
	if !ok {
		return port.ErrNotFound
	}
	next := w.Clone()
	if err := fn(next); err != nil {
		return err
	}
	s.worlds[id] = next
	return nil
}

var _ port.WorldStore = (*WorldStore)(nil)
