package entity

import (
	"fmt"
	"sort"
	"time"
)

// World 是一个世界的完整视图：不可变的地形/省份网格 + 可变的归属、王国、省份解锁状态。
type World struct {
	ID          WorldID
	Size        int
	Seed        int64
	Tiles       *Grid
	Provinces   *ProvinceGrid
	Ownership   map[Point]KingdomID
	Kingdoms    map[KingdomID]*Kingdom
	ProvinceSet map[ProvinceID]*Province
	Day         int
	CreatedAt   time.Time
	SeasonEndAt time.Time
}

func (w *World) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < w.Size && y < w.Size
}

func (w *World) OwnerAt(pt Point) (KingdomID, bool) {
	k, ok := w.Ownership[pt]
	return k, ok && k != ""
}

func (w *World) ProvinceAt(pt Point) (*Province, bool) {
	if !w.In(pt.X, pt.Y) {
		return nil, false
	}
	p, ok := w.ProvinceSet[w.Provinces.At(pt.X, pt.Y)]
	return p, ok
}

// GateAt 返回覆盖该格子的关口（只看格子所在省份记录的那一份）。
func (w *World) GateAt(pt Point) (*Gate, bool) {
	p, ok := w.ProvinceAt(pt)
	if !ok {
		return nil, false
	}
	return p.GateAt(pt)
}

// OwnedNeighbor 返回第一个属于 kid 的八邻格，按固定顺序扫描。
func (w *World) OwnedNeighbor(pt Point, kid KingdomID) (Point, bool) {
	for _, n := range pt.Neighbors8() {
		if !w.In(n.X, n.Y) {
			continue
		}
		if owner, ok := w.OwnerAt(n); ok && owner == kid {
			return n, true
		}
	}
	return Point{}, false
}

// DenseOwnership 把稀疏归属展开成 N×N，便于比较与下发。
func (w *World) DenseOwnership() []KingdomID {
	out := make([]KingdomID, w.Size*w.Size)
	for pt, k := range w.Ownership {
		if w.In(pt.X, pt.Y) {
			out[pt.Y*w.Size+pt.X] = k
		}
	}
	return out
}

// SortedProvinces 按 id 升序返回省份。
func (w *World) SortedProvinces() []*Province {
	out := make([]*Province, 0, len(w.ProvinceSet))
	for _, p := range w.ProvinceSet {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Validate 检查世界不变量：非空白格的省份存在；归属者都是本世界的王国。
func (w *World) Validate() error {
	if w.Tiles == nil || w.Provinces == nil || w.Tiles.Size != w.Size || w.Provinces.Size != w.Size {
		return fmt.Errorf("world %s: grid size mismatch", w.ID)
	}
	for i, pid := range w.Provinces.Cells {
		if pid == VoidProvince {
			continue
		}
		if _, ok := w.ProvinceSet[pid]; !ok {
			return fmt.Errorf("world %s: cell %d refers to unknown province %d", w.ID, i, pid)
		}
	}
	for pt, owner := range w.Ownership {
		if _, ok := w.Kingdoms[owner]; !ok {
			return fmt.Errorf("world %s: cell %s owned by unknown kingdom %s", w.ID, pt, owner)
		}
	}
	return nil
}

// Clone 深拷贝可变部分，不可变网格共享。
func (w *World) Clone() *World {
	out := *w
	out.Ownership = make(map[Point]KingdomID, len(w.Ownership))
	for k, v := range w.Ownership {
		out.Ownership[k] = v
	}
	out.Kingdoms = make(map[KingdomID]*Kingdom, len(w.Kingdoms))
	for k, v := range w.Kingdoms {
		out.Kingdoms[k] = v.Clone()
	}
	out.ProvinceSet = make(map[ProvinceID]*Province, len(w.ProvinceSet))
	for k, v := range w.ProvinceSet {
		out.ProvinceSet[k] = v.Clone()
	}
	return &out
}
