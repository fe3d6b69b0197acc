package worldgen

import (
	"math"
	"sort"

	"Dominion/internal/world/entity"
)

type pairKey struct {
	a, b entity.ProvinceID // a < b
}

func makePair(p, q entity.ProvinceID) pairKey {
	if p > q {
		p, q = q, p
	}
	return pairKey{a: p, b: q}
}

var dirs4 = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// borderCells 扫描四邻域：格子挨着另一个非空白省份即为边界格。
// 返回全部边界格标记，以及每个省份对的边界格（按格子下标升序）。
func borderCells(provs *entity.ProvinceGrid) ([]bool, map[pairKey][]int) {
	n := provs.Size
	border := make([]bool, n*n)
	pairs := make(map[pairKey][]int)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			p := provs.At(x, y)
			if p == entity.VoidProvince {
				continue
			}
			idx := y*n + x
			var seen [4]entity.ProvinceID
			for i, d := range dirs4 {
				nx, ny := x+d[0], y+d[1]
				if !provs.In(nx, ny) {
					continue
				}
				q := provs.At(nx, ny)
				if q == entity.VoidProvince || q == p {
					continue
				}
				border[idx] = true
				dup := false
				for _, s := range seen[:i] {
					if s == q {
						dup = true
						break
					}
				}
				seen[i] = q
				if !dup {
					k := makePair(p, q)
					pairs[k] = append(pairs[k], idx)
				}
			}
		}
	}
	return border, pairs
}

// synthesizeBorders 建立省份邻接并开凿关口：
// 只有层距 ≤1 的省份对合法，每个合法对开一个 3×3 关口，其余边界格全部变成山地。
func synthesizeBorders(cfg Config, tiles *entity.Grid, provs *entity.ProvinceGrid, provinces map[entity.ProvinceID]*entity.Province) {
	n := cfg.Size
	border, pairs := borderCells(provs)

	keys := make([]pairKey, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].a != keys[j].a {
			return keys[i].a < keys[j].a
		}
		return keys[i].b < keys[j].b
	})

	gateCell := make([]bool, n*n)
	var placed []entity.Point
	for _, k := range keys {
		p, q := provinces[k.a], provinces[k.b]
		if p == nil || q == nil || entity.LayerDistance(p.Layer, q.Layer) > 1 {
			continue
		}
		p.Neighbors = append(p.Neighbors, q.ID)
		q.Neighbors = append(q.Neighbors, p.ID)

		anchor := pickGateAnchor(freeCells(pairs[k], gateCell), n, p.Center, q.Center, placed, cfg.GateSpacing)
		placed = append(placed, anchor)

		tier := entity.GateTier(p.Layer, q.Layer)
		code := entity.GateTile(tier)
		cells := make([]entity.Point, 0, 9)
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				x, y := anchor.X+dx, anchor.Y+dy
				if !provs.In(x, y) {
					continue
				}
				if id := provs.At(x, y); id != p.ID && id != q.ID {
					continue
				}
				// 已属于先开凿的关口，保持它的 Cells 不失效
				if gateCell[y*n+x] {
					continue
				}
				tiles.Set(x, y, code)
				gateCell[y*n+x] = true
				cells = append(cells, entity.Point{X: x, Y: y})
			}
		}
		open := entity.GateOpen(tier, p.Unlocked, q.Unlocked)
		p.Gates = append(p.Gates, entity.Gate{To: q.ID, Tier: tier, Open: open, Cells: cells})
		q.Gates = append(q.Gates, entity.Gate{To: p.ID, Tier: tier, Open: open, Cells: append([]entity.Point(nil), cells...)})
	}

	for idx, b := range border {
		if b && !gateCell[idx] {
			tiles.Cells[idx] = entity.TileMountain
		}
	}
}

// freeCells 去掉已是关口的候选格；全部被占时原样返回。
func freeCells(candidates []int, gateCell []bool) []int {
	out := make([]int, 0, len(candidates))
	for _, idx := range candidates {
		if !gateCell[idx] {
			out = append(out, idx)
		}
	}
	if len(out) == 0 {
		return candidates
	}
	return out
}

// pickGateAnchor 先剔除离已有关口太近的候选，再取离两省中心连线中点最近的格子；剔除后为空则退回全集。
func pickGateAnchor(candidates []int, n int, c1, c2 entity.Point, placed []entity.Point, spacing float64) entity.Point {
	mx := float64(c1.X+c2.X) / 2
	my := float64(c1.Y+c2.Y) / 2
	nearestTo := func(filter bool) (entity.Point, bool) {
		best, bestD, found := entity.Point{}, math.MaxFloat64, false
		for _, idx := range candidates {
			pt := entity.Point{X: idx % n, Y: idx / n}
			if filter && tooClose(pt, placed, spacing) {
				continue
			}
			dx, dy := float64(pt.X)-mx, float64(pt.Y)-my
			if d := dx*dx + dy*dy; d < bestD {
				best, bestD, found = pt, d, true
			}
		}
		return best, found
	}
	if pt, ok := nearestTo(true); ok {
		return pt
	}
	pt, _ := nearestTo(false)
	return pt
}

func tooClose(pt entity.Point, placed []entity.Point, spacing float64) bool {
	for _, g := range placed {
		dx, dy := float64(pt.X-g.X), float64(pt.Y-g.Y)
		if dx*dx+dy*dy < spacing*spacing {
			return true
		}
	}
	return false
}
