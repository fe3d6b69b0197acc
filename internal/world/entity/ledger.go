package entity

import "Dominion/internal/shared/gameconfig/balance"

// Histogram 是地形编码 → 已占格子数。
type Histogram map[Tile]int64

func (h Histogram) Clone() Histogram {
	out := make(Histogram, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}

// Add 增减某地形的计数，归零时删除键。
func (h Histogram) Add(t Tile, n int64) {
	h[t] += n
	if h[t] == 0 {
		delete(h, t)
	}
}

// Production 按直方图计算一个 tick 的产出：
// 资源点产出对应资源 ResourceBonus；其余已占格子各产 PlainYield 粮食和木材。
func Production(h Histogram, p balance.Production) Resources {
	var out Resources
	for t, n := range h {
		if n <= 0 {
			continue
		}
		switch t {
		case TileFood:
			out.Food += n * p.ResourceBonus
		case TileWood:
			out.Wood += n * p.ResourceBonus
		case TileStone:
			out.Stone += n * p.ResourceBonus
		case TileGold:
			out.Gold += n * p.ResourceBonus
		default:
			out.Food += n * p.PlainYield
			out.Wood += n * p.PlainYield
		}
	}
	return out
}

// ProductionFromGrid 是逐格扫描的定义式，Production 必须与之相等。
func ProductionFromGrid(tiles *Grid, owners map[Point]KingdomID, kid KingdomID, p balance.Production) Resources {
	var out Resources
	for y := 0; y < tiles.Size; y++ {
		for x := 0; x < tiles.Size; x++ {
			if owners[Point{x, y}] != kid {
				continue
			}
			switch t := tiles.At(x, y); t {
			case TileFood:
				out.Food += p.ResourceBonus
			case TileWood:
				out.Wood += p.ResourceBonus
			case TileStone:
				out.Stone += p.ResourceBonus
			case TileGold:
				out.Gold += p.ResourceBonus
			default:
				out.Food += p.PlainYield
				out.Wood += p.PlainYield
			}
		}
	}
	return out
}

// BuildHistogram 从 ownership 重新统计某王国的直方图，用于加载时校验。
func BuildHistogram(tiles *Grid, owners map[Point]KingdomID, kid KingdomID) Histogram {
	h := make(Histogram)
	for pt, owner := range owners {
		if owner == kid && tiles.In(pt.X, pt.Y) {
			h[tiles.At(pt.X, pt.Y)]++
		}
	}
	return h
}
