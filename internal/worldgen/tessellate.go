package worldgen

import (
	"math"

	"Dominion/internal/world/entity"
)

// 各层种子所在环的平均半径（相对外层半径）。
const (
	innerRingFrac = 0.22
	midRingFrac   = 0.50
	outerRingFrac = 0.80
)

type site struct {
	id    entity.ProvinceID
	layer entity.Layer
	x, y  float64
}

func mapCenter(size int) float64 {
	return float64(size-1) / 2
}

// outerRadius 是非空白区的切比雪夫半径。
func outerRadius(size int) float64 {
	return math.Floor(float64(size) * 0.47)
}

func isVoid(size, x, y int) bool {
	c := mapCenter(size)
	return math.Max(math.Abs(float64(x)-c), math.Abs(float64(y)-c)) > outerRadius(size)
}

// placeSites 按层放种子：中心 1 个，内层 4 个取正方向，中外层按角度均分并用自身 id 取噪声抖动。
func placeSites(cfg Config, nf *NoiseField) []site {
	c := mapCenter(cfg.Size)
	r := outerRadius(cfg.Size)
	sites := make([]site, 0, 1+4+cfg.MidSeeds+cfg.OuterSeeds)
	sites = append(sites, site{id: 1, layer: entity.LayerCenter, x: c, y: c})

	next := entity.ProvinceID(2)
	ring := func(layer entity.Layer, count int, frac float64, phase float64, jitter bool) {
		spacing := 2 * math.Pi / float64(count)
		for i := 0; i < count; i++ {
			angle := phase + spacing*float64(i)
			radius := frac * r
			if jitter {
				key := float64(next)*1.618 + 0.37
				angle += nf.Signed(key, 0.71) * spacing * 0.3
				radius += nf.Signed(key, 5.29) * r * 0.08
			}
			sites = append(sites, site{
				id:    next,
				layer: layer,
				x:     c + math.Cos(angle)*radius,
				y:     c + math.Sin(angle)*radius,
			})
			next++
		}
	}
	ring(entity.LayerInner, 4, innerRingFrac, 0, false)
	ring(entity.LayerMid, cfg.MidSeeds, midRingFrac, math.Pi/float64(cfg.MidSeeds), true)
	ring(entity.LayerOuter, cfg.OuterSeeds, outerRingFrac, 0, true)
	return sites
}

func nearestSite(sites []site, x, y float64) int {
	best, bestD := 0, math.MaxFloat64
	for i := range sites {
		dx, dy := sites[i].x-x, sites[i].y-y
		if d := dx*dx + dy*dy; d < bestD {
			best, bestD = i, d
		}
	}
	return best
}

// relaxSites 做阻尼 Lloyd 松弛：粗网格采样，求每个种子的质心并移动一半距离，中心种子不动。
func relaxSites(cfg Config, sites []site) {
	sx := make([]float64, len(sites))
	sy := make([]float64, len(sites))
	n := make([]int, len(sites))
	for iter := 0; iter < cfg.LloydIterations; iter++ {
		clear(sx)
		clear(sy)
		clear(n)
		for y := 0; y < cfg.Size; y += cfg.LloydSampleStep {
			for x := 0; x < cfg.Size; x += cfg.LloydSampleStep {
				if isVoid(cfg.Size, x, y) {
					continue
				}
				i := nearestSite(sites, float64(x), float64(y))
				sx[i] += float64(x)
				sy[i] += float64(y)
				n[i]++
			}
		}
		for i := range sites {
			if sites[i].layer == entity.LayerCenter || n[i] == 0 {
				continue
			}
			cx, cy := sx[i]/float64(n[i]), sy[i]/float64(n[i])
			sites[i].x += (cx - sites[i].x) * 0.5
			sites[i].y += (cy - sites[i].y) * 0.5
		}
	}
}

// tessellate 生成省份网格与初始地形层级。坐标先经两路多层噪声扭曲再找最近种子，边界因此不规则。
func tessellate(cfg Config) (*entity.Grid, *entity.ProvinceGrid, []site) {
	jitter := NewNoiseField(cfg.Seed)
	warpX := NewNoiseField(cfg.Seed + 101)
	warpY := NewNoiseField(cfg.Seed + 202)

	sites := placeSites(cfg, jitter)
	relaxSites(cfg, sites)

	tiles := entity.NewGrid(cfg.Size)
	provs := entity.NewProvinceGrid(cfg.Size)
	for y := 0; y < cfg.Size; y++ {
		for x := 0; x < cfg.Size; x++ {
			if isVoid(cfg.Size, x, y) {
				continue
			}
			fx, fy := float64(x), float64(y)
			wx := fx + warpX.Octaves(fx, fy, 3, cfg.WarpFrequency, 0.5)*cfg.WarpStrength
			wy := fy + warpY.Octaves(fx, fy, 3, cfg.WarpFrequency, 0.5)*cfg.WarpStrength
			s := sites[nearestSite(sites, wx, wy)]
			provs.Set(x, y, s.id)
			tiles.Set(x, y, entity.PlainTileFor(s.layer))
		}
	}
	return tiles, provs, sites
}
