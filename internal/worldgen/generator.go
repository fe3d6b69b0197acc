package worldgen

import (
	"errors"
	"fmt"
	"sort"

	"Dominion/internal/world/entity"
	"Dominion/modules/kit/logx"

	"go.uber.org/zap"
)

const (
	MinSize = 48
	MaxSize = 2048
)

var ErrInvalidSize = errors.New("world size out of range")

// Config 是一次生成的全部参数，零值字段由 withDefaults 补齐。
type Config struct {
	Size int
	Seed int64

	MidSeeds        int
	OuterSeeds      int
	LloydIterations int
	LloydSampleStep int

	// WarpStrength 是坐标扰动的最大偏移（格），WarpFrequency 是扰动噪声的基频。
	WarpStrength  float64
	WarpFrequency float64

	GateSpacing       float64
	MaxPlacementTries int

	// 按层（outer/mid/inner/center）的每省资源点数量与解锁日。
	ResourcesPerProvince [4]int
	UnlockDays           [4]int

	Logger logx.Logger
}

func DefaultConfig(size int, seed int64) Config {
	return Config{Size: size, Seed: seed}.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.MidSeeds <= 0 {
		c.MidSeeds = 8
	}
	if c.OuterSeeds <= 0 {
		c.OuterSeeds = 12
	}
	if c.LloydIterations <= 0 {
		c.LloydIterations = 3
	}
	if c.LloydSampleStep <= 0 {
		c.LloydSampleStep = max(2, c.Size/64)
	}
	if c.WarpStrength <= 0 {
		c.WarpStrength = float64(c.Size) * 0.03
	}
	if c.WarpFrequency <= 0 {
		c.WarpFrequency = 4.0 / float64(max(c.Size, 1))
	}
	if c.GateSpacing <= 0 {
		c.GateSpacing = float64(c.Size) / 16
	}
	if c.MaxPlacementTries <= 0 {
		c.MaxPlacementTries = 60
	}
	if c.ResourcesPerProvince == [4]int{} {
		c.ResourcesPerProvince = [4]int{6, 5, 4, 2}
	}
	if c.UnlockDays == [4]int{} {
		c.UnlockDays = [4]int{0, 3, 7, 14}
	}
	if c.Logger == nil {
		c.Logger = logx.Nop()
	}
	return c
}

// Result 是一次生成的不可变快照。
type Result struct {
	Size         int
	Seed         int64
	Tiles        *entity.Grid
	Provinces    *entity.ProvinceGrid
	ProvinceList []*entity.Province
	Structures   []Structure
	// Skipped 是多次尝试仍放不下而被跳过的建筑数。
	Skipped int
}

// ProvinceMap 按 id 建索引，省份指针与 ProvinceList 共享。
func (r *Result) ProvinceMap() map[entity.ProvinceID]*entity.Province {
	out := make(map[entity.ProvinceID]*entity.Province, len(r.ProvinceList))
	for _, p := range r.ProvinceList {
		out[p.ID] = p
	}
	return out
}

// Generate 依次执行分区、边界与关口、建筑摆放，同一 (size, seed) 结果完全一致。
func Generate(cfg Config) (*Result, error) {
	if cfg.Size < MinSize || cfg.Size > MaxSize {
		return nil, fmt.Errorf("%w: size=%d, want [%d,%d]", ErrInvalidSize, cfg.Size, MinSize, MaxSize)
	}
	cfg = cfg.withDefaults()
	log := cfg.Logger.With(zap.Int64("seed", cfg.Seed), zap.Int("size", cfg.Size))

	tiles, provs, sites := tessellate(cfg)
	provinces := buildProvinces(cfg, provs, sites)
	synthesizeBorders(cfg, tiles, provs, provinces)
	structures, skipped := placeStructures(cfg, tiles, provs, provinces, log)

	list := make([]*entity.Province, 0, len(provinces))
	for _, p := range provinces {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })

	log.Info("world generated",
		zap.Int("provinces", len(list)),
		zap.Int("structures", len(structures)),
		zap.Int("skipped", skipped),
	)
	return &Result{
		Size:         cfg.Size,
		Seed:         cfg.Seed,
		Tiles:        tiles,
		Provinces:    provs,
		ProvinceList: list,
		Structures:   structures,
		Skipped:      skipped,
	}, nil
}

// buildProvinces 汇总每个非空省份的层级、质心与解锁日；没有分到格子的种子不成省。
func buildProvinces(cfg Config, provs *entity.ProvinceGrid, sites []site) map[entity.ProvinceID]*entity.Province {
	type acc struct{ sx, sy, n int }
	sums := make(map[entity.ProvinceID]*acc, len(sites))
	for y := 0; y < provs.Size; y++ {
		for x := 0; x < provs.Size; x++ {
			id := provs.At(x, y)
			if id == entity.VoidProvince {
				continue
			}
			a := sums[id]
			if a == nil {
				a = &acc{}
				sums[id] = a
			}
			a.sx += x
			a.sy += y
			a.n++
		}
	}
	out := make(map[entity.ProvinceID]*entity.Province, len(sums))
	for _, s := range sites {
		a, ok := sums[s.id]
		if !ok {
			continue
		}
		day := cfg.UnlockDays[s.layer]
		out[s.id] = &entity.Province{
			ID:        s.id,
			Layer:     s.layer,
			Center:    entity.Point{X: (a.sx + a.n/2) / a.n, Y: (a.sy + a.n/2) / a.n},
			UnlockDay: day,
			Unlocked:  day <= 0,
			CellCount: a.n,
		}
	}
	return out
}
