package worldgen

import (
	"math/rand"
	"sort"

	"Dominion/internal/world/entity"
	"Dominion/modules/kit/logx"

	"go.uber.org/zap"
)

// Structure 是摆放好的建筑，Anchor 为占地矩形左上角。
type Structure struct {
	Code     entity.Tile       `json:"code"`
	Anchor   entity.Point      `json:"anchor"`
	W        int               `json:"w"`
	H        int               `json:"h"`
	Province entity.ProvinceID `json:"province"`
}

// 资源点种类按层偏置：外层多粮木，内层与中心多石金。顺序 food/wood/stone/gold。
var resourceWeights = [4][4]int{
	entity.LayerOuter:  {4, 4, 1, 1},
	entity.LayerMid:    {3, 3, 2, 1},
	entity.LayerInner:  {2, 2, 3, 3},
	entity.LayerCenter: {1, 1, 2, 4},
}

type placer struct {
	cfg      Config
	tiles    *entity.Grid
	provs    *entity.ProvinceGrid
	rng      *rand.Rand
	occupied []bool
	plains   map[entity.ProvinceID][]int
	log      logx.Logger

	placed  []Structure
	skipped int
}

func placeStructures(cfg Config, tiles *entity.Grid, provs *entity.ProvinceGrid,
	provinces map[entity.ProvinceID]*entity.Province, log logx.Logger) ([]Structure, int) {
	pl := &placer{
		cfg:      cfg,
		tiles:    tiles,
		provs:    provs,
		rng:      rand.New(rand.NewSource(cfg.Seed + 303)),
		occupied: make([]bool, cfg.Size*cfg.Size),
		plains:   make(map[entity.ProvinceID][]int),
		log:      log,
	}
	for idx, t := range tiles.Cells {
		if entity.IsPlain(t) {
			id := provs.Cells[idx]
			pl.plains[id] = append(pl.plains[id], idx)
		}
	}

	byLayer := make(map[entity.Layer][]*entity.Province, 4)
	ids := make([]entity.ProvinceID, 0, len(provinces))
	for id := range provinces {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		p := provinces[id]
		byLayer[p.Layer] = append(byLayer[p.Layer], p)
	}

	// 中心地标 5×5 固定在地图正中，两座塔 2×2 在中心省内。
	if centers := byLayer[entity.LayerCenter]; len(centers) > 0 {
		pl.placeCenterLandmark(centers[0].ID)
		pl.placeRandom(entity.TileTowerEast, 2, 2, centers[0].ID)
		pl.placeRandom(entity.TileTowerWest, 2, 2, centers[0].ID)
	} else {
		pl.skip(entity.TileCenterLandmark, 0)
	}

	// 六座特殊地标 3×3 轮流放进内层省份。
	inner := byLayer[entity.LayerInner]
	for code := entity.TileLandmarkFirst; code <= entity.TileLandmarkLast; code++ {
		if len(inner) == 0 {
			pl.skip(code, 0)
			continue
		}
		pl.placeRandom(code, 3, 3, inner[int(code-entity.TileLandmarkFirst)%len(inner)].ID)
	}

	// 每省一座 2×2 据点：外/中层为 20，内层为 21。
	for _, layer := range []entity.Layer{entity.LayerOuter, entity.LayerMid, entity.LayerInner} {
		code := entity.TileStronghold
		if layer == entity.LayerInner {
			code = entity.TileStrongholdInner
		}
		for _, p := range byLayer[layer] {
			pl.placeRandom(code, 2, 2, p.ID)
		}
	}

	for _, id := range ids {
		p := provinces[id]
		for i := 0; i < cfg.ResourcesPerProvince[p.Layer]; i++ {
			pl.placeRandom(pl.resourceKind(p.Layer), 1, 1, p.ID)
		}
	}
	return pl.placed, pl.skipped
}

func (pl *placer) resourceKind(layer entity.Layer) entity.Tile {
	w := resourceWeights[layer]
	total := w[0] + w[1] + w[2] + w[3]
	r := pl.rng.Intn(total)
	for i, wi := range w {
		if r < wi {
			return entity.TileFood + entity.Tile(i)
		}
		r -= wi
	}
	return entity.TileFood
}

// fits 要求占地全部在界内、同一省份、都是未占用的平原。
func (pl *placer) fits(x, y, w, h int, pid entity.ProvinceID) bool {
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			cx, cy := x+dx, y+dy
			if !pl.tiles.In(cx, cy) {
				return false
			}
			idx := cy*pl.cfg.Size + cx
			if pl.occupied[idx] || pl.provs.Cells[idx] != pid || !entity.IsPlain(pl.tiles.Cells[idx]) {
				return false
			}
		}
	}
	return true
}

func (pl *placer) stamp(code entity.Tile, x, y, w, h int, pid entity.ProvinceID) {
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			idx := (y+dy)*pl.cfg.Size + x + dx
			pl.tiles.Cells[idx] = code
			pl.occupied[idx] = true
		}
	}
	pl.placed = append(pl.placed, Structure{Code: code, Anchor: entity.Point{X: x, Y: y}, W: w, H: h, Province: pid})
}

func (pl *placer) placeRandom(code entity.Tile, w, h int, pid entity.ProvinceID) bool {
	cands := pl.plains[pid]
	if len(cands) > 0 {
		for try := 0; try < pl.cfg.MaxPlacementTries; try++ {
			idx := cands[pl.rng.Intn(len(cands))]
			x, y := idx%pl.cfg.Size, idx/pl.cfg.Size
			if pl.fits(x, y, w, h, pid) {
				pl.stamp(code, x, y, w, h, pid)
				return true
			}
		}
	}
	pl.skip(code, pid)
	return false
}

// placeCenterLandmark 优先正中，放不下时在半径 3 内由近及远找位置。
func (pl *placer) placeCenterLandmark(pid entity.ProvinceID) bool {
	const w, h = 5, 5
	base := (pl.cfg.Size - w) / 2
	for r := 0; r <= 3; r++ {
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if max(abs(dx), abs(dy)) != r {
					continue
				}
				if pl.fits(base+dx, base+dy, w, h, pid) {
					pl.stamp(entity.TileCenterLandmark, base+dx, base+dy, w, h, pid)
					return true
				}
			}
		}
	}
	pl.skip(entity.TileCenterLandmark, pid)
	return false
}

func (pl *placer) skip(code entity.Tile, pid entity.ProvinceID) {
	pl.skipped++
	pl.log.Warn("structure placement skipped",
		zap.Uint8("code", code),
		zap.Uint16("province", uint16(pid)),
		zap.Int("tries", pl.cfg.MaxPlacementTries),
	)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
