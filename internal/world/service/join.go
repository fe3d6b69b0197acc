package service

import (
	"context"
	"hash/fnv"
	"math/rand"

	"go.uber.org/zap"

	"Dominion/internal/world/app/port"
	"Dominion/internal/world/entity"
)

type JoinResult struct {
	SpawnX  int  `json:"spawn_x"`
	SpawnY  int  `json:"spawn_y"`
	Existed bool `json:"existed"`
}

// Join 让王国加入世界：在外层平原上找一个 3×3 空地作为主城，发放初始兵力与资源。
// 已加入的王国直接返回原主城。
func (ws *WorldSession) Join(ctx context.Context, kid entity.KingdomID, name string) (*JoinResult, error) {
	if !validID(string(kid)) {
		return nil, ErrInvalidParam.WithData("kingdom_id", kid)
	}
	if name == "" {
		name = string(kid)
	}
	if !validName(name) {
		return nil, ErrInvalidParam.WithData("name", name)
	}

	var (
		res     *JoinResult
		kingdom *entity.Kingdom
		cells   []entity.Point
	)
	rng := rand.New(rand.NewSource(spawnSeed(ws.seed, kid)))
	err := ws.svc.retry(ctx, "join", ws.id, func() error {
		w, err := ws.load(ctx)
		if err != nil {
			return err
		}
		if k, ok := w.Kingdoms[kid]; ok {
			res = &JoinResult{SpawnX: k.Castle.X, SpawnY: k.Castle.Y, Existed: true}
			return nil
		}
		if len(w.Kingdoms) >= ws.svc.opts.MaxKingdoms {
			return ErrWorldFull.WithData("max_kingdoms", ws.svc.opts.MaxKingdoms)
		}
		castle, ok := ws.pickSpawn(w, rng)
		if !ok {
			return ErrNoSpawnAvailable.WithData("tries", ws.svc.opts.SpawnTries)
		}

		now := ws.svc.now()
		bal := ws.svc.bal
		troops := entity.Troops{Infantry: bal.Spawn.Infantry}
		cells = clusterCells(castle)
		hist := make(entity.Histogram)
		for _, c := range cells {
			hist.Add(ws.tiles.At(c.X, c.Y), 1)
		}
		kingdom = &entity.Kingdom{
			ID:           kid,
			Name:         name,
			Castle:       castle,
			Power:        entity.Power(troops, bal.Units),
			Resources:    entity.ResourcesOf(bal.Spawn.Resources),
			Troops:       troops,
			Tiles:        hist,
			ProducedTick: ws.TickAt(now),
			JoinedAt:     now,
		}
		err = ws.svc.store.ReserveSpawn(ctx, ws.id, port.SpawnUpdate{
			Kingdom:     kingdom,
			Cells:       cells,
			MaxKingdoms: ws.svc.opts.MaxKingdoms,
		})
		if err != nil {
			return storeErr(err, ws.id)
		}
		res = &JoinResult{SpawnX: castle.X, SpawnY: castle.Y}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if res.Existed {
		return res, nil
	}

	items := make([]eventItem, 0, len(cells)+1)
	items = append(items, kingdomChanged(kingdom))
	for _, c := range cells {
		items = append(items, eventItem{typ: port.EventTileOwnershipChanged,
			data: port.TileOwnershipChanged{X: c.X, Y: c.Y, NewOwnerID: kid}})
	}
	ws.svc.publish(ctx, ws.id, kingdom.JoinedAt, items...)
	ws.svc.log.WithContext(ctx).Info("kingdom joined",
		zap.String("world_id", string(ws.id)),
		zap.String("kingdom_id", string(kid)),
		zap.Int("x", res.SpawnX), zap.Int("y", res.SpawnY),
	)
	return res, nil
}

// pickSpawn 在候选格中随机尝试有限次：3×3 无主、与其他主城保持 SpawnSpacing 以上的距离。
func (ws *WorldSession) pickSpawn(w *entity.World, rng *rand.Rand) (entity.Point, bool) {
	if len(ws.spawnCells) == 0 {
		return entity.Point{}, false
	}
	spacing := ws.svc.opts.SpawnSpacing
	minDist2 := spacing * spacing
	for i := 0; i < ws.svc.opts.SpawnTries; i++ {
		c := ws.spawnCells[rng.Intn(len(ws.spawnCells))]
		if !clusterFree(w, c) {
			continue
		}
		crowded := false
		for _, k := range w.Kingdoms {
			dx, dy := k.Castle.X-c.X, k.Castle.Y-c.Y
			if dx*dx+dy*dy < minDist2 {
				crowded = true
				break
			}
		}
		if !crowded {
			return c, true
		}
	}
	return entity.Point{}, false
}

func clusterCells(center entity.Point) []entity.Point {
	out := make([]entity.Point, 0, 9)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			out = append(out, entity.Point{X: center.X + dx, Y: center.Y + dy})
		}
	}
	return out
}

func clusterFree(w *entity.World, center entity.Point) bool {
	for _, c := range clusterCells(center) {
		if _, owned := w.OwnerAt(c); owned {
			return false
		}
	}
	return true
}

// spawnCandidates 列出外层省份里以该格为中心的 3×3 全是平原且同省的格子。
func spawnCandidates(tiles *entity.Grid, provs *entity.ProvinceGrid, set map[entity.ProvinceID]*entity.Province) []entity.Point {
	var out []entity.Point
	for y := 1; y < tiles.Size-1; y++ {
		for x := 1; x < tiles.Size-1; x++ {
			pid := provs.At(x, y)
			p, ok := set[pid]
			if !ok || p.Layer != entity.LayerOuter {
				continue
			}
			good := true
			for _, c := range clusterCells(entity.Point{X: x, Y: y}) {
				if !entity.IsPlain(tiles.At(c.X, c.Y)) || provs.At(c.X, c.Y) != pid {
					good = false
					break
				}
			}
			if good {
				out = append(out, entity.Point{X: x, Y: y})
			}
		}
	}
	return out
}

// spawnSeed 让同一世界里同一王国的出生点选择可复现。
func spawnSeed(worldSeed int64, kid entity.KingdomID) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(kid))
	return worldSeed ^ int64(h.Sum64())
}
