package service

import (
	"context"
	"errors"
	"time"

	"Dominion/internal/world/app/port"
	"Dominion/internal/world/entity"
)

// WorldSession 绑定一个已打开的世界：不可变网格在 OpenWorld 时显式加载一次，
// 可变状态每次操作都从存储重新读取。由世界 actor 持有，actor 停止即丢弃。
type WorldSession struct {
	svc       *WorldService
	id        entity.WorldID
	size      int
	seed      int64
	tiles     *entity.Grid
	provs     *entity.ProvinceGrid
	createdAt time.Time

	// spawnCells 是外层省份里 3×3 全为平原的中心格，按行主序。
	spawnCells []entity.Point
}

// OpenWorld 加载网格并预计算出生候选格。
func (s *WorldService) OpenWorld(ctx context.Context, id entity.WorldID) (*WorldSession, error) {
	tiles, provs, err := s.store.LoadGrids(ctx, id)
	if err != nil {
		return nil, storeErr(err, id)
	}
	st, err := s.store.LoadState(ctx, id)
	if err != nil {
		return nil, storeErr(err, id)
	}
	ws := &WorldSession{
		svc:       s,
		id:        id,
		size:      st.Size,
		seed:      st.Seed,
		tiles:     tiles,
		provs:     provs,
		createdAt: st.CreatedAt,
	}
	ws.spawnCells = spawnCandidates(tiles, provs, st.ProvinceSet)
	return ws, nil
}

func (ws *WorldSession) ID() entity.WorldID {
	return ws.id
}

func (ws *WorldSession) Size() int {
	return ws.size
}

// load 读取可变状态并挂上缓存的网格。
func (ws *WorldSession) load(ctx context.Context) (*entity.World, error) {
	w, err := ws.svc.store.LoadState(ctx, ws.id)
	if err != nil {
		return nil, storeErr(err, ws.id)
	}
	w.Tiles = ws.tiles
	w.Provinces = ws.provs
	return w, nil
}

// retryOn 第一次尝试使用调用方给的状态 w（nil 则读取），只有写入冲突后才重新读取。
func (ws *WorldSession) retryOn(ctx context.Context, op string, w *entity.World, fn func(w *entity.World) error) error {
	return ws.svc.retry(ctx, op, ws.id, func() error {
		if w == nil {
			var err error
			if w, err = ws.load(ctx); err != nil {
				return err
			}
		}
		err := fn(w)
		if errors.Is(err, port.ErrConflict) {
			w = nil
		}
		return err
	})
}

// Snapshot 返回完整的世界视图。
func (ws *WorldSession) Snapshot(ctx context.Context) (*entity.World, error) {
	return ws.load(ctx)
}

func (ws *WorldSession) Kingdom(ctx context.Context, kid entity.KingdomID) (*entity.Kingdom, error) {
	w, err := ws.load(ctx)
	if err != nil {
		return nil, err
	}
	k, ok := w.Kingdoms[kid]
	if !ok {
		return nil, ErrKingdomNotFound.WithData("kingdom_id", kid)
	}
	return k, nil
}

// DayAt 是 now 时刻的世界天数，从创建时刻起算。
func (ws *WorldSession) DayAt(now time.Time) int {
	if now.Before(ws.createdAt) {
		return 0
	}
	return int(now.Sub(ws.createdAt) / ws.svc.opts.DayLength)
}

// TickAt 是 now 时刻的产出 tick 序号。
func (ws *WorldSession) TickAt(now time.Time) int64 {
	if now.Before(ws.createdAt) {
		return 0
	}
	return int64(now.Sub(ws.createdAt) / ws.svc.opts.TickInterval)
}

// TickReport 汇总一次 tick 做了什么。
type TickReport struct {
	Day       int
	Unlocked  int
	Completed int
	Produced  int
}

// Tick 是世界 actor 周期执行的维护动作：推进天数、完成到期造兵、结算产出。
// 每一步都是幂等的，重复执行或多进程同时执行都不会重复入账。
// 整个 tick 只读取一次状态，各步骤在这份状态上推进，只有写入冲突才重新读取。
func (ws *WorldSession) Tick(ctx context.Context, now time.Time) (TickReport, error) {
	rep := TickReport{Day: ws.DayAt(now)}
	w, err := ws.load(ctx)
	if err != nil {
		return rep, err
	}
	if rep.Unlocked, err = ws.advanceDay(ctx, w, rep.Day); err != nil {
		return rep, err
	}
	if rep.Completed, err = ws.completeAllDue(ctx, w, now); err != nil {
		return rep, err
	}
	if rep.Produced, err = ws.creditProduction(ctx, w, ws.TickAt(now)); err != nil {
		return rep, err
	}
	return rep, nil
}
