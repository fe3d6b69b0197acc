package service

import (
	"context"
	"sort"
	"time"

	"Dominion/internal/world/entity"
)

// WorldView 是世界元数据与省份列表，不带网格。
type WorldView struct {
	ID          entity.WorldID     `json:"id"`
	Size        int                `json:"size"`
	Seed        int64              `json:"seed"`
	Day         int                `json:"day"`
	CreatedAt   time.Time          `json:"created_at"`
	SeasonEndAt time.Time          `json:"season_end_at"`
	Kingdoms    []KingdomSummary   `json:"kingdoms"`
	Provinces   []*entity.Province `json:"provinces"`
}

type KingdomSummary struct {
	ID     entity.KingdomID `json:"id"`
	Name   string           `json:"name"`
	Castle entity.Point     `json:"castle"`
	Power  int64            `json:"power"`
	Tiles  int64            `json:"tiles"`
}

// GridView 是三张 N×N 网格，行主序。
type GridView struct {
	Size      int                 `json:"size"`
	Tiles     []entity.Tile       `json:"tiles"`
	Provinces []entity.ProvinceID `json:"provinces"`
	Owners    []entity.KingdomID  `json:"owners"`
}

func (ws *WorldSession) View(ctx context.Context) (*WorldView, error) {
	w, err := ws.load(ctx)
	if err != nil {
		return nil, err
	}
	v := &WorldView{
		ID:          w.ID,
		Size:        w.Size,
		Seed:        w.Seed,
		Day:         w.Day,
		CreatedAt:   w.CreatedAt,
		SeasonEndAt: w.SeasonEndAt,
		Kingdoms:    make([]KingdomSummary, 0, len(w.Kingdoms)),
		Provinces:   w.SortedProvinces(),
	}
	for _, k := range w.Kingdoms {
		var tiles int64
		for _, n := range k.Tiles {
			tiles += n
		}
		v.Kingdoms = append(v.Kingdoms, KingdomSummary{ID: k.ID, Name: k.Name, Castle: k.Castle, Power: k.Power, Tiles: tiles})
	}
	sort.Slice(v.Kingdoms, func(i, j int) bool { return v.Kingdoms[i].ID < v.Kingdoms[j].ID })
	return v, nil
}

func (ws *WorldSession) Grid(ctx context.Context) (*GridView, error) {
	w, err := ws.load(ctx)
	if err != nil {
		return nil, err
	}
	return &GridView{
		Size:      w.Size,
		Tiles:     ws.tiles.Cells,
		Provinces: ws.provs.Cells,
		Owners:    w.DenseOwnership(),
	}, nil
}
