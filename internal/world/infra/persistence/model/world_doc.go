package model

import (
	"strconv"
	"time"

	"Dominion/internal/world/entity"
)

// WorldDoc 是 world 集合里的一条文档，只放可变状态；网格在 world_grid 集合。
// ownership、kingdoms、provinces 都是以字符串为键的内嵌对象，便于按字段做条件更新。
type WorldDoc struct {
	ID           string                 `bson:"_id"`
	Size         int                    `bson:"size"`
	Seed         int64                  `bson:"seed"`
	Day          int                    `bson:"day"`
	KingdomCount int                    `bson:"kingdom_count"`
	CreatedAt    time.Time              `bson:"created_at"`
	SeasonEndAt  time.Time              `bson:"season_end_at"`
	Ownership    map[string]string      `bson:"ownership"`
	Kingdoms     map[string]KingdomDoc  `bson:"kingdoms"`
	Provinces    map[string]ProvinceDoc `bson:"provinces"`
}

type KingdomDoc struct {
	Name      string                 `bson:"name"`
	Castle    entity.Point           `bson:"castle"`
	Power     int64                  `bson:"power"`
	Resources entity.Resources       `bson:"resources"`
	Troops    entity.Troops          `bson:"troops"`
	Queue     []entity.TrainingOrder `bson:"queue"`
	// QueueEnd 冗余保存队尾结束时间，作为入队守卫字段。
	QueueEnd     time.Time        `bson:"queue_end"`
	Tiles        map[string]int64 `bson:"tiles"`
	ProducedTick int64            `bson:"produced_tick"`
	JoinedAt     time.Time        `bson:"joined_at"`
}

type ProvinceDoc struct {
	Layer     uint8        `bson:"layer"`
	Center    entity.Point `bson:"center"`
	UnlockDay int          `bson:"unlock_day"`
	Unlocked  bool         `bson:"unlocked"`
	Neighbors []uint16     `bson:"neighbors"`
	Gates     []GateDoc    `bson:"gates"`
	CellCount int          `bson:"cell_count"`
}

type GateDoc struct {
	To    uint16         `bson:"to"`
	Tier  int            `bson:"tier"`
	Open  bool           `bson:"open"`
	Cells []entity.Point `bson:"cells"`
}

// GridDoc 是 world_grid 集合里的不可变网格。
type GridDoc struct {
	ID        string `bson:"_id"`
	Size      int    `bson:"size"`
	Tiles     []byte `bson:"tiles"`
	Provinces []byte `bson:"provinces"`
}

func ProvinceKey(id entity.ProvinceID) string {
	return strconv.Itoa(int(id))
}

func TileKey(t entity.Tile) string {
	return strconv.Itoa(int(t))
}

func WorldToDoc(w *entity.World) WorldDoc {
	doc := WorldDoc{
		ID:           string(w.ID),
		Size:         w.Size,
		Seed:         w.Seed,
		Day:          w.Day,
		KingdomCount: len(w.Kingdoms),
		CreatedAt:    w.CreatedAt,
		SeasonEndAt:  w.SeasonEndAt,
		Ownership:    make(map[string]string, len(w.Ownership)),
		Kingdoms:     make(map[string]KingdomDoc, len(w.Kingdoms)),
		Provinces:    make(map[string]ProvinceDoc, len(w.ProvinceSet)),
	}
	for pt, k := range w.Ownership {
		doc.Ownership[pt.Key()] = string(k)
	}
	for id, k := range w.Kingdoms {
		doc.Kingdoms[string(id)] = KingdomToDoc(k)
	}
	for id, p := range w.ProvinceSet {
		doc.Provinces[ProvinceKey(id)] = ProvinceToDoc(p)
	}
	return doc
}

func KingdomToDoc(k *entity.Kingdom) KingdomDoc {
	tiles := make(map[string]int64, len(k.Tiles))
	for t, n := range k.Tiles {
		tiles[TileKey(t)] = n
	}
	queue := k.Queue
	if queue == nil {
		queue = []entity.TrainingOrder{}
	}
	return KingdomDoc{
		Name:         k.Name,
		Castle:       k.Castle,
		Power:        k.Power,
		Resources:    k.Resources,
		Troops:       k.Troops,
		Queue:        queue,
		QueueEnd:     k.QueueEnd(),
		Tiles:        tiles,
		ProducedTick: k.ProducedTick,
		JoinedAt:     k.JoinedAt,
	}
}

func ProvinceToDoc(p *entity.Province) ProvinceDoc {
	doc := ProvinceDoc{
		Layer:     uint8(p.Layer),
		Center:    p.Center,
		UnlockDay: p.UnlockDay,
		Unlocked:  p.Unlocked,
		Neighbors: make([]uint16, len(p.Neighbors)),
		Gates:     make([]GateDoc, len(p.Gates)),
		CellCount: p.CellCount,
	}
	for i, n := range p.Neighbors {
		doc.Neighbors[i] = uint16(n)
	}
	for i, g := range p.Gates {
		doc.Gates[i] = GateDoc{To: uint16(g.To), Tier: g.Tier, Open: g.Open, Cells: g.Cells}
	}
	return doc
}

// DocToWorld 还原可变状态，不带网格。
func DocToWorld(doc WorldDoc) *entity.World {
	w := &entity.World{
		ID:          entity.WorldID(doc.ID),
		Size:        doc.Size,
		Seed:        doc.Seed,
		Day:         doc.Day,
		CreatedAt:   doc.CreatedAt,
		SeasonEndAt: doc.SeasonEndAt,
		Ownership:   make(map[entity.Point]entity.KingdomID, len(doc.Ownership)),
		Kingdoms:    make(map[entity.KingdomID]*entity.Kingdom, len(doc.Kingdoms)),
		ProvinceSet: make(map[entity.ProvinceID]*entity.Province, len(doc.Provinces)),
	}
	for key, k := range doc.Ownership {
		pt, ok := parsePointKey(key)
		if !ok || k == "" {
			continue
		}
		w.Ownership[pt] = entity.KingdomID(k)
	}
	for id, k := range doc.Kingdoms {
		w.Kingdoms[entity.KingdomID(id)] = docToKingdom(entity.KingdomID(id), k)
	}
	for key, p := range doc.Provinces {
		n, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		w.ProvinceSet[entity.ProvinceID(n)] = docToProvince(entity.ProvinceID(n), p)
	}
	return w
}

func docToKingdom(id entity.KingdomID, d KingdomDoc) *entity.Kingdom {
	tiles := make(entity.Histogram, len(d.Tiles))
	for key, n := range d.Tiles {
		t, err := strconv.Atoi(key)
		if err != nil || n == 0 {
			continue
		}
		tiles[entity.Tile(t)] = n
	}
	return &entity.Kingdom{
		ID:           id,
		Name:         d.Name,
		Castle:       d.Castle,
		Power:        d.Power,
		Resources:    d.Resources,
		Troops:       d.Troops,
		Queue:        d.Queue,
		Tiles:        tiles,
		ProducedTick: d.ProducedTick,
		JoinedAt:     d.JoinedAt,
	}
}

func docToProvince(id entity.ProvinceID, d ProvinceDoc) *entity.Province {
	p := &entity.Province{
		ID:        id,
		Layer:     entity.Layer(d.Layer),
		Center:    d.Center,
		UnlockDay: d.UnlockDay,
		Unlocked:  d.Unlocked,
		Neighbors: make([]entity.ProvinceID, len(d.Neighbors)),
		Gates:     make([]entity.Gate, len(d.Gates)),
		CellCount: d.CellCount,
	}
	for i, n := range d.Neighbors {
		p.Neighbors[i] = entity.ProvinceID(n)
	}
	for i, g := range d.Gates {
		p.Gates[i] = entity.Gate{To: entity.ProvinceID(g.To), Tier: g.Tier, Open: g.Open, Cells: g.Cells}
	}
	return p
}

func parsePointKey(key string) (entity.Point, bool) {
	for i := 0; i < len(key); i++ {
		if key[i] != '_' {
			continue
		}
		x, err1 := strconv.Atoi(key[:i])
		y, err2 := strconv.Atoi(key[i+1:])
		if err1 != nil || err2 != nil {
			return entity.Point{}, false
		}
		return entity.Point{X: x, Y: y}, true
	}
	return entity.Point{}, false
}
