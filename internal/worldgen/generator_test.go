package worldgen

import (
	"bytes"
	"errors"
	"testing"

	"Dominion/internal/world/entity"
)

func generate(t *testing.T, size int, seed int64) *Result {
	t.Helper()
	res, err := Generate(Config{Size: size, Seed: seed})
	if err != nil {
		t.Fatalf("期望生成成功, got=%v", err)
	}
	return res
}

func TestGenerate_同种子结果完全一致(t *testing.T) {
	a := generate(t, 128, 42)
	b := generate(t, 128, 42)
	if !bytes.Equal(a.Tiles.Cells, b.Tiles.Cells) {
		t.Fatalf("期望同种子地形网格一致")
	}
	for i := range a.Provinces.Cells {
		if a.Provinces.Cells[i] != b.Provinces.Cells[i] {
			t.Fatalf("期望同种子省份网格一致, idx=%d", i)
		}
	}
	if len(a.ProvinceList) != len(b.ProvinceList) || a.Skipped != b.Skipped {
		t.Fatalf("期望省份数与跳过数一致")
	}
	c := generate(t, 128, 43)
	if bytes.Equal(a.Tiles.Cells, c.Tiles.Cells) {
		t.Fatalf("期望不同种子产生不同地形")
	}
}

func TestGenerate_无孤儿省份id(t *testing.T) {
	for _, seed := range []int64{1, 7, 99} {
		res := generate(t, 128, seed)
		set := res.ProvinceMap()
		for idx, pid := range res.Provinces.Cells {
			tile := res.Tiles.Cells[idx]
			if pid == entity.VoidProvince {
				if tile != entity.TileVoid {
					t.Fatalf("seed=%d 期望空白格地形为 0, idx=%d tile=%d", seed, idx, tile)
				}
				continue
			}
			if _, ok := set[pid]; !ok {
				t.Fatalf("seed=%d 期望省份 %d 存在于列表中", seed, pid)
			}
			if tile == entity.TileVoid {
				t.Fatalf("seed=%d 期望非空白格地形非 0, idx=%d", seed, idx)
			}
		}
	}
}

func TestGenerate_邻接当且仅当共享边界且层距不超过1(t *testing.T) {
	res := generate(t, 160, 2024)
	set := res.ProvinceMap()

	_, pairs := borderCells(res.Provinces)
	want := make(map[pairKey]bool)
	for k := range pairs {
		if entity.LayerDistance(set[k.a].Layer, set[k.b].Layer) <= 1 {
			want[k] = true
		}
	}
	got := make(map[pairKey]bool)
	for _, p := range res.ProvinceList {
		for _, q := range p.Neighbors {
			got[makePair(p.ID, q)] = true
			if !contains(set[q].Neighbors, p.ID) {
				t.Fatalf("期望邻接对称, %d→%d", p.ID, q)
			}
		}
	}
	if len(got) != len(want) {
		t.Fatalf("期望邻接对数 %d, got=%d", len(want), len(got))
	}
	for k := range want {
		if !got[k] {
			t.Fatalf("期望 %d-%d 相邻", k.a, k.b)
		}
	}
}

func TestGenerate_层级与地形对应(t *testing.T) {
	res := generate(t, 128, 5)
	set := res.ProvinceMap()
	layers := map[entity.Layer]int{}
	for _, p := range res.ProvinceList {
		layers[p.Layer]++
	}
	if layers[entity.LayerCenter] != 1 || layers[entity.LayerInner] == 0 || layers[entity.LayerMid] == 0 || layers[entity.LayerOuter] == 0 {
		t.Fatalf("期望四层省份齐全, got=%v", layers)
	}
	for idx, tile := range res.Tiles.Cells {
		if !entity.IsPlain(tile) {
			continue
		}
		p := set[res.Provinces.Cells[idx]]
		if tile != entity.PlainTileFor(p.Layer) {
			t.Fatalf("期望平原层级与省份层级一致, idx=%d tile=%d layer=%s", idx, tile, p.Layer)
		}
	}
}

func TestGenerate_关口双向记录且状态正确(t *testing.T) {
	res := generate(t, 160, 77)
	set := res.ProvinceMap()
	gates := 0
	for _, p := range res.ProvinceList {
		if len(p.Gates) != len(p.Neighbors) {
			t.Fatalf("期望每个邻居一个关口, province=%d", p.ID)
		}
		for _, g := range p.Gates {
			gates++
			q := set[g.To]
			if g.Tier != entity.GateTier(p.Layer, q.Layer) {
				t.Fatalf("期望关口等级按较高层, got=%d", g.Tier)
			}
			if g.Open != entity.GateOpen(g.Tier, p.Unlocked, q.Unlocked) {
				t.Fatalf("期望关口开启状态与两侧解锁一致, %d→%d", p.ID, q.ID)
			}
			if len(g.Cells) == 0 || len(g.Cells) > 9 {
				t.Fatalf("期望关口占 1~9 格, got=%d", len(g.Cells))
			}
			mirror := false
			for _, back := range q.Gates {
				if back.To == p.ID && len(back.Cells) == len(g.Cells) && back.Open == g.Open {
					mirror = true
				}
			}
			if !mirror {
				t.Fatalf("期望关口在对侧省份有镜像记录, %d→%d", p.ID, q.ID)
			}
		}
	}
	if gates == 0 {
		t.Fatalf("期望至少开凿一个关口")
	}
}

func TestGenerate_关口格只属于一个关口且反查一致(t *testing.T) {
	for _, seed := range []int64{3, 11, 77, 2024} {
		res := generate(t, 160, seed)
		set := res.ProvinceMap()
		owner := make(map[entity.Point]pairKey)
		for _, p := range res.ProvinceList {
			for _, g := range p.Gates {
				k := makePair(p.ID, g.To)
				for _, c := range g.Cells {
					if prev, ok := owner[c]; ok && prev != k {
						t.Fatalf("期望关口格只属于一个关口, seed=%d cell=%s got=%v 和 %v", seed, c, prev, k)
					}
					owner[c] = k
					if tile := res.Tiles.At(c.X, c.Y); tile != entity.GateTile(g.Tier) {
						t.Fatalf("期望关口格编码与等级一致, seed=%d cell=%s got=%v", seed, c, tile)
					}
					// 按格子所在省份反查，必须回到同一个关口
					home := set[res.Provinces.At(c.X, c.Y)]
					back, ok := home.GateAt(c)
					if !ok || makePair(home.ID, back.To) != k || back.Tier != g.Tier {
						t.Fatalf("期望 GateAt 反查到同一关口, seed=%d cell=%s got=%+v", seed, c, back)
					}
				}
			}
		}
	}
}

func TestGenerate_边界格要么是关口要么是山地(t *testing.T) {
	res := generate(t, 128, 11)
	border, _ := borderCells(res.Provinces)
	for idx, b := range border {
		if !b {
			continue
		}
		tile := res.Tiles.Cells[idx]
		if tile != entity.TileMountain && !entity.IsGate(tile) {
			t.Fatalf("期望边界格为山地或关口, idx=%d tile=%d", idx, tile)
		}
	}
}

func TestGenerate_建筑不重叠且编码合法(t *testing.T) {
	res := generate(t, 200, 3)
	seen := make(map[int]bool)
	codes := map[entity.Tile]int{}
	for _, s := range res.Structures {
		codes[s.Code]++
		for dy := 0; dy < s.H; dy++ {
			for dx := 0; dx < s.W; dx++ {
				idx := (s.Anchor.Y+dy)*res.Size + s.Anchor.X + dx
				if seen[idx] {
					t.Fatalf("期望建筑不重叠, idx=%d", idx)
				}
				seen[idx] = true
				if res.Tiles.Cells[idx] != s.Code {
					t.Fatalf("期望占地格为建筑编码 %d, got=%d", s.Code, res.Tiles.Cells[idx])
				}
				if res.Provinces.Cells[idx] != s.Province {
					t.Fatalf("期望建筑整体落在同一省份")
				}
			}
		}
	}
	if codes[entity.TileStronghold] == 0 {
		t.Fatalf("期望放下外/中层据点, got=%v", codes)
	}
	resources := codes[entity.TileFood] + codes[entity.TileWood] + codes[entity.TileStone] + codes[entity.TileGold]
	if resources == 0 {
		t.Fatalf("期望放下资源点, got=%v", codes)
	}
}

func TestGenerate_尺寸越界报错(t *testing.T) {
	if _, err := Generate(Config{Size: 10, Seed: 1}); !errors.Is(err, ErrInvalidSize) {
		t.Fatalf("期望 ErrInvalidSize, got=%v", err)
	}
}

func TestNoiseField_确定且有界(t *testing.T) {
	a, b := NewNoiseField(9), NewNoiseField(9)
	for i := 0; i < 50; i++ {
		x, y := float64(i)*0.37, float64(i)*1.13
		if a.Value(x, y) != b.Value(x, y) {
			t.Fatalf("期望同种子噪声一致")
		}
		if v := a.Octaves(x, y, 4, 0.05, 0.5); v < -1 || v > 1 {
			t.Fatalf("期望多层噪声在 [-1,1], got=%v", v)
		}
	}
}

func contains(ids []entity.ProvinceID, id entity.ProvinceID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
