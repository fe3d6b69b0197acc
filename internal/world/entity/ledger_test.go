package entity

import (
	"math/rand"
	"testing"

	"Dominion/internal/shared/gameconfig/balance"
)

func TestProduction_直方图与逐格扫描一致(t *testing.T) {
	const n = 24
	rng := rand.New(rand.NewSource(7))
	tiles := NewGrid(n)
	codes := []Tile{TilePlain1, TilePlain2, TilePlain3, TileGateSame, TileFood, TileWood, TileStone, TileGold, TileStronghold, 31, TileCenterLandmark}
	for i := range tiles.Cells {
		tiles.Cells[i] = codes[rng.Intn(len(codes))]
	}
	owners := make(map[Point]KingdomID)
	for i := 0; i < 200; i++ {
		pt := Point{rng.Intn(n), rng.Intn(n)}
		if rng.Intn(3) == 0 {
			owners[pt] = "k-2"
		} else {
			owners[pt] = "k-1"
		}
	}
	p := balance.Default().Production
	for _, kid := range []KingdomID{"k-1", "k-2"} {
		hist := BuildHistogram(tiles, owners, kid)
		if got, want := Production(hist, p), ProductionFromGrid(tiles, owners, kid, p); got != want {
			t.Fatalf("kingdom=%s 期望 %+v, got=%+v", kid, want, got)
		}
	}
}

func TestProduction_资源点只产对应资源(t *testing.T) {
	p := balance.Production{PlainYield: 2, ResourceBonus: 10}
	got := Production(Histogram{TilePlain1: 3, TileGold: 1, TileStone: 2}, p)
	want := Resources{Food: 6, Wood: 6, Stone: 20, Gold: 10}
	if got != want {
		t.Fatalf("期望 %+v, got=%+v", want, got)
	}
}

func TestHistogram_Add归零删除(t *testing.T) {
	h := Histogram{TilePlain1: 1}
	h.Add(TilePlain1, -1)
	if _, ok := h[TilePlain1]; ok {
		t.Fatalf("期望计数归零后删除键")
	}
}
