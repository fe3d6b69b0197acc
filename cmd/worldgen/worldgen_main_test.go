package main

import (
	"testing"

	"Dominion/internal/worldgen"
)

func TestCollect_格子计数与省份面积一致(t *testing.T) {
	res, err := worldgen.Generate(worldgen.DefaultConfig(128, 42))
	if err != nil {
		t.Fatalf("期望生成成功, got=%v", err)
	}
	s := collect(res)

	total := 0
	for _, n := range s.Tiles {
		total += n
	}
	if total != 128*128 {
		t.Fatalf("期望统计覆盖全部格子, got=%d", total)
	}
	cells, provinces := 0, 0
	for _, ls := range s.Layers {
		cells += ls.Cells
		provinces += ls.Provinces
	}
	if provinces != len(res.ProvinceList) || s.Provinces != provinces {
		t.Fatalf("期望按层汇总省份数一致, got=%d want=%d", provinces, len(res.ProvinceList))
	}
	if cells <= 0 || cells > 128*128 {
		t.Fatalf("期望省份面积落在地图内, got=%d", cells)
	}
}

func TestTileName_地标按序号命名(t *testing.T) {
	if got := tileName(31); got != "landmark_2" {
		t.Fatalf("期望 landmark_2, got=%s", got)
	}
	if got := tileName(99); got != "tile_99" {
		t.Fatalf("期望未知编码带数字, got=%s", got)
	}
}
