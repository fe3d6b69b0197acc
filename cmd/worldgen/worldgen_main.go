package main

import (
	"flag"
	"fmt"
	"os"

	"Dominion/internal/shared/gameconfig/balance"
	"Dominion/internal/shared/logs"
	"Dominion/internal/shared/serverconfig"
	"Dominion/internal/world/entity"
	"Dominion/internal/worldgen"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type layerStats struct {
	Provinces int `yaml:"provinces"`
	Cells     int `yaml:"cells"`
	Gates     int `yaml:"gates"`
	UnlockDay int `yaml:"unlock_day"`
}

type stats struct {
	Size       int                   `yaml:"size"`
	Seed       int64                 `yaml:"seed"`
	Provinces  int                   `yaml:"provinces"`
	Layers     map[string]layerStats `yaml:"layers"`
	Structures map[string]int        `yaml:"structures"`
	Skipped    int                   `yaml:"skipped"`
	Tiles      map[string]int        `yaml:"tiles"`
}

// worldgen 离线生成一张地图并打印省份、建筑与地形统计，用于调参。
func main() {
	size := flag.Int("size", 512, "地图边长")
	seed := flag.Int64("seed", 1, "随机种子")
	balancePath := flag.String("balance", "", "balance.yml 路径，取各层解锁日")
	verbose := flag.Bool("v", false, "输出生成过程日志")
	flag.Parse()

	level := "warn"
	if *verbose {
		level = "debug"
	}
	logs.Init("worldgen", serverconfig.LogConfig{Level: level, Dev: true})
	defer logs.Sync()

	bal, err := balance.Load(*balancePath)
	if err != nil {
		logs.Fatal("load balance failed", zap.Error(err))
	}
	cfg := worldgen.DefaultConfig(*size, *seed)
	cfg.UnlockDays = bal.Unlock.Days()
	cfg.Logger = logs.Kit()

	res, err := worldgen.Generate(cfg)
	if err != nil {
		logs.Fatal("generate failed", zap.Error(err))
	}

	out, err := yaml.Marshal(collect(res))
	if err != nil {
		logs.Fatal("marshal stats failed", zap.Error(err))
	}
	fmt.Fprint(os.Stdout, string(out))
}

func collect(res *worldgen.Result) stats {
	s := stats{
		Size:       res.Size,
		Seed:       res.Seed,
		Provinces:  len(res.ProvinceList),
		Layers:     make(map[string]layerStats),
		Structures: make(map[string]int),
		Skipped:    res.Skipped,
		Tiles:      make(map[string]int),
	}
	for _, p := range res.ProvinceList {
		ls := s.Layers[p.Layer.String()]
		ls.Provinces++
		ls.Cells += p.CellCount
		ls.Gates += len(p.Gates)
		ls.UnlockDay = p.UnlockDay
		s.Layers[p.Layer.String()] = ls
	}
	for _, st := range res.Structures {
		s.Structures[tileName(st.Code)]++
	}
	for y := 0; y < res.Size; y++ {
		for x := 0; x < res.Size; x++ {
			s.Tiles[tileName(res.Tiles.At(x, y))]++
		}
	}
	return s
}

var tileNames = map[entity.Tile]string{
	entity.TileVoid:            "void",
	entity.TilePlain1:          "plain_outer",
	entity.TilePlain2:          "plain_mid",
	entity.TilePlain3:          "plain_inner",
	entity.TileMountain:        "mountain",
	entity.TileGateSame:        "gate_same",
	entity.TileGateMid:         "gate_mid",
	entity.TileGateInner:       "gate_inner",
	entity.TileFood:            "food",
	entity.TileWood:            "wood",
	entity.TileStone:           "stone",
	entity.TileGold:            "gold",
	entity.TileStronghold:      "stronghold",
	entity.TileStrongholdInner: "stronghold_inner",
	entity.TileCenterLandmark:  "center_landmark",
	entity.TileTowerEast:       "tower_east",
	entity.TileTowerWest:       "tower_west",
}

func tileName(t entity.Tile) string {
	if n, ok := tileNames[t]; ok {
		return n
	}
	if t >= entity.TileLandmarkFirst && t <= entity.TileLandmarkLast {
		return fmt.Sprintf("landmark_%d", t-entity.TileLandmarkFirst+1)
	}
	return fmt.Sprintf("tile_%d", t)
}
