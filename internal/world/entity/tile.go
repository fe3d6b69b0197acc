package entity

// Tile 是格子的地形/建筑编码。
type Tile = uint8

const (
	TileVoid     Tile = 0
	TilePlain1   Tile = 1
	TilePlain2   Tile = 2
	TilePlain3   Tile = 3
	TileMountain Tile = 4

	TileGateSame  Tile = 5 // 同层边界关口
	TileGateMid   Tile = 6 // 外层↔中层
	TileGateInner Tile = 7 // 中层↔内层、内层↔中心

	TileFood  Tile = 10
	TileWood  Tile = 11
	TileStone Tile = 12
	TileGold  Tile = 13

	TileStronghold      Tile = 20
	TileStrongholdInner Tile = 21

	TileLandmarkFirst Tile = 30
	TileLandmarkLast  Tile = 35

	TileCenterLandmark Tile = 40
	TileTowerEast      Tile = 41
	TileTowerWest      Tile = 42
)

// TileClass 决定占领门槛。
type TileClass uint8

const (
	ClassImpassable TileClass = iota
	ClassPlain
	ClassResource
	ClassGate
	ClassStronghold
	ClassLandmark
	ClassCenter
)

func ClassOf(t Tile) TileClass {
	switch {
	case t == TileVoid || t == TileMountain:
		return ClassImpassable
	case t >= TilePlain1 && t <= TilePlain3:
		return ClassPlain
	case t >= TileGateSame && t <= TileGateInner:
		return ClassGate
	case IsResource(t):
		return ClassResource
	case t == TileStronghold || t == TileStrongholdInner:
		return ClassStronghold
	case t >= TileLandmarkFirst && t <= TileLandmarkLast:
		return ClassLandmark
	case t >= TileCenterLandmark && t <= TileTowerWest:
		return ClassCenter
	}
	return ClassImpassable
}

func IsPlain(t Tile) bool {
	return t >= TilePlain1 && t <= TilePlain3
}

func IsResource(t Tile) bool {
	return t >= TileFood && t <= TileGold
}

func IsGate(t Tile) bool {
	return t >= TileGateSame && t <= TileGateInner
}

func IsPassable(t Tile) bool {
	return ClassOf(t) != ClassImpassable
}

// PlainTileFor 是层级对应的平原编码：外层 1，中层 2，内层与中心 3。
func PlainTileFor(l Layer) Tile {
	switch l {
	case LayerOuter:
		return TilePlain1
	case LayerMid:
		return TilePlain2
	default:
		return TilePlain3
	}
}
