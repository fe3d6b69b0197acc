package entity

// Layer 是省份所在的同心层，数值即层序（外→中心）。
type Layer uint8

const (
	LayerOuter Layer = iota
	LayerMid
	LayerInner
	LayerCenter
)

func (l Layer) String() string {
	switch l {
	case LayerOuter:
		return "outer"
	case LayerMid:
		return "mid"
	case LayerInner:
		return "inner"
	case LayerCenter:
		return "center"
	}
	return "unknown"
}

// LayerDistance 是两层在 outer→mid→inner→center 序列上的距离。
func LayerDistance(a, b Layer) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

// Gate 是两个相邻省份之间开凿的 3×3 通道，两侧省份各记一份，格子相同。
type Gate struct {
	To    ProvinceID `json:"to"`
	Tier  int        `json:"tier"`
	Open  bool       `json:"open"`
	Cells []Point    `json:"cells"`
}

// GateTier 按较高一侧的层级取关口等级：同层 1，外↔中 2，其余 3。
func GateTier(a, b Layer) int {
	if a == b {
		return 1
	}
	if max(a, b) == LayerMid {
		return 2
	}
	return 3
}

// GateTile 是关口等级对应的地形编码。
func GateTile(tier int) Tile {
	switch tier {
	case 1:
		return TileGateSame
	case 2:
		return TileGateMid
	default:
		return TileGateInner
	}
}

type Province struct {
	ID        ProvinceID   `json:"id"`
	Layer     Layer        `json:"layer"`
	Center    Point        `json:"center"`
	UnlockDay int          `json:"unlock_day"`
	Unlocked  bool         `json:"unlocked"`
	Neighbors []ProvinceID `json:"neighbors"`
	Gates     []Gate       `json:"gates"`
	CellCount int          `json:"cell_count"`
}

// GateOpen 判定关口是否开启：同层关口恒开，跨层关口要求两侧都已解锁。
func GateOpen(tier int, fromUnlocked, toUnlocked bool) bool {
	return tier == 1 || (fromUnlocked && toUnlocked)
}

// GateAt 返回覆盖该格子的关口。
func (p *Province) GateAt(pt Point) (*Gate, bool) {
	for i := range p.Gates {
		for _, c := range p.Gates[i].Cells {
			if c == pt {
				return &p.Gates[i], true
			}
		}
	}
	return nil, false
}

func (p *Province) Clone() *Province {
	out := *p
	out.Neighbors = append([]ProvinceID(nil), p.Neighbors...)
	out.Gates = make([]Gate, len(p.Gates))
	for i, g := range p.Gates {
		g.Cells = append([]Point(nil), g.Cells...)
		out.Gates[i] = g
	}
	return &out
}
