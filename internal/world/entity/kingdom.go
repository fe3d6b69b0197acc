package entity

import (
	"math"
	"time"

	"Dominion/internal/shared/gameconfig/balance"
)

type UnitClass string

const (
	Infantry UnitClass = "infantry"
	Archer   UnitClass = "archer"
	Cavalry  UnitClass = "cavalry"
	Siege    UnitClass = "siege"
)

var UnitClasses = [...]UnitClass{Infantry, Archer, Cavalry, Siege}

func (u UnitClass) Valid() bool {
	switch u {
	case Infantry, Archer, Cavalry, Siege:
		return true
	}
	return false
}

// UnitSpec 取兵种的数值配置。
func UnitSpec(units balance.Units, u UnitClass) (balance.Unit, bool) {
	switch u {
	case Infantry:
		return units.Infantry, true
	case Archer:
		return units.Archer, true
	case Cavalry:
		return units.Cavalry, true
	case Siege:
		return units.Siege, true
	}
	return balance.Unit{}, false
}

type Troops struct {
	Infantry int64 `json:"infantry" bson:"infantry"`
	Archer   int64 `json:"archer" bson:"archer"`
	Cavalry  int64 `json:"cavalry" bson:"cavalry"`
	Siege    int64 `json:"siege" bson:"siege"`
}

func (t Troops) Get(u UnitClass) int64 {
	switch u {
	case Infantry:
		return t.Infantry
	case Archer:
		return t.Archer
	case Cavalry:
		return t.Cavalry
	case Siege:
		return t.Siege
	}
	return 0
}

func (t *Troops) Add(u UnitClass, n int64) {
	switch u {
	case Infantry:
		t.Infantry += n
	case Archer:
		t.Archer += n
	case Cavalry:
		t.Cavalry += n
	case Siege:
		t.Siege += n
	}
}

// Power = floor(Σ count × weight)，权重按十分位存储。
func Power(t Troops, units balance.Units) int64 {
	sum := t.Infantry*units.Infantry.WeightTenths +
		t.Archer*units.Archer.WeightTenths +
		t.Cavalry*units.Cavalry.WeightTenths +
		t.Siege*units.Siege.WeightTenths
	if sum <= 0 {
		return 0
	}
	return sum / 10
}

// Attrition 按 loss/power 的同一比例削减各兵种（每类向下取整损失），编制比例保持不变。
// loss 不小于 power 时全军覆没。
func Attrition(t Troops, power, loss int64) Troops {
	if loss <= 0 || power <= 0 {
		return t
	}
	if loss >= power {
		return Troops{}
	}
	cut := func(n int64) int64 {
		if n <= 0 {
			return 0
		}
		return n - n*loss/power
	}
	return Troops{
		Infantry: cut(t.Infantry),
		Archer:   cut(t.Archer),
		Cavalry:  cut(t.Cavalry),
		Siege:    cut(t.Siege),
	}
}

// EffectivePower = max(0, power − floor(欧氏距离(castle, target) × penalty))。
func EffectivePower(power int64, castle, target Point, penalty float64) int64 {
	dx := float64(castle.X - target.X)
	dy := float64(castle.Y - target.Y)
	eff := power - int64(math.Floor(math.Sqrt(dx*dx+dy*dy)*penalty))
	if eff < 0 {
		return 0
	}
	return eff
}

type Resources struct {
	Food  int64 `json:"food" bson:"food"`
	Wood  int64 `json:"wood" bson:"wood"`
	Stone int64 `json:"stone" bson:"stone"`
	Gold  int64 `json:"gold" bson:"gold"`
}

func ResourcesOf(c balance.Cost) Resources {
	return Resources{Food: c.Food, Wood: c.Wood, Stone: c.Stone, Gold: c.Gold}
}

func (r Resources) Scale(n int64) Resources {
	return Resources{Food: r.Food * n, Wood: r.Wood * n, Stone: r.Stone * n, Gold: r.Gold * n}
}

func (r Resources) Plus(o Resources) Resources {
	return Resources{Food: r.Food + o.Food, Wood: r.Wood + o.Wood, Stone: r.Stone + o.Stone, Gold: r.Gold + o.Gold}
}

func (r Resources) Minus(o Resources) Resources {
	return Resources{Food: r.Food - o.Food, Wood: r.Wood - o.Wood, Stone: r.Stone - o.Stone, Gold: r.Gold - o.Gold}
}

// Covers 判断资源池是否每一项都够支付 cost。
func (r Resources) Covers(cost Resources) bool {
	return r.Food >= cost.Food && r.Wood >= cost.Wood && r.Stone >= cost.Stone && r.Gold >= cost.Gold
}

func (r Resources) IsZero() bool {
	return r == Resources{}
}

// TrainingOrder 是一条造兵单，同一王国内 start(i+1) ≥ end(i)。
type TrainingOrder struct {
	ID       string    `json:"id" bson:"id"`
	Unit     UnitClass `json:"unit" bson:"unit"`
	Quantity int64     `json:"quantity" bson:"quantity"`
	StartAt  time.Time `json:"start_at" bson:"start_at"`
	EndAt    time.Time `json:"end_at" bson:"end_at"`
}

type Kingdom struct {
	ID        KingdomID       `json:"id"`
	Name      string          `json:"name"`
	Castle    Point           `json:"castle"`
	Power     int64           `json:"power"`
	Resources Resources       `json:"resources"`
	Troops    Troops          `json:"troops"`
	Queue     []TrainingOrder `json:"queue"`
	// Tiles 是已占格子按地形编码的计数，占领时增量维护，用于产出结算。
	Tiles        Histogram `json:"tiles"`
	ProducedTick int64     `json:"produced_tick"`
	JoinedAt     time.Time `json:"joined_at"`
}

// QueueEnd 是队尾订单的结束时间，空队列返回零值。
func (k *Kingdom) QueueEnd() time.Time {
	if len(k.Queue) == 0 {
		return time.Time{}
	}
	return k.Queue[len(k.Queue)-1].EndAt
}

// DueOrders 返回队首起所有 EndAt ≤ now 的订单（FIFO，遇到未到期的即停）。
func (k *Kingdom) DueOrders(now time.Time) []TrainingOrder {
	n := 0
	for n < len(k.Queue) && !k.Queue[n].EndAt.After(now) {
		n++
	}
	return k.Queue[:n]
}

func (k *Kingdom) Clone() *Kingdom {
	out := *k
	out.Queue = append([]TrainingOrder(nil), k.Queue...)
	out.Tiles = k.Tiles.Clone()
	return &out
}
