package balance

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Balance 是世界玩法的数值表，由 configs/balance.yml 提供，缺省时用 Default()。
// 小数比例一律用千分比/十分比存成整数，保证结算可复现。
type Balance struct {
	Units      Units      `yaml:"units"`
	Claim      Claim      `yaml:"claim"`
	Production Production `yaml:"production"`
	Unlock     Unlock     `yaml:"unlock"`
	Spawn      Spawn      `yaml:"spawn"`

	// MaxConflictRetries 是并发写冲突后重新读取校验的次数上限。
	MaxConflictRetries int `yaml:"max_conflict_retries"`
}

type Cost struct {
	Food  int64 `yaml:"food"`
	Wood  int64 `yaml:"wood"`
	Stone int64 `yaml:"stone"`
	Gold  int64 `yaml:"gold"`
}

type Unit struct {
	// WeightTenths 是单兵战力 ×10，例如弓兵 1.5 写作 15。
	WeightTenths int64 `yaml:"weight_tenths"`
	Cost         Cost  `yaml:"cost"`
	TrainSeconds int64 `yaml:"train_seconds"`
}

type Units struct {
	Infantry Unit `yaml:"infantry"`
	Archer   Unit `yaml:"archer"`
	Cavalry  Unit `yaml:"cavalry"`
	Siege    Unit `yaml:"siege"`
}

// Claim 是占领/攻城的门槛与战损参数。
// 门槛必须按 plain < resource < stronghold < gate < landmark < center 严格递增。
type Claim struct {
	Plain      int64 `yaml:"plain"`
	Resource   int64 `yaml:"resource"`
	Stronghold int64 `yaml:"stronghold"`
	Gate       int64 `yaml:"gate"`
	Landmark   int64 `yaml:"landmark"`
	Center     int64 `yaml:"center"`

	DefenderMarginPermille int64 `yaml:"defender_margin_permille"`
	DefenderOverhead       int64 `yaml:"defender_overhead"`
	NeutralLossPermille    int64 `yaml:"neutral_loss_permille"`
	KvKLossPermille        int64 `yaml:"kvk_loss_permille"`
	DefenderLossPermille   int64 `yaml:"defender_loss_permille"`

	DistancePenalty float64 `yaml:"distance_penalty"`
}

type Production struct {
	PlainYield    int64 `yaml:"plain_yield"`
	ResourceBonus int64 `yaml:"resource_bonus"`
}

// Unlock 是各层省份的解锁日。
type Unlock struct {
	Outer  int `yaml:"outer"`
	Mid    int `yaml:"mid"`
	Inner  int `yaml:"inner"`
	Center int `yaml:"center"`
}

// Days 按 outer/mid/inner/center 顺序返回。
func (u Unlock) Days() [4]int {
	return [4]int{u.Outer, u.Mid, u.Inner, u.Center}
}

// Spawn 是新王国加入时的初始兵力与资源。
type Spawn struct {
	Infantry  int64 `yaml:"infantry"`
	Resources Cost  `yaml:"resources"`
}

func Default() Balance {
	return Balance{
		Units: Units{
			Infantry: Unit{WeightTenths: 10, Cost: Cost{Food: 10, Wood: 10}, TrainSeconds: 2},
			Archer:   Unit{WeightTenths: 15, Cost: Cost{Food: 10, Wood: 20}, TrainSeconds: 3},
			Cavalry:  Unit{WeightTenths: 20, Cost: Cost{Food: 20, Wood: 10, Gold: 5}, TrainSeconds: 5},
			Siege:    Unit{WeightTenths: 25, Cost: Cost{Wood: 30, Stone: 20, Gold: 10}, TrainSeconds: 10},
		},
		Claim: Claim{
			Plain:                  250,
			Resource:               500,
			Stronghold:             800,
			Gate:                   1500,
			Landmark:               2000,
			Center:                 3000,
			DefenderMarginPermille: 1100,
			DefenderOverhead:       500,
			NeutralLossPermille:    200,
			KvKLossPermille:        300,
			DefenderLossPermille:   200,
			DistancePenalty:        0.5,
		},
		Production: Production{PlainYield: 1, ResourceBonus: 10},
		Unlock:     Unlock{Outer: 0, Mid: 3, Inner: 7, Center: 14},
		Spawn: Spawn{
			Infantry:  1000,
			Resources: Cost{Food: 500, Wood: 500, Stone: 200, Gold: 100},
		},
		MaxConflictRetries: 4,
	}
}

// Load 在 Default() 之上覆盖 yaml 中出现的字段；path 为空直接返回默认表。
func Load(path string) (Balance, error) {
	b := Default()
	if path == "" {
		return b, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return b, err
	}
	if err := yaml.Unmarshal(raw, &b); err != nil {
		return b, fmt.Errorf("balance.yml: %w", err)
	}
	if err := b.Validate(); err != nil {
		return b, fmt.Errorf("balance.yml: %w", err)
	}
	return b, nil
}

func (b Balance) Validate() error {
	for name, u := range map[string]Unit{
		"infantry": b.Units.Infantry,
		"archer":   b.Units.Archer,
		"cavalry":  b.Units.Cavalry,
		"siege":    b.Units.Siege,
	} {
		if u.WeightTenths <= 0 || u.TrainSeconds <= 0 {
			return fmt.Errorf("unit %s: weight and train time must be positive", name)
		}
	}
	c := b.Claim
	if c.Plain <= 0 || c.Resource <= 0 || c.Gate <= 0 || c.Stronghold <= 0 || c.Landmark <= 0 || c.Center <= 0 {
		return errors.New("claim thresholds must be positive")
	}
	tiers := []struct {
		name  string
		value int64
	}{
		{"plain", c.Plain}, {"resource", c.Resource}, {"stronghold", c.Stronghold},
		{"gate", c.Gate}, {"landmark", c.Landmark}, {"center", c.Center},
	}
	for i := 1; i < len(tiers); i++ {
		if tiers[i].value <= tiers[i-1].value {
			return fmt.Errorf("claim %s (%d) must be larger than %s (%d)",
				tiers[i].name, tiers[i].value, tiers[i-1].name, tiers[i-1].value)
		}
	}
	if c.NeutralLossPermille < 0 || c.KvKLossPermille < 0 || c.DefenderLossPermille < 0 {
		return errors.New("loss ratios must not be negative")
	}
	if c.DistancePenalty < 0 {
		return errors.New("distance_penalty must not be negative")
	}
	if b.MaxConflictRetries < 1 {
		return errors.New("max_conflict_retries must be >= 1")
	}
	return nil
}
