package balance

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault_数值与约定一致(t *testing.T) {
	b := Default()
	if err := b.Validate(); err != nil {
		t.Fatalf("期望默认表合法, got=%v", err)
	}
	if b.Claim.Plain != 250 || b.Claim.Center != 3000 {
		t.Fatalf("期望 plain=250 center=3000, got=%+v", b.Claim)
	}
	if b.Units.Infantry.Cost.Food != 10 || b.Units.Infantry.Cost.Wood != 10 || b.Units.Infantry.Cost.Gold != 0 {
		t.Fatalf("期望步兵成本 food10 wood10, got=%+v", b.Units.Infantry.Cost)
	}
	if b.Unlock.Center != 14 || b.Unlock.Mid != 3 {
		t.Fatalf("期望解锁日 mid=3 center=14, got=%+v", b.Unlock)
	}
}

func TestLoad_只覆盖出现的字段(t *testing.T) {
	path := filepath.Join(t.TempDir(), "balance.yml")
	body := "claim:\n  plain: 300\nproduction:\n  resource_bonus: 25\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("写文件失败: %v", err)
	}
	b, err := Load(path)
	if err != nil {
		t.Fatalf("期望加载成功, got=%v", err)
	}
	if b.Claim.Plain != 300 || b.Production.ResourceBonus != 25 {
		t.Fatalf("期望覆盖生效, got=%+v %+v", b.Claim, b.Production)
	}
	if b.Claim.Gate != 1500 || b.Claim.Stronghold != 800 || b.Production.PlainYield != 1 {
		t.Fatalf("期望其余字段保留默认, got=%+v", b.Claim)
	}
}

func TestLoad_非法数值报错(t *testing.T) {
	path := filepath.Join(t.TempDir(), "balance.yml")
	if err := os.WriteFile(path, []byte("max_conflict_retries: 0\n"), 0o644); err != nil {
		t.Fatalf("写文件失败: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("期望 max_conflict_retries=0 被拒绝")
	}
}

func TestValidate_门槛必须严格递增(t *testing.T) {
	b := Default()
	c := b.Claim
	if !(c.Plain < c.Resource && c.Resource < c.Stronghold && c.Stronghold < c.Gate && c.Gate < c.Landmark && c.Landmark < c.Center) {
		t.Fatalf("期望默认门槛严格递增, got=%+v", c)
	}

	b.Claim.Gate = b.Claim.Stronghold
	if err := b.Validate(); err == nil {
		t.Fatalf("期望 gate 不高于 stronghold 时被拒绝")
	}

	path := filepath.Join(t.TempDir(), "balance.yml")
	if err := os.WriteFile(path, []byte("claim:\n  gate: 800\n  stronghold: 1500\n"), 0o644); err != nil {
		t.Fatalf("写文件失败: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("期望 gate=800 stronghold=1500 的配置被拒绝")
	}
}
