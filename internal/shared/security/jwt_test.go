package security

import (
	"testing"
	"time"
)

func TestNewVerifier_缺少secret应失败(t *testing.T) {
	if _, err := NewVerifier(""); err == nil {
		t.Fatalf("期望 secret 为空时返回错误")
	}
}

func TestAwardParse_正常签发并解析(t *testing.T) {
	v, err := NewVerifier("test-secret-123")
	if err != nil {
		t.Fatalf("NewVerifier err=%v", err)
	}
	token, err := v.Award("k-42", "北境", time.Hour)
	if err != nil || token == "" {
		t.Fatalf("Award err=%v token=%q", err, token)
	}
	claims, err := v.Parse(token)
	if err != nil {
		t.Fatalf("Parse err=%v", err)
	}
	if claims.KingdomID != "k-42" || claims.Name != "北境" {
		t.Fatalf("期望 kid=k-42, got=%+v", claims)
	}
}

func TestParse_过期或换密钥失败(t *testing.T) {
	v, _ := NewVerifier("a")
	token, _ := v.Award("k-1", "", time.Minute)

	other, _ := NewVerifier("b")
	if _, err := other.Parse(token); err == nil {
		t.Fatalf("期望不同密钥校验失败")
	}
	v.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := v.Parse(token); err == nil {
		t.Fatalf("期望过期 token 校验失败")
	}
}

func TestAwardRole_管理员身份随token下发(t *testing.T) {
	v, _ := NewVerifier("test-secret-123")
	admin, _ := v.AwardRole("ops", "", RoleAdmin, time.Hour)
	player, _ := v.Award("k-1", "", time.Hour)

	claims, err := v.Parse(admin)
	if err != nil || !claims.IsAdmin() {
		t.Fatalf("期望管理员 token 解析出 admin, got=%+v err=%v", claims, err)
	}
	claims, err = v.Parse(player)
	if err != nil || claims.IsAdmin() {
		t.Fatalf("期望玩家 token 不是 admin, got=%+v err=%v", claims, err)
	}
}
