package errx

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Is_只按code比较语义(t *testing.T) {
	e1 := NewBiz("NOT_CONNECTED", "x").WithData("x", 1).WithCause(errors.New("cause1"))
	e2 := NewBiz("NOT_CONNECTED", "y").WithData("y", 2)
	if !errors.Is(e1, e2) {
		t.Fatalf("期望 errors.Is(e1, e2)==true, e1=%v e2=%v", e1, e2)
	}
	if errors.Is(e1, NewBiz("ALREADY_OWNED", "")) {
		t.Fatalf("期望不同 code 不相等")
	}
}

func TestError_业务错误不捕获栈_但保留cause链(t *testing.T) {
	cause := errors.New("neighbor lost")
	err := NewBiz("NOT_CONNECTED", "").WithCause(cause)
	if got := err.Stack(); got != nil {
		t.Fatalf("期望业务错误不捕获栈，got=%v", got)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("期望 cause 链不丢，err=%v", err)
	}
}

func TestError_系统错误捕获一次栈(t *testing.T) {
	sys := ErrUnavailable.WithCause(errors.New("mongo down"))
	if len(sys.Stack()) == 0 {
		t.Fatalf("期望系统错误捕获栈")
	}
	outer := ErrConflict.WithCause(sys)
	if outer.Stack() != nil {
		t.Fatalf("期望 cause 链里已有栈时不重复捕获, got=%v", outer.Stack())
	}
}

func TestError_WithData不污染哨兵(t *testing.T) {
	m := map[string]any{"world_id": "w1"}
	err := ErrConflict.WithDataMap(m)
	m["world_id"] = "mutated"
	if got := err.Data()["world_id"]; got != "w1" {
		t.Fatalf("期望构造时复制 data, got=%v", got)
	}
	if ErrConflict.Data() != nil {
		t.Fatalf("期望哨兵错误 data 仍为空")
	}
}

func TestCodeOf_与IsBiz_沿错误链(t *testing.T) {
	wrapped := fmt.Errorf("claim: %w", NewBiz("INSUFFICIENT_POWER", ""))
	if CodeOf(wrapped) != "INSUFFICIENT_POWER" {
		t.Fatalf("期望取到 INSUFFICIENT_POWER, got=%q", CodeOf(wrapped))
	}
	if !IsBiz(wrapped) {
		t.Fatalf("期望业务错误")
	}
	if IsBiz(ErrConflict) {
		t.Fatalf("期望冲突错误不是业务错误")
	}
	if CodeOf(errors.New("plain")) != "" {
		t.Fatalf("期望普通错误没有 code")
	}
}
