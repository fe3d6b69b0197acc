package logs

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"Dominion/internal/shared/serverconfig"
)

func TestSetLevel_热更新级别(t *testing.T) {
	l := Init("test", serverconfig.LogConfig{Level: "info"})
	if l.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("期望 info 级别下 debug 关闭")
	}
	if !SetLevel("debug") || !l.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("期望切到 debug 后已有 logger 立即生效")
	}
	if SetLevel("loud") {
		t.Fatalf("期望无法识别的级别返回 false")
	}
	if !l.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("期望无法识别时保持原级别")
	}
}
