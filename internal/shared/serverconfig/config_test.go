package serverconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_环境变量覆盖且补默认值(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.yml")
	body := "mongodb:\n  uri: mongodb://file:27017\nlogic:\n  storage: mongo\n  day_length: 10m\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("写配置失败: %v", err)
	}
	t.Setenv("MONGO_URI", "mongodb://env:27017")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("期望加载成功, got=%v", err)
	}
	if cfg.MongoDB.URI != "mongodb://env:27017" {
		t.Fatalf("期望环境变量覆盖 uri, got=%q", cfg.MongoDB.URI)
	}
	if cfg.JWTSecret != "s3cret" {
		t.Fatalf("期望 jwt secret 来自环境变量, got=%q", cfg.JWTSecret)
	}
	if cfg.Logic.DayLength != 10*time.Minute || cfg.Logic.Storage != "mongo" {
		t.Fatalf("期望文件配置生效, got=%+v", cfg.Logic)
	}
	if cfg.Logic.MaxKingdoms != 100 || cfg.WorldServer.Port != 8090 {
		t.Fatalf("期望补默认值, got=%+v", cfg)
	}
}

func TestSource_热更新套用环境变量与默认值(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.yml")
	if err := os.WriteFile(path, []byte("worldserver:\n  rate_per_second: 5\n  rate_burst: 10\n"), 0o644); err != nil {
		t.Fatalf("写配置失败: %v", err)
	}
	t.Setenv("JWT_SECRET", "s3cret")
	src, err := Open(path)
	if err != nil {
		t.Fatalf("期望打开成功, got=%v", err)
	}
	got := make(chan Config, 4)
	src.OnChange(func(c Config) { got <- c })

	if err := os.WriteFile(path, []byte("worldserver:\n  rate_per_second: 1\n  rate_burst: 2\nlog:\n  level: debug\n"), 0o644); err != nil {
		t.Fatalf("改配置失败: %v", err)
	}
	if err := src.Reload(); err != nil {
		t.Fatalf("期望重载成功, got=%v", err)
	}
	var last Config
	for len(got) > 0 {
		last = <-got
	}
	if last.WorldServer.RatePerSecond != 1 || last.WorldServer.RateBurst != 2 || last.Log.Level != "debug" {
		t.Fatalf("期望拿到新的限流与日志级别, got=%+v %+v", last.WorldServer, last.Log)
	}
	if last.JWTSecret != "s3cret" || last.WorldServer.Port != 8090 {
		t.Fatalf("期望热更新同样套用环境变量与默认值, got=%+v", last)
	}
}
