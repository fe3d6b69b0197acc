package serverconfig

import (
	"fmt"
	"time"

	"Dominion/internal/shared/config"

	"github.com/caarlos0/env/v11"
)

// Load 读取 conf.yml，再用环境变量覆盖密钥与连接串，最后补默认值。
func Load(path string) (Config, error) {
	src, err := Open(path)
	if err != nil {
		return Config{}, err
	}
	return src.Current()
}

// Source 持有文件加载器，热更新时按与 Load 相同的规则得到完整配置。
type Source struct {
	l *config.Loader[Config]
}

func Open(path string) (*Source, error) {
	l, err := config.Load[Config](path)
	if err != nil {
		return nil, err
	}
	return &Source{l: l}, nil
}

func (s *Source) Current() (Config, error) {
	return finish(s.l.Snapshot())
}

// OnChange 注册热更新回调；环境变量解析失败的那次变更会被丢弃。
func (s *Source) OnChange(fn func(Config)) {
	s.l.OnChange(func(raw Config) {
		cfg, err := finish(raw)
		if err != nil {
			return
		}
		fn(cfg)
	})
}

// Reload 立即重读文件，见 config.Loader.Reload。
func (s *Source) Reload() error {
	return s.l.Reload()
}

func finish(cfg Config) (Config, error) {
	if err := ApplyEnv(&cfg); err != nil {
		return Config{}, err
	}
	cfg.fillDefaults()
	return cfg, nil
}

// ApplyEnv 让 MONGO_URI/REDIS_URL/MYSQL_PASSWORD/JWT_SECRET 等环境变量覆盖文件配置。
func ApplyEnv(cfg *Config) error {
	var secret struct {
		JWTSecret string `env:"JWT_SECRET"`
	}
	parts := []any{&cfg.MongoDB, &cfg.Redis, &cfg.MySQL, &cfg.Log, &cfg.Logic, &secret}
	for _, p := range parts {
		if err := env.Parse(p); err != nil {
			return fmt.Errorf("parse env: %w", err)
		}
	}
	if secret.JWTSecret != "" {
		cfg.JWTSecret = secret.JWTSecret
	}
	return nil
}

func (c *Config) fillDefaults() {
	if c.WorldServer.Port == 0 {
		c.WorldServer.Port = 8090
	}
	if c.MongoDB.Database == "" {
		c.MongoDB.Database = "dominion"
	}
	if c.MongoDB.Timeout <= 0 {
		c.MongoDB.Timeout = 5 * time.Second
	}
	l := &c.Logic
	if l.Storage == "" {
		l.Storage = "memory"
	}
	if l.Reports == "" {
		l.Reports = "memory"
	}
	if l.TickInterval <= 0 {
		l.TickInterval = time.Second
	}
	if l.DayLength <= 0 {
		l.DayLength = 24 * time.Hour
	}
	if l.SeasonLength <= 0 {
		l.SeasonLength = 30 * 24 * time.Hour
	}
	if l.ReportFlush <= 0 {
		l.ReportFlush = 2 * time.Second
	}
	if l.MaxKingdoms <= 0 {
		l.MaxKingdoms = 100
	}
	if l.SpawnSpacing <= 0 {
		l.SpawnSpacing = 12
	}
	if l.SpawnTries <= 0 {
		l.SpawnTries = 200
	}
}
