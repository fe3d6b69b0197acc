package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	nethttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"Dominion/internal/shared/gameconfig/balance"
	sharedb "Dominion/internal/shared/infrastructure/db"
	sharedmongo "Dominion/internal/shared/infrastructure/mongo"
	sharedredis "Dominion/internal/shared/infrastructure/redis"
	"Dominion/internal/shared/logs"
	"Dominion/internal/shared/security"
	"Dominion/internal/shared/serverconfig"
	transporthttp "Dominion/internal/shared/transport/http"
	"Dominion/internal/shared/transport/http/middleware"
	"Dominion/internal/shared/transport/ws"
	worldactor "Dominion/internal/world/actor"
	"Dominion/internal/world/app/port"
	"Dominion/internal/world/dc"
	"Dominion/internal/world/infra/events"
	"Dominion/internal/world/infra/persistence/memory"
	worldmongo "Dominion/internal/world/infra/persistence/mongodb"
	worldmysql "Dominion/internal/world/infra/persistence/mysql"
	"Dominion/internal/world/interfaces"
	httphandler "Dominion/internal/world/interfaces/handler/http"
	"Dominion/internal/world/service"

	"go.uber.org/zap"
)

func main() {
	confPath := flag.String("conf", "", "conf.yml 路径，为空时按默认位置查找")
	flag.Parse()

	src, err := serverconfig.Open(*confPath)
	if err != nil {
		panic(err)
	}
	cfg, err := src.Current()
	if err != nil {
		panic(err)
	}
	logs.Init("world", cfg.Log)
	defer logs.Sync()
	logs.Info("conf loaded",
		zap.String("storage", cfg.Logic.Storage),
		zap.String("reports", cfg.Logic.Reports),
		zap.Int("port", cfg.WorldServer.Port),
	)

	bal, err := balance.Load(cfg.Logic.BalanceFile)
	if err != nil {
		logs.Fatal("load balance failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore := openStore(ctx, cfg)
	defer closeStore()
	reports := openReports(ctx, cfg)

	hub := ws.NewHub(logs.Kit())
	publisher, closeRedis := openPublisher(ctx, cfg, hub)
	defer closeRedis()

	journal := dc.NewReportDC(reports, cfg.Logic.ReportFlush, logs.Kit())

	svc := service.NewWorldService(service.Deps{
		Store:     store,
		Publisher: publisher,
		Journal:   journal,
		Reports:   reports,
		Balance:   bal,
		Options: service.Options{
			MaxKingdoms:  cfg.Logic.MaxKingdoms,
			SpawnSpacing: cfg.Logic.SpawnSpacing,
			SpawnTries:   cfg.Logic.SpawnTries,
			TickInterval: cfg.Logic.TickInterval,
			DayLength:    cfg.Logic.DayLength,
			SeasonLength: cfg.Logic.SeasonLength,
		},
		Logger: logs.Kit(),
	})
	rt := worldactor.NewRuntime(svc, cfg.Logic.TickInterval, 0, logs.Kit())

	var verifier *security.Verifier
	if cfg.JWTSecret != "" {
		if verifier, err = security.NewVerifier(cfg.JWTSecret); err != nil {
			logs.Fatal("jwt verifier", zap.Error(err))
		}
	} else {
		logs.Warn("jwt_secret 未配置，写接口使用 X-Kingdom-Id 和 X-Role 头识别身份，仅用于本地调试")
	}

	addr := fmt.Sprintf("%s:%d", cfg.WorldServer.Host, cfg.WorldServer.Port)
	limiter := middleware.NewRateLimiter(cfg.WorldServer.RatePerSecond, cfg.WorldServer.RateBurst)
	// 限流参数和日志级别支持热更新，其余配置需要重启
	src.OnChange(func(next serverconfig.Config) {
		limiter.SetLimit(next.WorldServer.RatePerSecond, next.WorldServer.RateBurst)
		if !logs.SetLevel(next.Log.Level) {
			logs.Warn("unknown log level, keep current", zap.String("level", next.Log.Level))
		}
		logs.Info("conf reloaded",
			zap.Float64("rate_per_second", next.WorldServer.RatePerSecond),
			zap.Int("rate_burst", next.WorldServer.RateBurst),
			zap.String("log_level", next.Log.Level),
		)
	})

	server := transporthttp.NewHttpServer(addr, logs.Kit())
	server.Register(interfaces.New(rt, httphandler.Options{
		Verifier: verifier,
		Limiter:  limiter,
		Hub:      hub,
		Logger:   logs.Kit(),
	}))

	go func() {
		logs.Info("world http server started", zap.String("addr", addr))
		if err := server.Start(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			logs.Error("http server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logs.Info("收到退出信号，准备优雅退出")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logs.Warn("http shutdown", zap.Error(err))
	}
	rt.Shutdown()
	if err := journal.Close(shutdownCtx); err != nil {
		logs.Error("report flush on shutdown", zap.Error(err), zap.Int("pending", journal.Pending()))
	}
}

func openStore(ctx context.Context, cfg serverconfig.Config) (port.WorldStore, func()) {
	if cfg.Logic.Storage != "mongo" {
		return memory.NewWorldStore(), func() {}
	}
	client, err := sharedmongo.Open(ctx, cfg.MongoDB, logs.Logger())
	if err != nil {
		logs.Fatal("open mongodb failed", zap.Error(err))
	}
	return worldmongo.NewWorldStore(client.Database(cfg.MongoDB.Database)), func() {
		_ = client.Disconnect(context.Background())
	}
}

func openReports(ctx context.Context, cfg serverconfig.Config) port.ReportRepository {
	if cfg.Logic.Reports != "mysql" {
		return memory.NewReportRepository()
	}
	gdb, err := sharedb.Open(cfg.MySQL)
	if err != nil {
		logs.Fatal("open mysql failed", zap.Error(err))
	}
	repo := worldmysql.NewReportRepo(gdb)
	if err := repo.Migrate(ctx); err != nil {
		logs.Fatal("migrate battle reports failed", zap.Error(err))
	}
	return repo
}

// openPublisher 配了 redis 时走 redis 扇出（多实例共享），否则直接推本机 hub。
func openPublisher(ctx context.Context, cfg serverconfig.Config, hub *ws.Hub) (port.EventPublisher, func()) {
	if cfg.Redis.URL == "" {
		return events.NewHubPublisher(hub), func() {}
	}
	client, err := sharedredis.Open(ctx, cfg.Redis.URL, logs.Logger())
	if err != nil {
		logs.Fatal("open redis failed", zap.Error(err))
	}
	relay := events.NewRelay(client.Redis(), hub, logs.Kit())
	go relay.Run(ctx)
	return events.NewRedisPublisher(client.Redis(), logs.Kit()), func() {
		_ = client.Close()
	}
}
