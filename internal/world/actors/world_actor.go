package actors

import (
	"context"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"

	"Dominion/internal/shared/actor/messages"
	"Dominion/internal/world/entity"
	"Dominion/internal/world/service"
	"Dominion/modules/kit/logx"
	"Dominion/modules/kit/tracex"
)

type State int

const (
	None State = iota
	Init
	Online
	Offline
	Stopping
)

const (
	openTimeout = 5 * time.Second
	// offlineIdle 之后没人访问的离线世界 actor 自行退出。
	offlineIdle = 5 * time.Minute
)

// WorldActor 串行处理同一个世界的命令，并按 tickEvery 执行维护 tick。
type WorldActor struct {
	state      State
	worldID    entity.WorldID
	svc        *service.WorldService
	session    *service.WorldSession
	dispatcher *Dispatcher
	tickEvery  time.Duration
	tickStop   chan struct{}
	openErr    error
	log        logx.Logger
}

type worldTick struct{}

func (worldTick) NotInfluenceReceiveTimeout() {}

func NewWorldActor(worldID entity.WorldID, svc *service.WorldService, tickEvery time.Duration, log logx.Logger) *WorldActor {
	if log == nil {
		log = logx.Nop()
	}
	return &WorldActor{
		state:      None,
		worldID:    worldID,
		svc:        svc,
		dispatcher: NewDispatcher(),
		tickEvery:  tickEvery,
		log:        log.With(zap.String("world_id", string(worldID))),
	}
}

func (p *WorldActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		p.state = Init
		p.init(ctx)
		return
	case *actor.Stopping:
		p.stopTickLoop()
		p.state = Stopping
		return
	case *actor.Stopped:
		p.stopTickLoop()
		p.state = Offline
		return
	case *actor.Restarting:
		p.stopTickLoop()
		p.state = Init
		return
	case *actor.ReceiveTimeout:
		if p.state != Online {
			ctx.Stop(ctx.Self())
		}
		return
	case worldTick:
		if p.state != Online {
			return
		}
		p.tick()
		return
	case messages.WorldMessage:
		if msg == nil {
			return
		}
		if p.state != Online {
			// 离线时每次请求都重试打开，世界可能刚被创建
			p.init(ctx)
		}
		if p.state != Online {
			ctx.Respond(messages.Fail(p.openErr))
			return
		}
		p.dispatcher.Dispatch(ctx, p, msg)
	default:
		return
	}
}

func (p *WorldActor) init(ctx actor.Context) {
	openCtx, cancel := context.WithTimeout(context.Background(), openTimeout)
	defer cancel()
	s, err := p.svc.OpenWorld(openCtx, p.worldID)
	if err != nil {
		p.state = Offline
		p.openErr = err
		p.log.Warn("world open failed", zap.Error(err))
		ctx.SetReceiveTimeout(offlineIdle)
		return
	}
	p.session = s
	p.openErr = nil
	p.state = Online
	ctx.CancelReceiveTimeout()
	p.startTickLoop(ctx)
	p.log.Info("world online", zap.Int("size", s.Size()))
}

func (p *WorldActor) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), p.tickEvery+openTimeout)
	defer cancel()
	ctx = tracex.WithWorld(ctx, string(p.worldID))
	rep, err := p.session.Tick(ctx, p.svc.Now())
	if err != nil {
		logx.Report(ctx, p.log, "world.tick", err)
		return
	}
	if err := p.svc.FlushReports(ctx); err != nil {
		logx.Report(ctx, p.log, "world.flush_reports", err)
	}
	if rep.Unlocked > 0 || rep.Completed > 0 {
		p.log.Debug("world tick",
			zap.Int("day", rep.Day),
			zap.Int("unlocked", rep.Unlocked),
			zap.Int("completed", rep.Completed),
			zap.Int("produced", rep.Produced),
		)
	}
}

func (p *WorldActor) WorldID() entity.WorldID {
	return p.worldID
}

func (p *WorldActor) Session() *service.WorldSession {
	return p.session
}

func (p *WorldActor) startTickLoop(ctx actor.Context) {
	if p.tickStop != nil {
		return
	}
	interval := p.tickEvery
	if interval <= 0 {
		return
	}
	p.tickStop = make(chan struct{})
	self := ctx.Self()
	root := ctx.ActorSystem().Root

	go func(stop <-chan struct{}, every time.Duration) {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				root.Send(self, worldTick{})
			case <-stop:
				return
			}
		}
	}(p.tickStop, interval)
}

func (p *WorldActor) stopTickLoop() {
	if p.tickStop == nil {
		return
	}
	close(p.tickStop)
	p.tickStop = nil
}
