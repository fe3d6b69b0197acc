package actors

import (
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"

	"Dominion/internal/shared/actor/messages"
	"Dominion/internal/world/entity"
	"Dominion/internal/world/service"
	"Dominion/modules/kit/logx"
)

// ManagerActor 按世界 id 懒创建 WorldActor 并转发请求；创建世界由它自己处理。
type ManagerActor struct {
	svc         *service.WorldService
	tickEvery   time.Duration
	log         logx.Logger
	worldActors map[entity.WorldID]*actor.PID
}

func NewManagerActor(svc *service.WorldService, tickEvery time.Duration, log logx.Logger) *ManagerActor {
	if log == nil {
		log = logx.Nop()
	}
	return &ManagerActor{
		svc:         svc,
		tickEvery:   tickEvery,
		log:         log,
		worldActors: make(map[entity.WorldID]*actor.PID),
	}
}

func (m *ManagerActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Terminated:
		for id, pid := range m.worldActors {
			if pid.Equal(msg.Who) {
				delete(m.worldActors, id)
				m.log.Info("world actor exited", zap.String("world_id", string(id)))
			}
		}
		return
	case *messages.HWCreateWorld:
		m.createWorld(ctx, msg)
		return
	case messages.WorldMessage:
		if msg == nil {
			ctx.Respond(messages.Fail(service.ErrInvalidParam))
			return
		}
		ctx.Forward(m.getOrSpawn(ctx, entity.WorldID(msg.WorldID())))
	}
}

// createWorld 在协程里生成地图，避免大地图阻塞路由。
func (m *ManagerActor) createWorld(ctx actor.Context, msg *messages.HWCreateWorld) {
	sender := ctx.Sender()
	root := ctx.ActorSystem().Root
	svc := m.svc
	go func() {
		w, err := svc.CreateWorld(msg.Context(), service.CreateWorldRequest{
			ID:   entity.WorldID(msg.WorldID()),
			Size: msg.Size,
			Seed: msg.Seed,
		})
		if sender == nil {
			return
		}
		if err != nil {
			root.Send(sender, messages.Fail(err))
			return
		}
		root.Send(sender, messages.Ok(w))
	}()
}

func (m *ManagerActor) getOrSpawn(ctx actor.Context, worldID entity.WorldID) *actor.PID {
	if pid, ok := m.worldActors[worldID]; ok && pid != nil {
		return pid
	}

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewWorldActor(worldID, m.svc, m.tickEvery, m.log)
	})
	pid := ctx.Spawn(props)
	m.worldActors[worldID] = pid
	return pid
}
