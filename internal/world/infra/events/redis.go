package events

import (
	"context"
	"encoding/json"
	"strings"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"Dominion/internal/shared/infrastructure/redis"
	"Dominion/internal/shared/transport/ws"
	"Dominion/internal/world/app/port"
	"Dominion/modules/kit/logx"
)

// RedisPublisher 把事件发到 world:<id>:events 频道，多进程部署时由各进程的 Relay 转给本地 ws。
type RedisPublisher struct {
	rdb *goredis.Client
	log logx.Logger
}

func NewRedisPublisher(rdb *goredis.Client, log logx.Logger) *RedisPublisher {
	if log == nil {
		log = logx.Nop()
	}
	return &RedisPublisher{rdb: rdb, log: log}
}

func (p *RedisPublisher) Publish(ctx context.Context, events ...port.Event) {
	if len(events) == 0 {
		return
	}
	pipe := p.rdb.Pipeline()
	for _, e := range events {
		raw, err := json.Marshal(e)
		if err != nil {
			p.log.Error("event marshal failed", zap.String("type", string(e.Type)), zap.Error(err))
			continue
		}
		pipe.Publish(ctx, redis.WorldChannel(string(e.WorldID)), raw)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		// 状态已提交，事件丢失只影响推送
		p.log.WithContext(ctx).Warn("event publish failed", zap.Int("count", len(events)), zap.Error(err))
	}
}

// relayEvent 只解出路由需要的字段，data 原样转发。
type relayEvent struct {
	ID      string          `json:"id"`
	WorldID string          `json:"world_id"`
	Type    string          `json:"type"`
	At      json.RawMessage `json:"at"`
	Data    json.RawMessage `json:"data"`
}

// Relay 订阅所有世界频道并广播给本进程 ws 房间。
type Relay struct {
	rdb *goredis.Client
	hub *ws.Hub
	log logx.Logger
}

func NewRelay(rdb *goredis.Client, hub *ws.Hub, log logx.Logger) *Relay {
	if log == nil {
		log = logx.Nop()
	}
	return &Relay{rdb: rdb, hub: hub, log: log}
}

// Run 阻塞直到 ctx 结束。
func (r *Relay) Run(ctx context.Context) {
	pubsub := r.rdb.PSubscribe(ctx, redis.WorldChannel("*"))
	defer pubsub.Close()

	r.log.Info("event relay started")
	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			r.forward(msg.Channel, msg.Payload)
		}
	}
}

func (r *Relay) forward(channel, payload string) {
	var e relayEvent
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		r.log.Warn("relay drop malformed event", zap.String("channel", channel), zap.Error(err))
		return
	}
	if e.WorldID == "" {
		e.WorldID = strings.TrimSuffix(strings.TrimPrefix(channel, "world:"), ":events")
	}
	r.hub.Broadcast(e.WorldID, e.Type, e)
}

var _ port.EventPublisher = (*RedisPublisher)(nil)
