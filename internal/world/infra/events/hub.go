package events

import (
	"context"

	"Dominion/internal/shared/transport/ws"
	"Dominion/internal/world/app/port"
)

// HubPublisher 直接推给本进程的 ws 房间，房间名即世界 id。
type HubPublisher struct {
	hub *ws.Hub
}

func NewHubPublisher(hub *ws.Hub) *HubPublisher {
	return &HubPublisher{hub: hub}
}

func (p *HubPublisher) Publish(_ context.Context, events ...port.Event) {
	for _, e := range events {
		p.hub.Broadcast(string(e.WorldID), string(e.Type), e)
	}
}

var _ port.EventPublisher = (*HubPublisher)(nil)
