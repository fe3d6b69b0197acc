package actors

import (
	"github.com/asynkron/protoactor-go/actor"

	"Dominion/internal/shared/actor/messages"
	"Dominion/internal/world/entity"
)

type WorldHandler struct{}

var WH = &WorldHandler{}

func (h *WorldHandler) HandleHWGetWorld(ctx actor.Context, p *WorldActor, req *messages.HWGetWorld) {
	v, err := p.session.View(req.Context())
	reply(ctx, v, err)
}

func (h *WorldHandler) HandleHWGetGrid(ctx actor.Context, p *WorldActor, req *messages.HWGetGrid) {
	v, err := p.session.Grid(req.Context())
	reply(ctx, v, err)
}

func (h *WorldHandler) HandleHWJoin(ctx actor.Context, p *WorldActor, req *messages.HWJoin) {
	v, err := p.session.Join(req.Context(), entity.KingdomID(req.KingdomId), req.Name)
	reply(ctx, v, err)
}

func (h *WorldHandler) HandleHWClaim(ctx actor.Context, p *WorldActor, req *messages.HWClaim) {
	v, err := p.session.Claim(req.Context(), entity.KingdomID(req.KingdomId), req.X, req.Y)
	reply(ctx, v, err)
}

func (h *WorldHandler) HandleHWTrain(ctx actor.Context, p *WorldActor, req *messages.HWTrain) {
	v, err := p.session.EnqueueTraining(req.Context(), entity.KingdomID(req.KingdomId), entity.UnitClass(req.Unit), req.Quantity)
	reply(ctx, v, err)
}

func (h *WorldHandler) HandleHWAdvanceDay(ctx actor.Context, p *WorldActor, req *messages.HWAdvanceDay) {
	v, err := p.session.AdvanceDay(req.Context(), req.Day)
	reply(ctx, v, err)
}

func (h *WorldHandler) HandleHWGetKingdom(ctx actor.Context, p *WorldActor, req *messages.HWGetKingdom) {
	v, err := p.session.Kingdom(req.Context(), entity.KingdomID(req.KingdomId))
	reply(ctx, v, err)
}

func (h *WorldHandler) HandleHWListReports(ctx actor.Context, p *WorldActor, req *messages.HWListReports) {
	v, err := p.svc.ListReports(req.Context(), p.worldID, entity.KingdomID(req.KingdomId), req.Limit)
	reply(ctx, v, err)
}

// reply 把 (结果, err) 包成 WHReply 回给请求方。
func reply(ctx actor.Context, v any, err error) {
	if err != nil {
		ctx.Respond(messages.Fail(err))
		return
	}
	ctx.Respond(messages.Ok(v))
}
