package actor

import (
	"context"
	"errors"
	"fmt"
	"time"

	protoactor "github.com/asynkron/protoactor-go/actor"

	"Dominion/internal/shared/actor/messages"
	"Dominion/internal/shared/transport"
	"Dominion/internal/world/actors"
	"Dominion/internal/world/entity"
	"Dominion/internal/world/service"
	"Dominion/modules/kit/errx"
	"Dominion/modules/kit/logx"
)

const defaultAskTimeout = 3 * time.Second

// createTimeout 给大地图生成留足时间。
const createTimeout = 60 * time.Second

type RuntimeError struct {
	Code    transport.BizCode
	Message string
	Cause   error
}

func (e *RuntimeError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

func (e *RuntimeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Runtime 是 HTTP 层访问世界 actor 的唯一入口，每个方法都是一次 RequestFuture。
type Runtime struct {
	system  *protoactor.ActorSystem
	root    *protoactor.RootContext
	manager *protoactor.PID
	timeout time.Duration
}

func NewRuntime(svc *service.WorldService, tickEvery, askTimeout time.Duration, log logx.Logger) *Runtime {
	if askTimeout <= 0 {
		askTimeout = defaultAskTimeout
	}

	system := protoactor.NewActorSystem()
	root := system.Root
	managerProps := protoactor.PropsFromProducer(func() protoactor.Actor {
		return actors.NewManagerActor(svc, tickEvery, log)
	})
	manager := root.Spawn(managerProps)

	return &Runtime{
		system:  system,
		root:    root,
		manager: manager,
		timeout: askTimeout,
	}
}

func (r *Runtime) Shutdown() {
	if r == nil {
		return
	}
	if r.root != nil && r.manager != nil {
		_ = r.root.StopFuture(r.manager).Wait()
	}
	if r.system != nil {
		r.system.Shutdown()
	}
}

func base(ctx context.Context, id entity.WorldID) messages.WorldBaseMessage {
	return messages.WorldBaseMessage{Ctx: ctx, WorldId: string(id)}
}

func (r *Runtime) CreateWorld(ctx context.Context, id entity.WorldID, size int, seed int64) (*entity.World, error) {
	msg := &messages.HWCreateWorld{WorldBaseMessage: base(ctx, id), Size: size, Seed: seed}
	return ask[*entity.World](r, msg, r.timeoutWithCap(ctx, createTimeout))
}

func (r *Runtime) GetWorld(ctx context.Context, id entity.WorldID) (*service.WorldView, error) {
	return ask[*service.WorldView](r, &messages.HWGetWorld{WorldBaseMessage: base(ctx, id)}, r.timeoutFromContext(ctx))
}

func (r *Runtime) GetGrid(ctx context.Context, id entity.WorldID) (*service.GridView, error) {
	return ask[*service.GridView](r, &messages.HWGetGrid{WorldBaseMessage: base(ctx, id)}, r.timeoutFromContext(ctx))
}

func (r *Runtime) JoinWorld(ctx context.Context, id entity.WorldID, kid entity.KingdomID, name string) (*service.JoinResult, error) {
	msg := &messages.HWJoin{WorldBaseMessage: base(ctx, id), KingdomId: string(kid), Name: name}
	return ask[*service.JoinResult](r, msg, r.timeoutFromContext(ctx))
}

func (r *Runtime) ClaimTile(ctx context.Context, id entity.WorldID, kid entity.KingdomID, x, y int) (*service.ClaimResult, error) {
	msg := &messages.HWClaim{WorldBaseMessage: base(ctx, id), KingdomId: string(kid), X: x, Y: y}
	return ask[*service.ClaimResult](r, msg, r.timeoutFromContext(ctx))
}

func (r *Runtime) EnqueueTraining(ctx context.Context, id entity.WorldID, kid entity.KingdomID, unit string, qty int64) (*entity.TrainingOrder, error) {
	msg := &messages.HWTrain{WorldBaseMessage: base(ctx, id), KingdomId: string(kid), Unit: unit, Quantity: qty}
	return ask[*entity.TrainingOrder](r, msg, r.timeoutFromContext(ctx))
}

func (r *Runtime) AdvanceDay(ctx context.Context, id entity.WorldID, day int) (int, error) {
	return ask[int](r, &messages.HWAdvanceDay{WorldBaseMessage: base(ctx, id), Day: day}, r.timeoutFromContext(ctx))
}

func (r *Runtime) GetKingdom(ctx context.Context, id entity.WorldID, kid entity.KingdomID) (*entity.Kingdom, error) {
	msg := &messages.HWGetKingdom{WorldBaseMessage: base(ctx, id), KingdomId: string(kid)}
	return ask[*entity.Kingdom](r, msg, r.timeoutFromContext(ctx))
}

func (r *Runtime) ListReports(ctx context.Context, id entity.WorldID, kid entity.KingdomID, limit int) ([]entity.BattleReport, error) {
	msg := &messages.HWListReports{WorldBaseMessage: base(ctx, id), KingdomId: string(kid), Limit: limit}
	return ask[[]entity.BattleReport](r, msg, r.timeoutFromContext(ctx))
}

// ask 发请求并把 WHReply 解成具体类型；业务错误原样返回。
func ask[T any](r *Runtime, msg any, timeout time.Duration) (T, error) {
	var zero T
	res, err := r.request(r.manager, msg, timeout)
	if err != nil {
		return zero, err
	}
	reply, ok := res.(*messages.WHReply)
	if !ok || reply == nil {
		return zero, &RuntimeError{Code: transport.SystemError, Message: fmt.Sprintf("unexpected reply %T", res)}
	}
	if reply.Err != nil {
		return zero, reply.Err
	}
	v, ok := reply.Payload.(T)
	if !ok {
		return zero, &RuntimeError{Code: transport.SystemError, Message: fmt.Sprintf("unexpected payload %T", reply.Payload)}
	}
	return v, nil
}

func (r *Runtime) request(pid *protoactor.PID, msg any, timeout time.Duration) (any, error) {
	if r == nil || r.root == nil {
		return nil, &RuntimeError{Code: transport.SystemError, Message: "actor runtime 未初始化"}
	}
	if pid == nil {
		return nil, &RuntimeError{Code: transport.SystemError, Message: "actor pid 为空"}
	}

	future := r.root.RequestFuture(pid, msg, timeout)
	res, err := future.Result()
	if err != nil {
		if errors.Is(err, protoactor.ErrTimeout) {
			return nil, errx.ErrTimeout.WithCause(err)
		}
		return nil, &RuntimeError{
			Code:    transport.SystemError,
			Message: "actor 请求失败",
			Cause:   err,
		}
	}
	return res, nil
}

func (r *Runtime) timeoutFromContext(ctx context.Context) time.Duration {
	return r.timeoutWithCap(ctx, r.timeout)
}

// timeoutWithCap 取 ctx 剩余时间与 limit 中较小者。
func (r *Runtime) timeoutWithCap(ctx context.Context, limit time.Duration) time.Duration {
	if limit <= 0 {
		limit = defaultAskTimeout
	}
	if ctx == nil {
		return limit
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		return limit
	}
	remain := time.Until(deadline)
	if remain <= 0 {
		return time.Millisecond
	}
	if remain < limit {
		return remain
	}
	return limit
}

func CodeFromError(err error) transport.BizCode {
	if err == nil {
		return transport.OK
	}
	var re *RuntimeError
	if errors.As(err, &re) && re != nil && re.Code != 0 {
		return re.Code
	}
	return transport.SystemError
}
