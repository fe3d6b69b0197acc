package http

import (
	"context"
	nethttp "net/http"
	"strconv"

	"Dominion/internal/shared/security"
	"Dominion/internal/shared/transport"
	"Dominion/internal/shared/transport/http/middleware"
	"Dominion/internal/shared/transport/ws"
	"Dominion/internal/world/entity"
	"Dominion/internal/world/interfaces/handler"
	"Dominion/internal/world/service"
	"Dominion/modules/kit/logx"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WorldRuntime 是 handler 依赖的世界入口，由 actor.Runtime 实现。
type WorldRuntime interface {
	CreateWorld(ctx context.Context, id entity.WorldID, size int, seed int64) (*entity.World, error)
	GetWorld(ctx context.Context, id entity.WorldID) (*service.WorldView, error)
	GetGrid(ctx context.Context, id entity.WorldID) (*service.GridView, error)
	JoinWorld(ctx context.Context, id entity.WorldID, kid entity.KingdomID, name string) (*service.JoinResult, error)
	ClaimTile(ctx context.Context, id entity.WorldID, kid entity.KingdomID, x, y int) (*service.ClaimResult, error)
	EnqueueTraining(ctx context.Context, id entity.WorldID, kid entity.KingdomID, unit string, qty int64) (*entity.TrainingOrder, error)
	AdvanceDay(ctx context.Context, id entity.WorldID, day int) (int, error)
	GetKingdom(ctx context.Context, id entity.WorldID, kid entity.KingdomID) (*entity.Kingdom, error)
	ListReports(ctx context.Context, id entity.WorldID, kid entity.KingdomID, limit int) ([]entity.BattleReport, error)
}

type Options struct {
	Verifier *security.Verifier
	Limiter  *middleware.RateLimiter
	Hub      *ws.Hub
	Logger   logx.Logger
}

type HttpHandler struct {
	rt  WorldRuntime
	opt Options
	log logx.Logger
}

func NewHttpHandler(rt WorldRuntime, opt Options) *HttpHandler {
	log := opt.Logger
	if log == nil {
		log = logx.Nop()
	}
	return &HttpHandler{rt: rt, opt: opt, log: log}
}

func (h *HttpHandler) RegisterRoutes(group *gin.RouterGroup) {
	auth := Auth(h.opt.Verifier)
	limit := middleware.RateLimit(h.opt.Limiter, kingdomOf)

	worlds := group.Group("/worlds")
	worlds.GET("/:id", h.GetWorld)
	worlds.GET("/:id/grid", h.GetGrid)
	worlds.GET("/:id/kingdoms/:kid", h.GetKingdom)
	worlds.GET("/:id/reports", h.ListReports)
	worlds.GET("/:id/events", h.Events)

	write := worlds.Group("/:id", auth, limit)
	write.POST("/join", h.Join)
	write.POST("/claim", h.Claim)
	write.POST("/training", h.Train)

	// 建世界和推进天数会影响所有玩家，只对管理员开放
	admin := group.Group("/worlds", auth, AdminOnly())
	admin.POST("", h.CreateWorld)
	admin.POST("/:id/days", h.AdvanceDay)
}

func (h *HttpHandler) CreateWorld(c *gin.Context) {
	var req CreateWorldReq
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, nethttp.StatusBadRequest, transport.InvalidParam, "参数有误")
		return
	}
	ctx := c.Request.Context()
	w, err := h.rt.CreateWorld(ctx, entity.WorldID(req.ID), req.Size, req.Seed)
	if err != nil {
		h.error(ctx, c, err)
		return
	}
	h.ok(c, toCreateWorldResp(w))
}

func (h *HttpHandler) GetWorld(c *gin.Context) {
	ctx := c.Request.Context()
	v, err := h.rt.GetWorld(ctx, worldID(c))
	if err != nil {
		h.error(ctx, c, err)
		return
	}
	h.ok(c, v)
}

func (h *HttpHandler) GetGrid(c *gin.Context) {
	ctx := c.Request.Context()
	v, err := h.rt.GetGrid(ctx, worldID(c))
	if err != nil {
		h.error(ctx, c, err)
		return
	}
	h.ok(c, v)
}

func (h *HttpHandler) GetKingdom(c *gin.Context) {
	ctx := c.Request.Context()
	k, err := h.rt.GetKingdom(ctx, worldID(c), entity.KingdomID(c.Param("kid")))
	if err != nil {
		h.error(ctx, c, err)
		return
	}
	h.ok(c, k)
}

func (h *HttpHandler) ListReports(c *gin.Context) {
	limit := 0
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			h.fail(c, nethttp.StatusBadRequest, transport.InvalidParam, "limit 有误")
			return
		}
		limit = n
	}
	ctx := c.Request.Context()
	list, err := h.rt.ListReports(ctx, worldID(c), entity.KingdomID(c.Query("kingdom_id")), limit)
	if err != nil {
		h.error(ctx, c, err)
		return
	}
	h.ok(c, list)
}

func (h *HttpHandler) Join(c *gin.Context) {
	var req JoinReq
	// body 可以为空，名字默认取 kingdom id
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.fail(c, nethttp.StatusBadRequest, transport.InvalidParam, "参数有误")
			return
		}
	}
	ctx := c.Request.Context()
	res, err := h.rt.JoinWorld(ctx, worldID(c), entity.KingdomID(kingdomOf(c)), req.Name)
	if err != nil {
		h.error(ctx, c, err)
		return
	}
	h.ok(c, res)
}

func (h *HttpHandler) Claim(c *gin.Context) {
	var req ClaimReq
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, nethttp.StatusBadRequest, transport.InvalidParam, "参数有误")
		return
	}
	ctx := c.Request.Context()
	res, err := h.rt.ClaimTile(ctx, worldID(c), entity.KingdomID(kingdomOf(c)), *req.X, *req.Y)
	if err != nil {
		h.error(ctx, c, err)
		return
	}
	h.ok(c, res)
}

func (h *HttpHandler) Train(c *gin.Context) {
	var req TrainReq
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, nethttp.StatusBadRequest, transport.InvalidParam, "参数有误")
		return
	}
	ctx := c.Request.Context()
	o, err := h.rt.EnqueueTraining(ctx, worldID(c), entity.KingdomID(kingdomOf(c)), req.Unit, req.Quantity)
	if err != nil {
		h.error(ctx, c, err)
		return
	}
	h.ok(c, TrainResp{OrderID: o.ID, StartAt: o.StartAt, EndTime: o.EndAt})
}

func (h *HttpHandler) AdvanceDay(c *gin.Context) {
	var req AdvanceDayReq
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, nethttp.StatusBadRequest, transport.InvalidParam, "参数有误")
		return
	}
	ctx := c.Request.Context()
	n, err := h.rt.AdvanceDay(ctx, worldID(c), req.Day)
	if err != nil {
		h.error(ctx, c, err)
		return
	}
	h.ok(c, AdvanceDayResp{Unlocked: n})
}

// Events 把连接挂到 world 房间，推送占领、王国状态、省份解锁事件。
func (h *HttpHandler) Events(c *gin.Context) {
	if h.opt.Hub == nil {
		h.fail(c, nethttp.StatusNotFound, transport.NotFound, "事件推送未开启")
		return
	}
	if err := h.opt.Hub.Serve(c.Writer, c.Request, c.Param("id")); err != nil {
		h.log.Warn("ws upgrade failed", zap.String("world_id", c.Param("id")), zap.Error(err))
	}
}

func worldID(c *gin.Context) entity.WorldID {
	return entity.WorldID(c.Param("id"))
}

func (h *HttpHandler) ok(c *gin.Context, data any) {
	c.JSON(nethttp.StatusOK, Response{Code: transport.OK, Data: data})
}

func (h *HttpHandler) fail(c *gin.Context, status int, code transport.BizCode, msg string) {
	c.JSON(status, Response{Code: code, Msg: msg})
}

func (h *HttpHandler) error(ctx context.Context, c *gin.Context, err error) {
	r := handler.HandleError(ctx, err)
	if r.Code >= transport.SystemError {
		logx.Report(ctx, h.log, c.Request.Method+" "+c.FullPath(), err)
	}
	c.JSON(r.Status, Response{Code: r.Code, Msg: r.Msg, Data: r.Data})
}
