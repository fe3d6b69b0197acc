package handler

import (
	"context"
	"errors"
	nethttp "net/http"

	"Dominion/internal/shared/transport"
	"Dominion/internal/world/actor"
	"Dominion/modules/kit/errx"
)

var bizCodes = map[errx.Code]transport.BizCode{
	errx.CodeReqParamError:   transport.InvalidParam,
	errx.CodeRateLimited:     transport.RateLimited,
	"OUT_OF_BOUNDS":          transport.OutOfBounds,
	"ALREADY_OWNED":          transport.AlreadyOwned,
	"NOT_CONNECTED":          transport.NotConnected,
	"INSUFFICIENT_POWER":     transport.InsufficientPower,
	"INSUFFICIENT_RESOURCES": transport.InsufficientResources,
	"WORLD_FULL":             transport.WorldFull,
	"NO_SPAWN_AVAILABLE":     transport.NoSpawnAvailable,
	"IMPASSABLE":             transport.Impassable,
	"GATE_LOCKED":            transport.GateLocked,
	"INVALID_ORDER":          transport.InvalidOrder,
	"KINGDOM_NOT_FOUND":      transport.KingdomNotFound,
	"WORLD_NOT_FOUND":        transport.NotFound,
	"WORLD_EXISTS":           transport.WorldExists,
}

var sysCodes = map[errx.Code]transport.BizCode{
	errx.CodeConflict:    transport.Conflict,
	errx.CodeTimeout:     transport.Timeout,
	errx.CodeUnavailable: transport.Unavailable,
}

// Result 是一次失败请求对外暴露的全部信息。
type Result struct {
	Status int
	Code   transport.BizCode
	Msg    string
	Data   map[string]any
}

// HandleError 把错误链翻译成响应：业务拒绝带原始文案和 data，系统错误统一文案。
func HandleError(ctx context.Context, err error) Result {
	var e *errx.Error
	if errors.As(err, &e) {
		transport.SetErrorReason(ctx, e.CodeText())
		if e.IsBiz() {
			code, ok := bizCodes[e.Code()]
			if !ok {
				code = transport.InvalidParam
			}
			return Result{Status: statusOf(code), Code: code, Msg: e.Msg(), Data: e.Data()}
		}
		if code, ok := sysCodes[e.Code()]; ok {
			return Result{Status: statusOf(code), Code: code, Msg: e.Msg()}
		}
		return Result{Status: nethttp.StatusInternalServerError, Code: transport.SystemError, Msg: "系统繁忙，请稍后重试"}
	}
	code := actor.CodeFromError(err)
	return Result{Status: statusOf(code), Code: code, Msg: "系统繁忙，请稍后重试"}
}

// statusOf 让通用码与 HTTP 状态一致，玩法拒绝一律 200。
func statusOf(code transport.BizCode) int {
	switch code {
	case transport.InvalidParam:
		return nethttp.StatusBadRequest
	case transport.Unauthorized:
		return nethttp.StatusUnauthorized
	case transport.Forbidden:
		return nethttp.StatusForbidden
	case transport.NotFound:
		return nethttp.StatusNotFound
	case transport.RateLimited:
		return nethttp.StatusTooManyRequests
	case transport.Conflict:
		return nethttp.StatusServiceUnavailable
	case transport.Unavailable:
		return nethttp.StatusBadGateway
	case transport.Timeout:
		return nethttp.StatusGatewayTimeout
	case transport.WorldExists:
		return nethttp.StatusConflict
	}
	if code >= transport.SystemError {
		return nethttp.StatusInternalServerError
	}
	return nethttp.StatusOK
}
