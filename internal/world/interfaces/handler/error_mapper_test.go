package handler

import (
	"context"
	"errors"
	nethttp "net/http"
	"testing"

	"Dominion/internal/shared/transport"
	"Dominion/internal/world/service"
	"Dominion/modules/kit/errx"
)

func TestHandleError_业务拒绝映射到玩法码(t *testing.T) {
	cases := []struct {
		err  error
		code transport.BizCode
	}{
		{service.ErrOutOfBounds, transport.OutOfBounds},
		{service.ErrAlreadyOwned, transport.AlreadyOwned},
		{service.ErrNotConnected, transport.NotConnected},
		{service.ErrInsufficientPower.WithData("required", int64(3000)), transport.InsufficientPower},
		{service.ErrInsufficientResources, transport.InsufficientResources},
		{service.ErrWorldFull, transport.WorldFull},
		{service.ErrNoSpawnAvailable, transport.NoSpawnAvailable},
		{service.ErrImpassable, transport.Impassable},
		{service.ErrGateLocked, transport.GateLocked},
		{service.ErrInvalidOrder, transport.InvalidOrder},
		{service.ErrKingdomNotFound, transport.KingdomNotFound},
	}
	for _, tc := range cases {
		r := HandleError(context.Background(), tc.err)
		if r.Code != tc.code || r.Status != nethttp.StatusOK {
			t.Fatalf("期望 %v -> %d/200, got=%d/%d", tc.err, tc.code, r.Code, r.Status)
		}
	}
}

func TestHandleError_携带业务data(t *testing.T) {
	r := HandleError(context.Background(), service.ErrInsufficientPower.WithData("required", int64(3000)))
	if r.Data["required"] != int64(3000) {
		t.Fatalf("期望带上 required, got=%v", r.Data)
	}
	if r.Msg != "兵力不足" {
		t.Fatalf("期望业务文案, got=%q", r.Msg)
	}
}

func TestHandleError_通用码与HTTP状态一致(t *testing.T) {
	cases := []struct {
		err    error
		code   transport.BizCode
		status int
	}{
		{service.ErrInvalidParam, transport.InvalidParam, nethttp.StatusBadRequest},
		{service.ErrWorldNotFound, transport.NotFound, nethttp.StatusNotFound},
		{service.ErrWorldExists, transport.WorldExists, nethttp.StatusConflict},
		{service.ErrConflict.WithData("op", "claim"), transport.Conflict, nethttp.StatusServiceUnavailable},
		{errx.ErrTimeout, transport.Timeout, nethttp.StatusGatewayTimeout},
		{errx.ErrUnavailable.WithCause(errors.New("dial tcp")), transport.Unavailable, nethttp.StatusBadGateway},
		{errors.New("boom"), transport.SystemError, nethttp.StatusInternalServerError},
	}
	for _, tc := range cases {
		r := HandleError(context.Background(), tc.err)
		if r.Code != tc.code || r.Status != tc.status {
			t.Fatalf("期望 %v -> %d/%d, got=%d/%d", tc.err, tc.code, tc.status, r.Code, r.Status)
		}
	}
}

func TestHandleError_系统错误不外泄细节(t *testing.T) {
	r := HandleError(context.Background(), errx.ErrInternal.WithCause(errors.New("mongo: secret host")))
	if r.Code != transport.SystemError || r.Msg != "系统繁忙，请稍后重试" {
		t.Fatalf("期望统一文案, got=%+v", r)
	}
}
