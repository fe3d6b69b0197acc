package logx

import (
	"context"
	"fmt"

	"Dominion/modules/kit/errx"

	"go.uber.org/zap"
)

// ReportAccess 记录一次命令/请求的访问日志：
// - biz_code == 0: INFO
// - biz_code  1~499: WARN（规则拒绝）
// - biz_code >= 500: ERROR
func ReportAccess(ctx context.Context, l Logger, action string, bizCode int, fields ...zap.Field) {
	if l == nil {
		return
	}
	base := make([]zap.Field, 0, 3+len(fields))
	base = append(base,
		zap.String("log_type", "access"),
		zap.String("action", action),
		zap.Int("biz_code", bizCode),
	)
	base = append(base, fields...)
	withCtx := l.WithContext(ctx)
	switch {
	case bizCode == 0:
		withCtx.Info("access", base...)
	case bizCode >= 500:
		withCtx.Error("access", base...)
	default:
		withCtx.Warn("access", base...)
	}
}

// Report 按错误类型分流：业务拒绝走 INFO，其余走 ERROR 并附带 cause 链和栈。
func Report(ctx context.Context, l Logger, action string, err error, fields ...zap.Field) {
	if err == nil || l == nil {
		return
	}
	if errx.IsBiz(err) {
		ReportBiz(ctx, l, action, err, fields...)
		return
	}
	ReportSysError(ctx, l, action, err, fields...)
}

// ReportBiz 记录业务拒绝：INFO、err_type=biz、不带堆栈。
func ReportBiz(ctx context.Context, l Logger, action string, err error, fields ...zap.Field) {
	if err == nil || l == nil {
		return
	}
	if action == "" {
		action = "biz_reject"
	}
	meta := BuildErrorLog(err)
	base := []zap.Field{
		zap.String("err_type", "biz"),
		zap.String("action", action),
	}
	if meta.Code != "" {
		base = append(base, zap.String("reason", meta.Code))
	}
	if len(meta.Data) != 0 {
		base = append(base, zap.Any("error_data", meta.Data))
	}
	base = append(base, fields...)

	msg := action
	if meta.Code != "" {
		msg = fmt.Sprintf("%s, reason:%s", action, meta.Code)
	}
	l.WithContext(ctx).Info(msg, base...)
}

// ReportSysError 记录技术错误：ERROR、err_type=sys。
func ReportSysError(ctx context.Context, l Logger, action string, err error, fields ...zap.Field) {
	if err == nil || l == nil {
		return
	}
	if action == "" {
		action = "sys_error"
	}
	meta := BuildErrorLog(err)
	base := []zap.Field{
		zap.String("err_type", "sys"),
		zap.String("action", action),
	}
	if meta.Code != "" {
		base = append(base, zap.String("error_code", meta.Code))
	}
	if len(meta.CauseChain) != 0 {
		base = append(base, zap.Strings("cause_chain", meta.CauseChain))
	}
	if len(meta.Data) != 0 {
		base = append(base, zap.Any("error_data", meta.Data))
	}
	if meta.Origin != "" {
		base = append(base, zap.String("origin_caller", meta.Origin))
	}
	if meta.Stack != "" {
		base = append(base, zap.String("stack_origin", meta.Stack))
	}
	base = append(base, fields...)
	l.WithContext(ctx).Error(fmt.Sprintf("%s, error:%s", action, meta.Error), base...)
}
