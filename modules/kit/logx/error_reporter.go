package logx

import (
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"Dominion/modules/kit/errx"
)

// ErrorLog 是错误展开后的可读结构。
type ErrorLog struct {
	Error      string
	Code       string
	Msg        string
	Reason     string
	Data       map[string]any
	CauseChain []string
	Origin     string
	Stack      string
}

// BuildErrorLog 从错误链上提取错误码、上下文、cause 链和首个栈。
func BuildErrorLog(err error) ErrorLog {
	if err == nil {
		return ErrorLog{}
	}
	out := ErrorLog{Error: err.Error()}

	var e *errx.Error
	if errors.As(err, &e) {
		out.Code = e.CodeText()
		out.Msg = e.Msg()
		out.Reason = e.Reason()
		out.Data = e.Data()
	}
	// 栈可能挂在链上更深的一层
	for cur := err; cur != nil; cur = errors.Unwrap(cur) {
		if sp, ok := cur.(interface{ Stack() []uintptr }); ok && len(sp.Stack()) != 0 {
			out.Origin, out.Stack = formatStack(sp.Stack(), 32)
			break
		}
	}
	out.CauseChain = buildCauseChain(err, 20)
	return out
}

func buildCauseChain(err error, maxDepth int) []string {
	out := make([]string, 0, 4)
	cur := errors.Unwrap(err)
	for i := 0; i < maxDepth && cur != nil; i++ {
		out = append(out, fmt.Sprintf("%T: %v", cur, cur))
		cur = errors.Unwrap(cur)
	}
	return out
}

func formatStack(pcs []uintptr, maxFrames int) (origin string, stack string) {
	frames := runtime.CallersFrames(pcs)
	lines := make([]string, 0, maxFrames)
	for i := 0; i < maxFrames; i++ {
		f, more := frames.Next()
		if f.Function == "" && f.File == "" {
			break
		}
		line := f.Function + " " + f.File + ":" + strconv.Itoa(f.Line)
		if origin == "" {
			origin = line
		}
		lines = append(lines, line)
		if !more {
			break
		}
	}
	return origin, strings.Join(lines, "\n")
}
