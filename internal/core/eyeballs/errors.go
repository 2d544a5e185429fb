package eyeballs

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

var (
	// ErrEmptyCandidateList 没有提供候选地址
	ErrEmptyCandidateList = errors.New("empty candidate list")

	// ErrAllCandidatesExhausted 所有候选均已尝试且没有胜者
	ErrAllCandidatesExhausted = errors.New("all candidates exhausted")

	// ErrMultiplex 就绪等待本身失败
	ErrMultiplex = errors.New("readiness wait failed")

	// ErrContextDestroyed 竞速上下文已销毁
	ErrContextDestroyed = errors.New("race context destroyed")

	// ErrContextFull 竞速上下文容量已达上限
	ErrContextFull = errors.New("race context full")

	// ErrInvalidHandle 无效的尝试句柄
	ErrInvalidHandle = errors.New("invalid attempt handle")

	// ErrWinnerAlreadySet 胜者只能设置一次
	ErrWinnerAlreadySet = errors.New("winner already set")

	// ErrCancelWinner 胜者的描述符属于调用方，不能取消
	ErrCancelWinner = errors.New("cannot cancel winning attempt")

	// ErrUnsupportedFamily 不支持的地址族
	ErrUnsupportedFamily = errors.New("unsupported address family")
)

// 尝试失败的阶段
const (
	// OpSocket 创建 socket 失败（SocketCreateError）
	OpSocket = "socket"
	// OpSetNonblock 切换非阻塞模式失败
	OpSetNonblock = "setnonblock"
	// OpConnect connect 立即失败（ConnectImmediateError）
	OpConnect = "connect"
	// OpAsyncConnect 非阻塞 connect 完成后 SO_ERROR 报告失败
	OpAsyncConnect = "so_error"
	// OpRestore 恢复胜者阻塞模式失败
	OpRestore = "restore"
)

// AttemptError 单个候选的失败，在竞速内部吸收
type AttemptError struct {
	Op        string
	Candidate Candidate
	Err       error
}

func (e *AttemptError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Candidate, e.Err)
}

// Unwrap 返回底层系统错误
func (e *AttemptError) Unwrap() error {
	return e.Err
}

// ExhaustedError 所有候选都已尝试且没有胜者
//
// Errors 按发生顺序保留每个候选的失败；Last 返回最近一次失败。
type ExhaustedError struct {
	Tried  int
	Errors []error
}

func (e *ExhaustedError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("%v: tried %d candidates", ErrAllCandidatesExhausted, e.Tried)
	}
	return fmt.Sprintf("%v: tried %d candidates: %v",
		ErrAllCandidatesExhausted, e.Tried, multierr.Combine(e.Errors...))
}

// Last 返回最近一次候选失败
func (e *ExhaustedError) Last() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e.Errors[len(e.Errors)-1]
}

// Unwrap 返回哨兵错误及全部候选失败
func (e *ExhaustedError) Unwrap() []error {
	errs := make([]error, 0, len(e.Errors)+1)
	errs = append(errs, ErrAllCandidatesExhausted)
	return append(errs, e.Errors...)
}

// MultiplexError 就绪等待失败，整个竞速中止
type MultiplexError struct {
	Err error
}

func (e *MultiplexError) Error() string {
	return fmt.Sprintf("%v: %v", ErrMultiplex, e.Err)
}

// Unwrap 返回哨兵错误及底层系统错误
func (e *MultiplexError) Unwrap() []error {
	return []error{ErrMultiplex, e.Err}
}
