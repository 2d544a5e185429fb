package eyeballs

import (
	"fmt"

	"go.uber.org/multierr"
)

// ============================================================================
//                              尝试
// ============================================================================

// Handle 尝试在竞速上下文中的稳定下标
type Handle int

// InvalidHandle 无效句柄
const InvalidHandle Handle = -1

// AttemptStatus 尝试状态
type AttemptStatus uint8

const (
	// StatusPending 非阻塞 connect 进行中
	StatusPending AttemptStatus = iota
	// StatusReady 已成为胜者
	StatusReady
	// StatusNeutralized 已失败，等待关闭
	StatusNeutralized
	// StatusClosed 描述符已关闭
	StatusClosed
)

func (s AttemptStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusReady:
		return "ready"
	case StatusNeutralized:
		return "neutralized"
	case StatusClosed:
		return "closed"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// Attempt 一次进行中的连接尝试
type Attempt struct {
	// FD socket 描述符
	FD int

	// Candidate 候选在重排后序列中的下标
	Candidate int

	// OrigFlags 切换非阻塞前的文件状态标志
	OrigFlags int

	// Status 当前状态
	Status AttemptStatus

	// Err 中和原因
	Err error
}

// ============================================================================
//                              RaceContext
// ============================================================================

const (
	// MinCapacity 初始容量：两个地址族 × 每族两个候选
	MinCapacity = 4

	maxCapacity = 1 << 20
)

// RaceContext 单次竞速的尝试登记表
//
// 只追加不删除：失败的尝试被中和而非移除，句柄（下标）在整个竞速期间保持不变。
// 容量不足时按倍数增长到新的存储，旧存储不再复用。
// RaceContext 由驱动独占使用，不做并发保护。
type RaceContext struct {
	attempts  []Attempt
	winner    Handle
	live      int
	closeFn   func(fd int) error
	destroyed bool
}

// NewRaceContext 创建竞速上下文
//
// closeFn 用于关闭描述符（取消与销毁时调用）。
func NewRaceContext(closeFn func(fd int) error) *RaceContext {
	return &RaceContext{
		attempts: make([]Attempt, 0, MinCapacity),
		winner:   InvalidHandle,
		closeFn:  closeFn,
	}
}

// Append 登记新的尝试并返回其句柄
func (rc *RaceContext) Append(fd, candidate, origFlags int) (Handle, error) {
	if rc.destroyed {
		return InvalidHandle, ErrContextDestroyed
	}
	if len(rc.attempts) == cap(rc.attempts) {
		if err := rc.grow(); err != nil {
			return InvalidHandle, err
		}
	}

	h := Handle(len(rc.attempts))
	rc.attempts = append(rc.attempts, Attempt{
		FD:        fd,
		Candidate: candidate,
		OrigFlags: origFlags,
		Status:    StatusPending,
	})
	rc.live++
	return h, nil
}

// grow 将容量翻倍（至少 MinCapacity）
func (rc *RaceContext) grow() error {
	newCap := cap(rc.attempts) * 2
	if newCap < MinCapacity {
		newCap = MinCapacity
	}
	if newCap > maxCapacity {
		return ErrContextFull
	}
	grown := make([]Attempt, len(rc.attempts), newCap)
	copy(grown, rc.attempts)
	rc.attempts = grown
	return nil
}

// At 返回句柄对应尝试的副本
func (rc *RaceContext) At(h Handle) (Attempt, error) {
	if !rc.valid(h) {
		return Attempt{}, ErrInvalidHandle
	}
	return rc.attempts[h], nil
}

// Len 已登记的尝试数
func (rc *RaceContext) Len() int {
	return len(rc.attempts)
}

// Cap 当前存储容量
func (rc *RaceContext) Cap() int {
	return cap(rc.attempts)
}

// Live 仍在进行中的尝试数
func (rc *RaceContext) Live() int {
	return rc.live
}

// Pending 按登记顺序返回所有进行中尝试的句柄
func (rc *RaceContext) Pending() []Handle {
	hs := make([]Handle, 0, rc.live)
	for i := range rc.attempts {
		if rc.attempts[i].Status == StatusPending {
			hs = append(hs, Handle(i))
		}
	}
	return hs
}

// Neutralize 将进行中的尝试标记为失败，保留其槽位与描述符
func (rc *RaceContext) Neutralize(h Handle, cause error) error {
	if !rc.valid(h) {
		return ErrInvalidHandle
	}
	a := &rc.attempts[h]
	if a.Status != StatusPending {
		return fmt.Errorf("%w: attempt %d is %s", ErrInvalidHandle, h, a.Status)
	}
	a.Status = StatusNeutralized
	a.Err = cause
	rc.live--
	return nil
}

// SetWinner 标记胜者，每个竞速只能设置一次
func (rc *RaceContext) SetWinner(h Handle) error {
	if !rc.valid(h) {
		return ErrInvalidHandle
	}
	if rc.winner != InvalidHandle {
		return ErrWinnerAlreadySet
	}
	a := &rc.attempts[h]
	if a.Status != StatusPending {
		return fmt.Errorf("%w: attempt %d is %s", ErrInvalidHandle, h, a.Status)
	}
	a.Status = StatusReady
	rc.winner = h
	rc.live--
	return nil
}

// Winner 返回胜者句柄
func (rc *RaceContext) Winner() (Handle, bool) {
	return rc.winner, rc.winner != InvalidHandle
}

// Cancel 立即关闭一个非胜者尝试的描述符
//
// 已关闭的尝试再次取消是空操作，描述符不会被重复关闭。
func (rc *RaceContext) Cancel(h Handle) error {
	if !rc.valid(h) {
		return ErrInvalidHandle
	}
	if h == rc.winner {
		return ErrCancelWinner
	}
	a := &rc.attempts[h]
	switch a.Status {
	case StatusClosed:
		return nil
	case StatusPending:
		rc.live--
	}
	a.Status = StatusClosed
	if rc.closeFn == nil {
		return nil
	}
	return rc.closeFn(a.FD)
}

// Teardown 关闭除胜者外的全部描述符并释放存储
//
// 胜者描述符的所有权此前已交给调用方。空上下文与重复调用都是安全的。
func (rc *RaceContext) Teardown() error {
	if rc.destroyed {
		return nil
	}
	var err error
	for i := range rc.attempts {
		h := Handle(i)
		if h == rc.winner {
			continue
		}
		err = multierr.Append(err, rc.Cancel(h))
	}
	rc.attempts = nil
	rc.live = 0
	rc.destroyed = true
	return err
}

func (rc *RaceContext) valid(h Handle) bool {
	return !rc.destroyed && h >= 0 && int(h) < len(rc.attempts)
}
