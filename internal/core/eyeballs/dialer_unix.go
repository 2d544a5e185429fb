//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package eyeballs

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"os"
	"slices"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"github.com/dep2p/go-happyeyeballs/config"
	"github.com/dep2p/go-happyeyeballs/pkg/lib/log"
)

var logger = log.Logger("eyeballs/race")

// noTimeout 无界等待
const noTimeout time.Duration = -1

// cancelPollSlice ctx 可取消时单次 poll 的最长时长
//
// 分片只影响取消的响应速度，不会让无界等待超时。
const cancelPollSlice = 100 * time.Millisecond

// ============================================================================
//                              Dialer
// ============================================================================

// Dialer 连接/多路复用驱动
//
// Dialer 本身无状态，可被多个 goroutine 同时使用；每次 Race 在调用方
// goroutine 内单线程完成，不启动任何后台 goroutine。
type Dialer struct {
	delay    time.Duration
	reorder  bool
	sys      sockets
	clock    clock.Clock
	reporter Reporter
}

// Option Dialer 选项
type Option func(*Dialer)

// WithClock 设置时间源
func WithClock(c clock.Clock) Option {
	return func(d *Dialer) {
		if c != nil {
			d.clock = c
		}
	}
}

// WithReporter 设置观测接口
func WithReporter(r Reporter) Option {
	return func(d *Dialer) {
		if r != nil {
			d.reporter = r
		}
	}
}

// WithFallbackDelay 覆盖回退延迟
func WithFallbackDelay(delay time.Duration) Option {
	return func(d *Dialer) {
		d.delay = delay
	}
}

func withSockets(s sockets) Option {
	return func(d *Dialer) {
		d.sys = s
	}
}

// NewDialer 创建 Dialer
//
// 非正的回退延迟使用 config.DefaultFallbackDelay。
func NewDialer(cfg config.RaceConfig, opts ...Option) *Dialer {
	d := &Dialer{
		delay:    cfg.FallbackDelay.Duration(),
		reorder:  cfg.Reorder,
		sys:      sysSockets{},
		clock:    clock.New(),
		reporter: nopReporter{},
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.delay <= 0 {
		d.delay = config.DefaultFallbackDelay
	}
	return d
}

// FallbackDelay 返回回退延迟
func (d *Dialer) FallbackDelay() time.Duration {
	return d.delay
}

// Result 竞速结果
type Result struct {
	// FD 已连接、已恢复阻塞模式的描述符，所有权属于调用方
	FD int

	// Candidate 胜出的候选
	Candidate Candidate

	// Index 胜者在重排后序列中的下标
	Index int

	// Reorder 本次竞速的重排结果
	Reorder ReorderResult

	// Attempts 登记过的尝试数
	Attempts int

	// Elapsed 竞速耗时
	Elapsed time.Duration

	// RaceID 竞速标识，与日志中的 race 属性一致
	RaceID string
}

// Race 对候选执行一次 Happy Eyeballs 竞速
//
// candidates 不会被修改（重排作用于内部副本）。成功时返回胜者描述符，
// 其余描述符在返回前全部关闭。失败时返回 ErrEmptyCandidateList、
// *MultiplexError、*ExhaustedError 或 ctx 的错误，且不遗留任何描述符。
//
// ctx 在每个候选之前检查；ctx 的截止时间会限制每次等待，
// 因此只有 ctx 没有截止时间时最后一轮等待才是无界的。
func (d *Dialer) Race(ctx context.Context, candidates []Candidate) (*Result, error) {
	if len(candidates) == 0 {
		return nil, ErrEmptyCandidateList
	}

	cands := slices.Clone(candidates)
	reordered := ReorderNone
	if d.reorder {
		reordered = Reorder(cands)
	}

	id := uuid.NewString()
	r := &race{
		d:     d,
		ctx:   ctx,
		id:    id,
		cands: cands,
		rc:    NewRaceContext(d.sys.Close),
		start: d.clock.Now(),
		log:   logger.With("race", id),
	}
	defer r.teardown()

	r.log.Debug("开始竞速",
		"candidates", len(cands),
		"reorder", reordered.String(),
		"delay", d.delay)

	h, err := r.run()
	elapsed := d.clock.Since(r.start)
	if err != nil {
		r.report(err, elapsed)
		return nil, err
	}

	res := r.result(h, reordered, elapsed)
	d.reporter.ObserveAttempt(res.Candidate.Family.String(), AttemptWon)
	d.reporter.ObserveRace(RaceWon, res.Candidate.Family.String(), elapsed)
	r.log.Debug("竞速胜出",
		"candidate", res.Candidate.String(),
		"family", res.Candidate.Family.String(),
		"index", res.Index,
		"attempts", res.Attempts,
		"elapsed", elapsed)
	return res, nil
}

// ============================================================================
//                              单次竞速
// ============================================================================

// race 单次竞速的状态，由 Race 独占
type race struct {
	d        *Dialer
	ctx      context.Context
	id       string
	cands    []Candidate
	rc       *RaceContext
	start    time.Time
	tried    int
	failures []error
	log      *slog.Logger
}

// run 按顺序发起候选直到胜者出现或候选耗尽
func (r *race) run() (Handle, error) {
	last := len(r.cands) - 1
	for i := range r.cands {
		if err := r.ctx.Err(); err != nil {
			return InvalidHandle, err
		}

		h, won, err := r.open(i)
		switch {
		case err != nil:
			r.fail(r.cands[i], err)
			continue
		case won:
			if r.claim(h) {
				return h, nil
			}
			continue
		}

		if i == last {
			break
		}

		h, err = r.wait(r.d.delay)
		if err != nil {
			return InvalidHandle, err
		}
		if h != InvalidHandle {
			return h, nil
		}
		r.log.Debug("未产生胜者，发起下一个候选", "next", i+1, "live", r.rc.Live())
	}

	// 已没有后续候选，剩余尝试必须自行决出结果
	if r.rc.Live() > 0 {
		h, err := r.wait(noTimeout)
		if err != nil || h != InvalidHandle {
			return h, err
		}
	}
	return InvalidHandle, &ExhaustedError{Tried: r.tried, Errors: r.failures}
}

// open 为第 i 个候选创建 socket 并发起非阻塞 connect
//
// 返回的 error 是该候选的失败；won 表示 connect 立即成功。
func (r *race) open(i int) (Handle, bool, error) {
	c := r.cands[i]
	sys := r.d.sys
	r.tried++

	r.log.Debug("发起连接", "index", i, "candidate", c.String(), "family", c.Family.String())

	domain, sa, err := sockaddr(c)
	if err != nil {
		return InvalidHandle, false, &AttemptError{Op: OpSocket, Candidate: c, Err: err}
	}

	fd, err := sys.Socket(domain, sockType(c), c.Protocol)
	if err != nil {
		return InvalidHandle, false, &AttemptError{Op: OpSocket, Candidate: c, Err: os.NewSyscallError("socket", err)}
	}

	flags, err := sys.GetFlags(fd)
	if err == nil {
		err = sys.SetFlags(fd, flags|unix.O_NONBLOCK)
	}
	if err != nil {
		_ = sys.Close(fd)
		return InvalidHandle, false, &AttemptError{Op: OpSetNonblock, Candidate: c, Err: os.NewSyscallError("fcntl", err)}
	}

	var won bool
	switch err := sys.Connect(fd, sa); err {
	case nil, unix.EISCONN:
		won = true
	case unix.EINPROGRESS, unix.EALREADY, unix.EINTR:
	default:
		_ = sys.Close(fd)
		return InvalidHandle, false, &AttemptError{Op: OpConnect, Candidate: c, Err: os.NewSyscallError("connect", err)}
	}

	h, err := r.rc.Append(fd, i, flags)
	if err != nil {
		_ = sys.Close(fd)
		return InvalidHandle, false, &AttemptError{Op: OpConnect, Candidate: c, Err: err}
	}
	return h, won, nil
}

// wait 对所有进行中的尝试执行就绪等待
//
// timeout 为 noTimeout 时无界等待；ctx 可取消时按 cancelPollSlice 分片，
// 每片之后检查 ctx。截止时间以 Dialer 的时钟计算。错误就绪的尝试被中和，等待继续；
// 可读/可写且无挂起错误的尝试中登记下标最小者胜出。
// 超时或全部尝试都已中和时返回 InvalidHandle 与 nil。
func (r *race) wait(timeout time.Duration) (Handle, error) {
	var deadline time.Time
	if timeout != noTimeout {
		deadline = r.d.clock.Now().Add(timeout)
	}

	for r.rc.Live() > 0 {
		ms := -1
		if timeout != noTimeout {
			remaining := deadline.Sub(r.d.clock.Now())
			if remaining <= 0 {
				return InvalidHandle, nil
			}
			ms = millis(remaining)
		}
		// 可取消的 ctx 需要分片等待，才能在无界等待中及时观察到取消
		if r.ctx.Done() != nil {
			if sm := millis(cancelPollSlice); ms < 0 || sm < ms {
				ms = sm
			}
		}
		if dl, ok := r.ctx.Deadline(); ok {
			remaining := dl.Sub(r.d.clock.Now())
			if remaining <= 0 {
				return InvalidHandle, context.DeadlineExceeded
			}
			if cm := millis(remaining); ms < 0 || cm < ms {
				ms = cm
			}
		}

		handles := r.rc.Pending()
		fds := make([]unix.PollFd, len(handles))
		for k, h := range handles {
			a, _ := r.rc.At(h)
			fds[k] = unix.PollFd{Fd: int32(a.FD), Events: unix.POLLIN | unix.POLLOUT}
		}

		n, err := r.d.sys.Poll(fds, ms)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return InvalidHandle, &MultiplexError{Err: os.NewSyscallError("poll", err)}
		}
		if err := r.ctx.Err(); err != nil {
			return InvalidHandle, err
		}
		if n == 0 {
			continue
		}

		for k := range fds {
			if fds[k].Revents == 0 {
				continue
			}
			h := handles[k]
			ready, err := r.classify(fds[k])
			switch {
			case err != nil:
				r.neutralize(h, OpAsyncConnect, err)
			case ready:
				if r.claim(h) {
					return h, nil
				}
			}
		}
	}
	return InvalidHandle, nil
}

// classify 判断一个有事件的描述符是否完成连接
//
// 可写只表示 connect 完成，必须读取 SO_ERROR 区分成功与延迟的拒绝。
func (r *race) classify(pfd unix.PollFd) (bool, error) {
	if pfd.Revents&unix.POLLNVAL != 0 {
		return false, os.NewSyscallError("poll", unix.EBADF)
	}

	soerr, err := r.d.sys.SocketError(int(pfd.Fd))
	if err != nil {
		return false, os.NewSyscallError("getsockopt", err)
	}
	switch errno := unix.Errno(soerr); errno {
	case 0:
	case unix.EINPROGRESS, unix.EALREADY, unix.EINTR:
		return false, nil
	default:
		return false, os.NewSyscallError("connect", errno)
	}

	switch {
	case pfd.Revents&(unix.POLLIN|unix.POLLOUT) != 0:
		return true, nil
	case pfd.Revents&(unix.POLLERR|unix.POLLHUP) != 0:
		return false, os.NewSyscallError("connect", unix.ECONNRESET)
	default:
		return false, nil
	}
}

// claim 恢复胜者的原始阻塞模式并登记为胜者
func (r *race) claim(h Handle) bool {
	a, err := r.rc.At(h)
	if err != nil {
		return false
	}
	if err := r.d.sys.SetFlags(a.FD, a.OrigFlags); err != nil {
		r.neutralize(h, OpRestore, os.NewSyscallError("fcntl", err))
		return false
	}
	if err := r.rc.SetWinner(h); err != nil {
		r.log.Error("登记胜者失败", "handle", int(h), "err", err)
		return false
	}
	return true
}

// neutralize 中和尝试并记录失败
func (r *race) neutralize(h Handle, op string, cause error) {
	a, err := r.rc.At(h)
	if err != nil {
		return
	}
	c := r.cands[a.Candidate]
	aerr := &AttemptError{Op: op, Candidate: c, Err: cause}
	_ = r.rc.Neutralize(h, aerr)
	r.fail(c, aerr)
}

func (r *race) fail(c Candidate, err error) {
	r.failures = append(r.failures, err)
	r.d.reporter.ObserveAttempt(c.Family.String(), AttemptFailed)
	r.log.Debug("候选失败", "candidate", c.String(), "err", err)
}

func (r *race) result(h Handle, reordered ReorderResult, elapsed time.Duration) *Result {
	a, _ := r.rc.At(h)
	return &Result{
		FD:        a.FD,
		Candidate: r.cands[a.Candidate],
		Index:     a.Candidate,
		Reorder:   reordered,
		Attempts:  r.rc.Len(),
		Elapsed:   elapsed,
		RaceID:    r.id,
	}
}

func (r *race) report(err error, elapsed time.Duration) {
	switch {
	case errors.Is(err, ErrAllCandidatesExhausted):
		r.d.reporter.ObserveRace(RaceExhausted, "", elapsed)
		r.log.Warn("所有候选均失败", "tried", r.tried, "err", err)
	case errors.Is(err, ErrMultiplex):
		r.d.reporter.ObserveRace(RaceFailed, "", elapsed)
		r.log.Error("就绪等待失败，竞速中止", "err", err)
	default:
		r.d.reporter.ObserveRace(RaceCanceled, "", elapsed)
		r.log.Debug("竞速取消", "err", err)
	}
}

// teardown 关闭除胜者外的全部描述符
func (r *race) teardown() {
	for _, h := range r.rc.Pending() {
		a, _ := r.rc.At(h)
		r.d.reporter.ObserveAttempt(r.cands[a.Candidate].Family.String(), AttemptAbandoned)
	}
	if err := r.rc.Teardown(); err != nil {
		r.log.Warn("关闭落败描述符失败", "err", err)
	}
}

// millis 将时长向上取整为毫秒
func millis(d time.Duration) int {
	ms := (d + time.Millisecond - 1) / time.Millisecond
	if ms > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(ms)
}
