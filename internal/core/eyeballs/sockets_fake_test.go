//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package eyeballs

import (
	"sort"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/sys/unix"
)

// ============================================================================
//                              脚本化 sockets
// ============================================================================

// fakePeer 按端口描述的对端行为
type fakePeer struct {
	// connect connect 的返回值，默认 EINPROGRESS
	connect error
	// soError SO_ERROR 的值
	soError unix.Errno
	// restoreErr 恢复原始标志时返回的错误
	restoreErr error
}

// pollCall 一次 Poll 调用的记录
type pollCall struct {
	ports   []uint16
	timeout int
}

// pollScript 第 n 次（从 0 开始）Poll 的行为
type pollScript func(n int, fds []unix.PollFd, timeout int) (int, error)

const fakeOrigFlags = unix.O_RDWR

// fakeSockets 确定性的 sockets 实现
//
// 默认 Poll 在有界等待时把模拟时钟推进 timeout 并返回 0；
// 无界等待必须由脚本处理，否则视为测试错误。
type fakeSockets struct {
	t     *testing.T
	clock *clock.Mock

	peers      map[uint16]*fakePeer
	socketErrs []error
	nextFD     int
	port       map[int]uint16
	flags      map[int]int
	open       map[int]bool
	closes     map[int]int
	sockets    int
	polls      []pollCall
	script     pollScript
}

func newFakeSockets(t *testing.T) *fakeSockets {
	return &fakeSockets{
		t:      t,
		clock:  clock.NewMock(),
		peers:  make(map[uint16]*fakePeer),
		nextFD: 100,
		port:   make(map[int]uint16),
		flags:  make(map[int]int),
		open:   make(map[int]bool),
		closes: make(map[int]int),
	}
}

func (f *fakeSockets) peer(port uint16) *fakePeer {
	p, ok := f.peers[port]
	if !ok {
		p = &fakePeer{connect: unix.EINPROGRESS}
		f.peers[port] = p
	}
	return p
}

func (f *fakeSockets) Socket(domain, typ, proto int) (int, error) {
	f.sockets++
	if len(f.socketErrs) > 0 {
		err := f.socketErrs[0]
		f.socketErrs = f.socketErrs[1:]
		if err != nil {
			return -1, err
		}
	}
	fd := f.nextFD
	f.nextFD++
	f.open[fd] = true
	f.flags[fd] = fakeOrigFlags
	return fd, nil
}

func (f *fakeSockets) GetFlags(fd int) (int, error) {
	return f.flags[fd], nil
}

func (f *fakeSockets) SetFlags(fd, flags int) error {
	if flags&unix.O_NONBLOCK == 0 {
		if err := f.peer(f.port[fd]).restoreErr; err != nil {
			return err
		}
	}
	f.flags[fd] = flags
	return nil
}

func (f *fakeSockets) Connect(fd int, sa unix.Sockaddr) error {
	var port uint16
	switch sa := sa.(type) {
	case *unix.SockaddrInet4:
		port = uint16(sa.Port)
	case *unix.SockaddrInet6:
		port = uint16(sa.Port)
	}
	f.port[fd] = port
	return f.peer(port).connect
}

func (f *fakeSockets) Poll(fds []unix.PollFd, timeout int) (int, error) {
	call := pollCall{timeout: timeout}
	for _, pfd := range fds {
		if !f.open[int(pfd.Fd)] {
			f.t.Errorf("poll on closed fd %d", pfd.Fd)
		}
		call.ports = append(call.ports, f.port[int(pfd.Fd)])
	}
	n := len(f.polls)
	f.polls = append(f.polls, call)

	if f.script != nil {
		return f.script(n, fds, timeout)
	}
	return f.elapse(timeout)
}

// elapse 模拟一次无事件的有界等待
func (f *fakeSockets) elapse(timeout int) (int, error) {
	if timeout < 0 {
		f.t.Errorf("unscripted unbounded poll")
		return 0, unix.EINVAL
	}
	f.clock.Add(time.Duration(timeout) * time.Millisecond)
	return 0, nil
}

func (f *fakeSockets) SocketError(fd int) (int, error) {
	return int(f.peer(f.port[fd]).soError), nil
}

func (f *fakeSockets) Close(fd int) error {
	f.closes[fd]++
	if f.closes[fd] > 1 {
		f.t.Errorf("fd %d closed %d times", fd, f.closes[fd])
	}
	if !f.open[fd] {
		return unix.EBADF
	}
	f.open[fd] = false
	return nil
}

// mark 为端口对应的描述符设置 revents，返回被标记的数量
func (f *fakeSockets) mark(fds []unix.PollFd, revents int16, ports ...uint16) int {
	n := 0
	for k := range fds {
		for _, p := range ports {
			if f.port[int(fds[k].Fd)] == p {
				fds[k].Revents = revents
				n++
			}
		}
	}
	return n
}

// openPorts 返回仍打开的描述符对应的端口
func (f *fakeSockets) openPorts() []uint16 {
	var out []uint16
	for fd, ok := range f.open {
		if ok {
			out = append(out, f.port[fd])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// fdOf 返回端口对应的描述符
func (f *fakeSockets) fdOf(port uint16) int {
	for fd, p := range f.port {
		if p == port {
			return fd
		}
	}
	return -1
}

// ============================================================================
//                              记录型 Reporter
// ============================================================================

type recordedRace struct {
	outcome string
	family  string
	elapsed time.Duration
}

type recordingReporter struct {
	attempts map[string]int
	races    []recordedRace
}

func newRecordingReporter() *recordingReporter {
	return &recordingReporter{attempts: make(map[string]int)}
}

func (r *recordingReporter) ObserveAttempt(family, outcome string) {
	r.attempts[family+"/"+outcome]++
}

func (r *recordingReporter) ObserveRace(outcome, family string, elapsed time.Duration) {
	r.races = append(r.races, recordedRace{outcome: outcome, family: family, elapsed: elapsed})
}
