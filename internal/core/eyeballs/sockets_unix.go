//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package eyeballs

import (
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"syscall"

	"golang.org/x/sys/unix"
)

// sockets 竞速使用的系统调用集合
//
// 生产环境使用 sysSockets；测试注入脚本化实现以确定性地驱动竞速。
type sockets interface {
	Socket(domain, typ, proto int) (int, error)
	GetFlags(fd int) (int, error)
	SetFlags(fd, flags int) error
	Connect(fd int, sa unix.Sockaddr) error
	Poll(fds []unix.PollFd, timeout int) (int, error)
	SocketError(fd int) (int, error)
	Close(fd int) error
}

type sysSockets struct{}

var _ sockets = sysSockets{}

// Socket 创建 socket 并设置 close-on-exec
func (sysSockets) Socket(domain, typ, proto int) (int, error) {
	syscall.ForkLock.RLock()
	fd, err := unix.Socket(domain, typ, proto)
	if err == nil {
		unix.CloseOnExec(fd)
	}
	syscall.ForkLock.RUnlock()
	return fd, err
}

func (sysSockets) GetFlags(fd int) (int, error) {
	return unix.FcntlInt(uintptr(fd), unix.F_GETFL, 0)
}

func (sysSockets) SetFlags(fd, flags int) error {
	_, err := unix.FcntlInt(uintptr(fd), unix.F_SETFL, flags)
	return err
}

func (sysSockets) Connect(fd int, sa unix.Sockaddr) error {
	return unix.Connect(fd, sa)
}

func (sysSockets) Poll(fds []unix.PollFd, timeout int) (int, error) {
	return unix.Poll(fds, timeout)
}

// SocketError 读取并清除 socket 的挂起错误（SO_ERROR）
func (sysSockets) SocketError(fd int) (int, error) {
	return unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ERROR)
}

func (sysSockets) Close(fd int) error {
	return unix.Close(fd)
}

// TCPCandidate 创建流式 TCP 候选
func TCPCandidate(addr netip.AddrPort, name string) Candidate {
	return NewCandidate(addr, unix.SOCK_STREAM, unix.IPPROTO_TCP, name)
}

// sockType 返回候选的 socket 类型，0 视为 SOCK_STREAM
func sockType(c Candidate) int {
	if c.SockType == 0 {
		return unix.SOCK_STREAM
	}
	return c.SockType
}

// sockaddr 将候选转换为 connect 使用的 domain 与地址
func sockaddr(c Candidate) (int, unix.Sockaddr, error) {
	ip := c.Addr.Addr()
	port := int(c.Addr.Port())

	switch c.Family {
	case FamilyIPv4:
		ip = ip.Unmap()
		if !ip.Is4() {
			return 0, nil, fmt.Errorf("%w: %s is not an IPv4 address", ErrUnsupportedFamily, ip)
		}
		return unix.AF_INET, &unix.SockaddrInet4{Port: port, Addr: ip.As4()}, nil

	case FamilyIPv6:
		if !ip.Is6() {
			return 0, nil, fmt.Errorf("%w: %s is not an IPv6 address", ErrUnsupportedFamily, ip)
		}
		sa := &unix.SockaddrInet6{Port: port, Addr: ip.As16()}
		if zone := ip.Zone(); zone != "" {
			sa.ZoneId = zoneIndex(zone)
		}
		return unix.AF_INET6, sa, nil

	default:
		return 0, nil, fmt.Errorf("%w: %s", ErrUnsupportedFamily, c.Family)
	}
}

// zoneIndex 将 IPv6 zone（接口名或数字）转换为接口索引
func zoneIndex(zone string) uint32 {
	if ifi, err := net.InterfaceByName(zone); err == nil {
		return uint32(ifi.Index)
	}
	if n, err := strconv.ParseUint(zone, 10, 32); err == nil {
		return uint32(n)
	}
	return 0
}
