package eyeballs

import (
	"fmt"
	"net/netip"
)

// Family 候选地址族
type Family uint8

const (
	// FamilyUnknown 未知地址族
	FamilyUnknown Family = iota
	// FamilyIPv4 回退族
	FamilyIPv4
	// FamilyIPv6 优先族
	FamilyIPv6
)

func (f Family) String() string {
	switch f {
	case FamilyIPv4:
		return "ipv4"
	case FamilyIPv6:
		return "ipv6"
	default:
		return "unknown"
	}
}

// FamilyOf 返回地址所属的族，IPv4 映射的 IPv6 地址视为 IPv4
func FamilyOf(addr netip.Addr) Family {
	switch {
	case !addr.IsValid():
		return FamilyUnknown
	case addr.Is4() || addr.Is4In6():
		return FamilyIPv4
	default:
		return FamilyIPv6
	}
}

// Candidate 一个已解析、可发起连接的候选地址
//
// Candidate 由解析器产生，竞速过程只读取和重排，不修改单个条目。
type Candidate struct {
	// Family 地址族
	Family Family

	// SockType socket 类型（如 SOCK_STREAM），0 表示流式
	SockType int

	// Protocol 协议号，0 表示由内核选择
	Protocol int

	// Addr 目标地址与端口
	Addr netip.AddrPort

	// Name 可选的展示名（通常为原始主机名）
	Name string
}

// NewCandidate 创建候选地址，地址族由 addr 推导
//
// IPv4 映射的 IPv6 地址会被还原为 IPv4。
func NewCandidate(addr netip.AddrPort, sockType, protocol int, name string) Candidate {
	ip := addr.Addr()
	if ip.Is4In6() {
		addr = netip.AddrPortFrom(ip.Unmap(), addr.Port())
	}
	return Candidate{
		Family:   FamilyOf(addr.Addr()),
		SockType: sockType,
		Protocol: protocol,
		Addr:     addr,
		Name:     name,
	}
}

func (c Candidate) String() string {
	if c.Name == "" {
		return c.Addr.String()
	}
	return fmt.Sprintf("%s (%s)", c.Name, c.Addr)
}
