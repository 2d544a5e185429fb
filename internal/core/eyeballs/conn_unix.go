//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package eyeballs

import (
	"context"
	"fmt"
	"net"
	"os"
)

// FileConn 将胜者描述符的所有权转移给 net.Conn
//
// 无论成功与否，res.FD 都会被关闭并置为 -1；成功时返回的连接持有其副本。
func FileConn(res *Result) (net.Conn, error) {
	if res == nil || res.FD < 0 {
		return nil, ErrInvalidHandle
	}
	f := os.NewFile(uintptr(res.FD), res.Candidate.String())
	res.FD = -1
	defer f.Close()

	conn, err := net.FileConn(f)
	if err != nil {
		return nil, fmt.Errorf("file conn %s: %w", res.Candidate, err)
	}
	return conn, nil
}

// DialContext 竞速并以 net.Conn 返回胜者
func (d *Dialer) DialContext(ctx context.Context, candidates []Candidate) (net.Conn, *Result, error) {
	res, err := d.Race(ctx, candidates)
	if err != nil {
		return nil, nil, err
	}
	conn, err := FileConn(res)
	if err != nil {
		return nil, res, err
	}
	return conn, res, nil
}
