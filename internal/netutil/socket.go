// Package netutil creates the non-blocking listening sockets the event
// loop multiplexes over. Adapted from the teacher's server/engine/epoll.go
// listenSocket, swapping the raw syscall package for golang.org/x/sys/unix
// (see DESIGN.md).
package netutil

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

const backlog = 128

// Listen creates, binds, and starts listening on a non-blocking TCP
// socket for (host, port). An empty or "0.0.0.0" host binds the wildcard
// address, per spec.md §6.
func Listen(host string, port uint16) (int, error) {
	addr, err := parseHost(host)
	if err != nil {
		return -1, err
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return -1, fmt.Errorf("netutil: socket: %w", err)
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("netutil: setsockopt SO_REUSEADDR: %w", err)
	}

	if err := unix.Bind(fd, &unix.SockaddrInet4{Port: int(port), Addr: addr}); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("netutil: bind %s:%d: %w", host, port, err)
	}

	if err := unix.Listen(fd, backlog); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("netutil: listen %s:%d: %w", host, port, err)
	}

	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("netutil: set nonblock: %w", err)
	}

	return fd, nil
}

func parseHost(host string) ([4]byte, error) {
	var addr [4]byte
	if host == "" || host == "0.0.0.0" {
		return addr, nil
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return addr, fmt.Errorf("netutil: invalid host %q", host)
	}
	ip4 := ip.To4()
	if ip4 == nil {
		return addr, fmt.Errorf("netutil: host %q is not IPv4", host)
	}
	copy(addr[:], ip4)
	return addr, nil
}
